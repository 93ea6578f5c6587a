package cpu

import (
	"context"

	"github.com/jzx17/cpuexec/pkg/types"
)

// Pool is what submission needs from a worker pool.
// *worker.FixedWorkerPool implements it.
type Pool interface {
	Submit(task types.Task) error
	ActiveThreadsGauge() types.Gauge
}

// Submit queues fn on pool and returns its Future without blocking.
//
// ctx is the submitter's context: its values (logger, profiler labels) are
// visible while fn runs, and once it ends a task that has not started yet is
// dropped. fn and the value it returns cross to another goroutine and must be
// safe to do so.
func Submit[R any](ctx context.Context, pool Pool, fn func() R) *Future[R] {
	if fn == nil {
		return resolvedFuture[R](types.ErrNilTask)
	}

	env := newEnvelope(ctx, fn, pool.ActiveThreadsGauge())
	if err := pool.Submit(env); err != nil {
		return resolvedFuture[R](err)
	}
	return &Future[R]{env: env}
}

// Run submits fn on pool and waits for its outcome
func Run[R any](ctx context.Context, pool Pool, fn func() R) (R, error) {
	return Submit(ctx, pool, fn).Await(ctx)
}

// RunCPUIntensive runs fn on the shared cpu pool and waits for its result,
// the pool equivalent of running blocking work off the caller's goroutine.
//
// Two properties matter:
//
//  1. fn runs on one of runtime.NumCPU() dedicated pool threads, so
//     CPU-heavy work cannot starve the rest of the program.
//  2. Right before fn is scheduled, the worker checks that the caller is still
//     waiting. If ctx ended while the task sat in the queue, fn never runs.
//
// Queued work is therefore cancellable: wrapping calls in a timeout lets a
// saturated pool drain its backlog. Once fn has started it always runs to the
// end; if ctx ends meanwhile the result is dropped and ctx.Err() is returned.
// A panic in fn is returned as ErrPanicked and leaves the pool intact.
func RunCPUIntensive[R any](ctx context.Context, fn func() R) (R, error) {
	return Run(ctx, SharedPool(), fn)
}
