package cpu

import (
	"context"

	"github.com/jzx17/cpuexec/pkg/types"
)

// Future is the observing half of a submitted computation.
//
// A Future has a single consumer. When that consumer stops waiting, either
// because the context given to Await ends or through Abandon, a task that has
// not started yet is dropped and never runs. A task that already started runs
// to completion and its result is discarded.
type Future[R any] struct {
	env *envelope[R]
}

// resolvedFuture returns a Future that already holds err
func resolvedFuture[R any](err error) *Future[R] {
	env := &envelope[R]{done: make(chan struct{}), out: outcome[R]{err: err}}
	env.state.Store(int32(types.TaskCancelled))
	close(env.done)
	return &Future[R]{env: env}
}

// Await blocks until the computation resolves or ctx ends. It returns the
// computed value, ErrPanicked if the computation panicked, or ctx.Err() if
// the caller gave up first.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.env.done:
		return f.env.out.value, f.env.out.err
	default:
	}

	select {
	case <-f.env.done:
		return f.env.out.value, f.env.out.err
	case <-ctx.Done():
		f.env.abandon()
		var zero R
		return zero, ctx.Err()
	}
}

// Abandon gives up on the result. It reports whether the task was dropped
// before running.
func (f *Future[R]) Abandon() bool {
	return f.env.abandon()
}

// Done is closed once the task reached a terminal state
func (f *Future[R]) Done() <-chan struct{} {
	return f.env.done
}

// State returns the current lifecycle state of the task
func (f *Future[R]) State() types.TaskState {
	return f.env.State()
}

// ID returns the task ID, empty for a Future rejected at submission
func (f *Future[R]) ID() string {
	return f.env.id
}
