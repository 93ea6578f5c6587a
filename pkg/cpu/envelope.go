package cpu

import (
	"context"
	"errors"
	"runtime/pprof"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jzx17/cpuexec/pkg/logging"
	"github.com/jzx17/cpuexec/pkg/metrics"
	"github.com/jzx17/cpuexec/pkg/types"
)

// outcome is the single value an envelope ever produces
type outcome[R any] struct {
	value R
	err   error
}

// envelope adapts a computation to types.Task. It carries the submitter's
// context values onto the worker, drives the active thread gauge and resolves
// exactly once.
type envelope[R any] struct {
	id    string
	fn    func() R
	gauge types.Gauge

	// interest ends when the submitter stops waiting
	interest context.Context
	// values is interest without its cancellation
	values context.Context

	state atomic.Int32
	done  chan struct{}
	out   outcome[R]
}

func newEnvelope[R any](ctx context.Context, fn func() R, gauge types.Gauge) *envelope[R] {
	id := uuid.NewString()
	e := &envelope[R]{
		id:       id,
		fn:       fn,
		gauge:    gauge,
		interest: ctx,
		values:   logging.With(context.WithoutCancel(ctx), zap.String("task_id", id)),
		done:     make(chan struct{}),
	}
	e.state.Store(int32(types.TaskQueued))
	return e
}

// ID returns the task ID
func (e *envelope[R]) ID() string {
	return e.id
}

// State returns the current lifecycle state
func (e *envelope[R]) State() types.TaskState {
	return types.TaskState(e.state.Load())
}

// Claim is the worker-side check made right before running. A submitter
// whose context already ended counts as gone even if it has not called
// abandon yet.
func (e *envelope[R]) Claim() bool {
	if e.interest.Err() != nil {
		e.abandon()
	}
	return e.state.CompareAndSwap(int32(types.TaskQueued), int32(types.TaskRunning))
}

// Execute runs the computation with the submitter's context re-entered.
// A panic escapes to the worker, which reports it through Fail.
func (e *envelope[R]) Execute(workerCtx context.Context) error {
	values := e.values
	if name, ok := pprof.Label(workerCtx, "worker"); ok {
		values = logging.With(values, zap.String("worker", name))
	}

	var value R
	pprof.Do(values, pprof.Labels("task_id", e.id), func(ctx context.Context) {
		value = e.compute(ctx)
	})
	e.resolve(types.TaskRunning, types.TaskCompleted, outcome[R]{value: value})
	return nil
}

// compute calls fn with the gauge raised for exactly its duration
func (e *envelope[R]) compute(ctx context.Context) R {
	guard := metrics.NewGaugeGuard(e.gauge)
	guard.Add(1)
	defer guard.Release()

	logging.FromContext(ctx).Debug("running cpu intensive task")
	return e.fn()
}

// Fail resolves the envelope with an outcome decided by the pool: a panic
// while running, or the pool closing while the task was still queued.
func (e *envelope[R]) Fail(err error) {
	if errors.Is(err, types.ErrPanicked) {
		e.resolve(types.TaskRunning, types.TaskPanicked, outcome[R]{err: types.ErrPanicked})
		return
	}
	e.resolve(types.TaskQueued, types.TaskCancelled, outcome[R]{err: err})
}

// abandon records that the submitter stopped waiting. It only has an effect
// while the task is still queued.
func (e *envelope[R]) abandon() bool {
	return e.resolve(types.TaskQueued, types.TaskCancelled, outcome[R]{err: types.ErrAbandoned})
}

// resolve moves from one state to a terminal one and publishes out. Only the
// caller that wins the transition publishes.
func (e *envelope[R]) resolve(from, to types.TaskState, out outcome[R]) bool {
	if !e.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	e.out = out
	close(e.done)
	return true
}
