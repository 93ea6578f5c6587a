package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jzx17/cpuexec/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents idle worker state
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents working worker state
	WorkerStateWorking
	// WorkerStateStopped represents stopped worker state
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// taskOutcome is what a worker reports to its pool after handling a task
type taskOutcome int

const (
	outcomeCompleted taskOutcome = iota
	outcomePanicked
	outcomeCancelled
)

// panicStackSize bounds the stack captured for a recovered panic
const panicStackSize = 8 << 10

// errGoexit is the PanicInfo value reported for a task that called runtime.Goexit
var errGoexit = errors.New("task called runtime.Goexit")

// Worker owns one dedicated OS thread and runs tasks popped from the pool
// queue until the queue is closed.
type Worker struct {
	id    int
	name  string
	pool  string
	state int32 // atomic state
	queue *taskQueue
	done  chan struct{}

	pin    bool
	clock  types.Clock
	logger *zap.Logger

	// statistics
	totalProcessed int64
	totalPanicked  int64
	totalCancelled int64
	lastTaskTime   int64 // Unix nanosecond timestamp

	panicHandler types.PanicHandler

	// pool callbacks for syncing statistics
	startCallback      func()
	completionCallback func(taskOutcome, time.Duration)
}

func newWorker(id int, pool string, queue *taskQueue, clock types.Clock, logger *zap.Logger) *Worker {
	if clock == nil {
		clock = types.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	name := fmt.Sprintf("%s-%d", pool, id)

	return &Worker{
		id:     id,
		name:   name,
		pool:   pool,
		state:  int32(WorkerStateIdle),
		queue:  queue,
		done:   make(chan struct{}),
		clock:  clock,
		logger: logger.With(zap.String("worker", name)),
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// Name returns the Worker name, "<pool>-<id>"
func (w *Worker) Name() string {
	return w.name
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// Start runs the worker loop on the calling goroutine, which stays locked to
// its OS thread until the queue is closed.
//
// A task that calls runtime.Goexit takes the goroutine down with it; the loop
// then continues on a fresh goroutine so the pool keeps its size.
func (w *Worker) Start(ctx context.Context) {
	stopped := false
	defer func() {
		if stopped {
			atomic.StoreInt32(&w.state, int32(WorkerStateStopped))
			close(w.done)
			return
		}
		w.logger.Warn("worker goroutine exited inside a task, restarting")
		go w.Start(ctx)
	}()

	w.serve(ctx)
	stopped = true
}

// serve pops and processes tasks until the queue is closed
func (w *Worker) serve(ctx context.Context) {
	runtime.LockOSThread()
	if w.pin {
		// a pinned thread must not return to the scheduler: the goroutine
		// exits locked and the runtime terminates the thread
		cpu := w.id % runtime.NumCPU()
		if err := pinToCPU(cpu); err != nil {
			w.logger.Warn("failed to pin worker", zap.Int("cpu", cpu), zap.Error(err))
		}
	} else {
		defer runtime.UnlockOSThread()
	}

	labelCtx := pprof.WithLabels(ctx, pprof.Labels("pool", w.pool, "worker", w.name))
	pprof.SetGoroutineLabels(labelCtx)

	for {
		task, ok := w.queue.Pop()
		if !ok {
			return
		}
		w.processTask(labelCtx, task)
		// tasks may install their own profiler labels
		pprof.SetGoroutineLabels(labelCtx)
	}
}

// processTask processes a single task
func (w *Worker) processTask(ctx context.Context, task types.Task) {
	if !task.Claim() {
		atomic.AddInt64(&w.totalCancelled, 1)
		w.logger.Debug("skipping abandoned task", zap.String("task_id", task.ID()))
		if w.completionCallback != nil {
			w.completionCallback(outcomeCancelled, 0)
		}
		return
	}

	// set to working state
	atomic.StoreInt32(&w.state, int32(WorkerStateWorking))
	if w.startCallback != nil {
		w.startCallback()
	}

	startTime := w.clock.Now()
	atomic.StoreInt64(&w.lastTaskTime, startTime.UnixNano())

	// stays panicked unless executeTask returns normally, which also covers
	// a task that exits the goroutine
	outcome := outcomePanicked
	defer func() {
		executionTime := w.clock.Since(startTime)
		atomic.StoreInt32(&w.state, int32(WorkerStateIdle))

		if outcome == outcomePanicked {
			atomic.AddInt64(&w.totalPanicked, 1)
			task.Fail(types.ErrPanicked)
		} else {
			atomic.AddInt64(&w.totalProcessed, 1)
		}

		if w.completionCallback != nil {
			w.completionCallback(outcome, executionTime)
		}
	}()

	panicked, err := w.executeTask(ctx, task)
	if panicked {
		return
	}
	outcome = outcomeCompleted
	if err != nil {
		w.logger.Debug("task returned error", zap.String("task_id", task.ID()), zap.Error(err))
	}
}

// executeTask executes a task, recovering any panic so the worker keeps
// serving the queue
func (w *Worker) executeTask(ctx context.Context, task types.Task) (panicked bool, err error) {
	normalReturn := false
	defer func() {
		if normalReturn {
			return
		}
		r := recover()
		if r == nil {
			// runtime.Goexit: the goroutine keeps unwinding after this
			r = errGoexit
		}

		buf := make([]byte, panicStackSize)
		n := runtime.Stack(buf, false)

		panicked = true
		err = types.ErrPanicked
		w.handlePanic(&types.PanicInfo{
			Pool:   w.pool,
			Worker: w.name,
			TaskID: task.ID(),
			Value:  r,
			Stack:  buf[:n],
		})
	}()

	err = task.Execute(ctx)
	normalReturn = true
	return false, err
}

// handlePanic forwards the diagnostic to the pool handler. A handler that
// panics itself is logged and otherwise ignored.
func (w *Worker) handlePanic(info *types.PanicInfo) {
	if w.panicHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic handler panicked", zap.Any("panic", r))
		}
	}()
	w.panicHandler(info)
}

// wait blocks until the worker loop has returned or timeout elapses
func (w *Worker) wait(timeout time.Duration) error {
	select {
	case <-w.done:
		return nil
	case <-w.clock.After(timeout):
		return fmt.Errorf("worker %s stop timeout", w.name)
	}
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		Name:           w.name,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalPanicked:  atomic.LoadInt64(&w.totalPanicked),
		TotalCancelled: atomic.LoadInt64(&w.totalCancelled),
		LastTaskTime:   time.Unix(0, atomic.LoadInt64(&w.lastTaskTime)),
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	Name           string
	State          WorkerState
	TotalProcessed int64
	TotalPanicked  int64
	TotalCancelled int64
	LastTaskTime   time.Time
}

// IsActive checks if Worker is active
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateWorking
}

// IsIdle checks if Worker is idle
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateIdle
}

// GetPanicRate gets the share of executed tasks that panicked
func (ws WorkerStats) GetPanicRate() float64 {
	total := ws.TotalProcessed + ws.TotalPanicked
	if total == 0 {
		return 0
	}
	return float64(ws.TotalPanicked) / float64(total)
}
