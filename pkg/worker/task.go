package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// taskIDCounter is the global task ID counter
var taskIDCounter int64

// BasicTask is a fire-and-forget task. It runs whenever a worker reaches it
// and records the outcome for Wait.
type BasicTask struct {
	id string
	fn func(ctx context.Context) error

	done chan struct{}
	once sync.Once
	err  error
}

// NewBasicTask creates a new basic task
func NewBasicTask(fn func(ctx context.Context) error) *BasicTask {
	id := atomic.AddInt64(&taskIDCounter, 1)
	return NewBasicTaskWithID(fmt.Sprintf("task-%d", id), fn)
}

// NewBasicTaskWithID creates a basic task with custom ID
func NewBasicTaskWithID(id string, fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id:   id,
		fn:   fn,
		done: make(chan struct{}),
	}
}

// ID returns the task ID
func (t *BasicTask) ID() string {
	return t.id
}

// Claim always accepts; a BasicTask has no submitter to lose interest
func (t *BasicTask) Claim() bool {
	return true
}

// Execute executes the task
func (t *BasicTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		err := fmt.Errorf("task %s has no execution function", t.id)
		t.finish(err)
		return err
	}
	err := t.fn(ctx)
	t.finish(err)
	return err
}

// Fail records an outcome produced outside Execute
func (t *BasicTask) Fail(err error) {
	t.finish(err)
}

func (t *BasicTask) finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Done is closed once the task has an outcome
func (t *BasicTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task has an outcome or ctx ends
func (t *BasicTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
