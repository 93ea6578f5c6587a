package worker

import (
	"sync"

	"github.com/jzx17/cpuexec/pkg/types"
)

const initialQueueCapacity = 64

// taskQueue is an unbounded FIFO of pending tasks backed by a growable ring
// buffer. Push never blocks; Pop blocks until a task arrives or the queue is
// closed.
type taskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []types.Task
	head   int
	size   int
	closed bool
}

func newTaskQueue(capacity int) *taskQueue {
	if capacity <= 0 {
		capacity = initialQueueCapacity
	}
	q := &taskQueue{buf: make([]types.Task, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a task at the tail
func (q *taskQueue) Push(task types.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return types.ErrPoolClosed
	}
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = task
	q.size++
	q.cond.Signal()
	return nil
}

// Pop removes the oldest task. It returns false once the queue is closed.
func (q *taskQueue) Pop() (types.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	task := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return task, true
}

// Len returns the number of queued tasks
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Close rejects further pushes, wakes every blocked Pop and hands back the
// tasks that never left the queue, oldest first.
func (q *taskQueue) Close() []types.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true

	remaining := make([]types.Task, 0, q.size)
	for q.size > 0 {
		remaining = append(remaining, q.buf[q.head])
		q.buf[q.head] = nil
		q.head = (q.head + 1) % len(q.buf)
		q.size--
	}
	q.cond.Broadcast()
	return remaining
}

// grow doubles the ring buffer, unrolling it so head starts at zero.
// Callers hold q.mu.
func (q *taskQueue) grow() {
	buf := make([]types.Task, len(q.buf)*2)
	n := copy(buf, q.buf[q.head:])
	copy(buf[n:], q.buf[:q.head])
	q.buf = buf
	q.head = 0
}
