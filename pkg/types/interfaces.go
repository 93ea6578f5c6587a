// Package types defines core interfaces and types shared by the pool and its submitters
package types

import (
	"context"
)

// Task defines the contract between a worker and the unit of work it runs.
//
// A worker calls Claim exactly once before anything else. When Claim returns
// false the submitter has lost interest and the worker drops the task without
// calling Execute or Fail. When Claim returns true the worker calls Execute,
// and if Execute panics it calls Fail with ErrPanicked.
type Task interface {
	// ID returns the task ID (for tracking and logs)
	ID() string

	// Claim transitions the task from queued to running
	Claim() bool

	// Execute executes the task
	Execute(ctx context.Context) error

	// Fail delivers an outcome produced outside Execute
	Fail(err error)
}

// Gauge is the subset of a telemetry gauge the pool adjusts.
// prometheus.Gauge satisfies it. Implementations must be safe for concurrent use.
type Gauge interface {
	Add(delta float64)
}

// TaskState is the lifecycle state of a submitted task
type TaskState int32

const (
	// TaskQueued the task waits in the pool queue
	TaskQueued TaskState = iota
	// TaskRunning a worker is executing the computation
	TaskRunning
	// TaskCompleted the computation returned a value
	TaskCompleted
	// TaskPanicked the computation panicked
	TaskPanicked
	// TaskCancelled the submitter abandoned the task before it started
	TaskCancelled
)

// String returns the string representation of TaskState
func (s TaskState) String() string {
	switch s {
	case TaskQueued:
		return "Queued"
	case TaskRunning:
		return "Running"
	case TaskCompleted:
		return "Completed"
	case TaskPanicked:
		return "Panicked"
	case TaskCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition can happen
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskPanicked || s == TaskCancelled
}

// WorkerPoolStats defines basic statistics for worker pools
type WorkerPoolStats struct {
	// Name is the pool name
	Name string

	// PoolSize is the size of the pool
	PoolSize int

	// ActiveWorkers is the number of workers currently executing a task
	ActiveWorkers int

	// QueueSize is the current number of tasks in the queue
	QueueSize int

	// TotalCompleted counts tasks that ran to completion, including those
	// whose Execute returned an error
	TotalCompleted int64

	// TotalPanicked counts tasks whose computation panicked
	TotalPanicked int64

	// TotalCancelled counts tasks dropped before running
	TotalCancelled int64
}

// BatchResult defines the outcome of one element of a batch
type BatchResult[R any] struct {
	// Index is the index of the input data
	Index int

	// Value is the execution result
	Value R

	// Error is the execution error
	Error error
}
