// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPanicked indicates the submitted computation panicked while running
	// on a pool worker. It carries no payload; compare with errors.Is.
	ErrPanicked error = errPanicked{}

	// ErrPoolClosed indicates the worker pool is closed
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrPoolRunning indicates the worker pool is already running
	ErrPoolRunning = errors.New("worker pool is already running")

	// ErrNilTask indicates a nil task or computation was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrAlreadyInitialized indicates the shared pool was already created
	ErrAlreadyInitialized = errors.New("shared pool is already initialized")

	// ErrAbandoned indicates the submitter gave up on a task before it started
	ErrAbandoned = errors.New("task abandoned before it started")

	// ErrInvalidConfig indicates an invalid pool configuration
	ErrInvalidConfig = errors.New("invalid pool configuration")
)

// errPanicked is a comparable marker so that ErrPanicked == ErrPanicked holds
// even after being boxed in different interfaces.
type errPanicked struct{}

func (errPanicked) Error() string {
	return "Scheduled job panicked"
}

// PanicInfo describes a panic recovered inside a worker. It is handed to the
// pool-level panic handler for diagnostics and never returned to submitters.
type PanicInfo struct {
	// Pool is the name of the pool the worker belongs to
	Pool string

	// Worker is the name of the worker that recovered the panic
	Worker string

	// TaskID identifies the task whose computation panicked
	TaskID string

	// Value is the value passed to panic
	Value interface{}

	// Stack is the goroutine stack captured at recovery
	Stack []byte
}

// String renders the panic value for logs
func (p *PanicInfo) String() string {
	return fmt.Sprintf("task %s panicked on %s: %v", p.TaskID, p.Worker, p.Value)
}

// PanicHandler receives recovered panics. It must not panic itself.
type PanicHandler func(info *PanicInfo)

// ConfigError reports an invalid configuration field
type ConfigError struct {
	// Field is the name of the offending field
	Field string

	// Value is the rejected value
	Value interface{}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid pool configuration: %s=%v", e.Field, e.Value)
}

// Is reports ErrInvalidConfig as the matching sentinel
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
