/*
Package worker provides the fixed-size worker pool behind the cpu package.

# Overview

The pool keeps one worker goroutine per configured slot, each locked to its own
OS thread for its whole life, and feeds them from an unbounded FIFO queue:
- Submit never blocks and never rejects for capacity
- Workers survive any panic raised by a task
- A task is claimed right before it runs, so dropped tasks never start
- Close fails whatever is still queued and waits for running tasks

# Core Components

## FixedWorkerPool

Owns the queue and the workers, exposes statistics and reports telemetry
through metrics.Metrics when configured.

## Worker

Runs the claim, execute and recover loop. Panics are captured with their stack
and handed to the pool's PanicHandler; the task is then failed with
types.ErrPanicked.

## Task

types.Task is the worker contract. BasicTask is a plain implementation for
callers that do not need the typed futures of the cpu package.

# Usage Example

	pool, err := worker.NewFixedWorkerPool(worker.DefaultFixedWorkerPoolConfig())
	if err != nil {
		return err
	}
	if err := pool.Start(ctx); err != nil {
		return err
	}
	defer pool.Close()

	task := worker.NewBasicTask(func(ctx context.Context) error {
		return compress(ctx, block)
	})
	if err := pool.Submit(task); err != nil {
		return err
	}
	err = task.Wait(ctx)

# Concurrency Safety

All exported methods are safe for concurrent use. Statistics are kept with
atomic counters and may lag task delivery by a moment.
*/
package worker
