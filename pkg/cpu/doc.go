/*
Package cpu runs CPU-intensive, synchronous computations on a bounded pool of
dedicated worker threads and lets callers wait for them with a context.

# Overview

The package combines four pieces:
  - a process-wide pool created on first use and sized to the number of CPUs
    (SharedPool, Configure)
  - an envelope around each computation that carries the caller's context
    values to the worker and keeps the active-threads gauge paired
  - a Future that resolves once, and whose abandonment before the task starts
    keeps the computation from ever running
  - panic isolation: a computation that panics resolves with ErrPanicked and
    the worker thread goes on serving the queue

# Task lifecycle

	Queued -> Running -> Completed | Panicked
	Queued -> Cancelled

Cancelled is only reachable from Queued. A running computation cannot be
interrupted.

# Usage

Run a computation on the shared pool:

	n, err := cpu.RunCPUIntensive(ctx, func() int {
		return countMatches(segment, query)
	})
	if errors.Is(err, types.ErrPanicked) {
		// the computation is buggy for this input
	}

Bound the wait; queued work the caller gave up on never runs:

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	hits, err := cpu.RunCPUIntensive(ctx, func() []Hit { return search(split) })

Keep a Future around:

	fut := cpu.Submit(ctx, cpu.SharedPool(), func() Digest { return digest(blob) })
	...
	d, err := fut.Await(ctx)
*/
package cpu
