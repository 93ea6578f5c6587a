package cpu

import (
	"context"
	"sync"

	"github.com/jzx17/cpuexec/pkg/types"
)

// RunBatch submits fn once per input and streams the outcomes as they
// resolve, in completion order. The channel is closed after the last one.
//
// Every element is its own task: when ctx ends, elements still queued are
// dropped and report ctx.Err().
func RunBatch[T, R any](ctx context.Context, pool Pool, inputs []T, fn func(T) R) <-chan types.BatchResult[R] {
	resultChan := make(chan types.BatchResult[R], len(inputs))

	futures := make([]*Future[R], len(inputs))
	for i, input := range inputs {
		if fn == nil {
			futures[i] = resolvedFuture[R](types.ErrNilTask)
			continue
		}
		futures[i] = Submit(ctx, pool, func() R { return fn(input) })
	}

	go func() {
		defer close(resultChan)

		var wg sync.WaitGroup
		for i, fut := range futures {
			wg.Add(1)
			go func(index int, fut *Future[R]) {
				defer wg.Done()
				value, err := fut.Await(ctx)
				resultChan <- types.BatchResult[R]{Index: index, Value: value, Error: err}
			}(i, fut)
		}
		wg.Wait()
	}()

	return resultChan
}

// CollectBatch drains a RunBatch channel into input order
func CollectBatch[R any](results <-chan types.BatchResult[R], n int) ([]R, []error) {
	values := make([]R, n)
	errs := make([]error, n)
	for r := range results {
		values[r.Index] = r.Value
		errs[r.Index] = r.Error
	}
	return values, errs
}
