package cpu

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/cpuexec/pkg/types"
)

func TestRunBatch(t *testing.T) {
	pool := newTestPool(t, 3)
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}

	results := RunBatch(context.Background(), pool, inputs, func(n int) int {
		if n == 5 {
			panic("bad split")
		}
		return n * 10
	})
	values, errs := CollectBatch(results, len(inputs))

	for i, n := range inputs {
		if n == 5 {
			assert.ErrorIs(t, errs[i], types.ErrPanicked)
			continue
		}
		require.NoError(t, errs[i])
		assert.Equal(t, n*10, values[i])
	}
}

func TestRunBatch_Empty(t *testing.T) {
	pool := newTestPool(t, 1)

	results := RunBatch(context.Background(), pool, []string{}, func(s string) int { return len(s) })
	_, ok := <-results
	assert.False(t, ok)
}

func TestRunBatch_NilFunction(t *testing.T) {
	pool := newTestPool(t, 1)

	_, errs := CollectBatch(RunBatch[int, int](context.Background(), pool, []int{1, 2}, nil), 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, types.ErrNilTask)
	}
}

func TestRunBatch_TimeoutDropsQueuedElements(t *testing.T) {
	pool := newTestPool(t, 1)
	release := blockPool(t, pool)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var ran int32
	inputs := make([]int, 50)
	_, errs := CollectBatch(RunBatch(ctx, pool, inputs, func(int) int {
		atomic.AddInt32(&ran, 1)
		return 0
	}), len(inputs))

	for _, err := range errs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	release()
	assert.Eventually(t, func() bool {
		return pool.Stats().TotalCancelled == int64(len(inputs))
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}
