//go:build linux

package worker

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jzx17/cpuexec/internal/testutils"
)

func TestPinToCPU(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		var original unix.CPUSet
		if !assert.NoError(t, unix.SchedGetaffinity(0, &original)) {
			return
		}
		defer func() { _ = unix.SchedSetaffinity(0, &original) }()

		cpu := -1
		for i := 0; i < runtime.NumCPU(); i++ {
			if original.IsSet(i) {
				cpu = i
				break
			}
		}
		if cpu < 0 {
			return
		}

		if !assert.NoError(t, pinToCPU(cpu)) {
			return
		}
		var pinned unix.CPUSet
		if !assert.NoError(t, unix.SchedGetaffinity(0, &pinned)) {
			return
		}
		assert.Equal(t, 1, pinned.Count())
		assert.True(t, pinned.IsSet(cpu))
	}()
	<-done
}

func TestFixedWorkerPool_PinnedThreadsEndWithPool(t *testing.T) {
	const size = 2
	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{
		Name:       "pinned",
		PoolSize:   size,
		PinWorkers: true,
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	// hold every worker until all of them reported their thread
	var mu sync.Mutex
	var tids []int
	var arrived sync.WaitGroup
	arrived.Add(size)
	tasks := make([]*BasicTask, size)
	for i := range tasks {
		tasks[i] = NewBasicTask(func(ctx context.Context) error {
			mu.Lock()
			tids = append(tids, unix.Gettid())
			mu.Unlock()
			arrived.Done()
			arrived.Wait()
			return nil
		})
		require.NoError(t, pool.Submit(tasks[i]))
	}
	for _, task := range tasks {
		require.NoError(t, task.Wait(testutils.Context(t)))
	}
	require.NoError(t, pool.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, tids, size)
	for _, tid := range tids {
		path := fmt.Sprintf("/proc/self/task/%d", tid)
		assert.Eventually(t, func() bool {
			_, err := os.Stat(path)
			return os.IsNotExist(err)
		}, time.Second, 5*time.Millisecond, "pinned thread %d still alive after Close", tid)
	}
}
