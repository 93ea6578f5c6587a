package cpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/jzx17/cpuexec/pkg/metrics"
	"github.com/jzx17/cpuexec/pkg/types"
	"github.com/jzx17/cpuexec/pkg/worker"
)

// The shared pool is created on first use and lives for the rest of the
// process. sharedMu guards sharedConfig and initialized; sharedOnce guards
// construction.
var (
	sharedMu     sync.Mutex
	sharedConfig *worker.FixedWorkerPoolConfig
	initialized  bool

	sharedOnce sync.Once
	sharedPool *worker.FixedWorkerPool
)

// Configure sets the configuration the shared pool is built with. It must
// run before the first call to SharedPool or RunCPUIntensive.
func Configure(config *worker.FixedWorkerPoolConfig) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if initialized {
		return types.ErrAlreadyInitialized
	}
	if config == nil {
		sharedConfig = nil
		return nil
	}
	cfg := *config
	sharedConfig = &cfg
	return nil
}

// SharedPool returns the process-wide cpu pool, creating and starting it on
// the first call. Concurrent first calls all observe the same pool.
//
// It panics if the pool cannot be built: without it no cpu work can run.
func SharedPool() *worker.FixedWorkerPool {
	sharedOnce.Do(func() {
		sharedMu.Lock()
		initialized = true
		config := sharedConfig
		sharedMu.Unlock()

		sharedPool = mustBuildPool(config)
	})
	return sharedPool
}

// mustBuildPool creates and starts a pool, filling in the shared defaults
func mustBuildPool(config *worker.FixedWorkerPoolConfig) *worker.FixedWorkerPool {
	cfg := worker.DefaultFixedWorkerPoolConfig()
	if config != nil {
		cfg = config
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Default()
	}

	pool, err := worker.NewFixedWorkerPool(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to spawn the cpu pool: %v", err))
	}
	if err := pool.Start(context.Background()); err != nil {
		panic(fmt.Sprintf("failed to spawn the cpu pool: %v", err))
	}
	return pool
}
