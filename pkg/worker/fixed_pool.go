package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jzx17/cpuexec/pkg/logging"
	"github.com/jzx17/cpuexec/pkg/metrics"
	"github.com/jzx17/cpuexec/pkg/types"
)

const (
	poolStateCreated int32 = iota
	poolStateRunning
	poolStateClosed
)

// FixedWorkerPoolConfig defines configuration for fixed worker pool
type FixedWorkerPoolConfig struct {
	// Name prefixes worker names ("<Name>-<index>") and labels metrics
	Name string

	// PoolSize is the size of the worker pool
	PoolSize int

	// PinWorkers pins worker i to CPU i modulo the CPU count (Linux only)
	PinWorkers bool

	// StatsInterval is the queue length sampling period
	StatsInterval time.Duration

	// StopTimeout bounds how long Close waits for each worker
	StopTimeout time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// PanicHandler receives panics recovered on workers (optional,
	// defaults to logging them)
	PanicHandler types.PanicHandler

	// Logger for pool diagnostics (optional, defaults to logging.Default)
	Logger *zap.Logger

	// Metrics receives pool telemetry (optional)
	Metrics *metrics.Metrics
}

// DefaultFixedWorkerPoolConfig returns default configuration
func DefaultFixedWorkerPoolConfig() *FixedWorkerPoolConfig {
	return &FixedWorkerPoolConfig{
		Name:          "cpu",
		PoolSize:      runtime.NumCPU(),
		StatsInterval: time.Second,
		StopTimeout:   10 * time.Second,
		Clock:         types.NewRealClock(),
	}
}

// FixedWorkerPool implements a fixed-size worker pool with an unbounded
// FIFO queue. Workers never exit before Close, panics included.
type FixedWorkerPool struct {
	config  FixedWorkerPoolConfig
	workers []*Worker
	queue   *taskQueue
	logger  *zap.Logger
	active  types.Gauge

	activeCount int32
	// tasks failed by Close while still queued
	closedCount int64

	// state management
	state int32
	// mu serializes Start and Close and guards cancel
	mu        sync.Mutex
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
	monitorWg sync.WaitGroup
}

// NewFixedWorkerPool creates a new fixed worker pool
func NewFixedWorkerPool(config *FixedWorkerPoolConfig) (*FixedWorkerPool, error) {
	if config == nil {
		config = DefaultFixedWorkerPoolConfig()
	}
	cfg := *config

	// parameter validation
	if cfg.PoolSize <= 0 {
		return nil, &types.ConfigError{Field: "PoolSize", Value: cfg.PoolSize}
	}
	if cfg.Name == "" {
		cfg.Name = "cpu"
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 10 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	logger := cfg.Logger.With(zap.String("pool", cfg.Name))
	if cfg.PanicHandler == nil {
		cfg.PanicHandler = logPanic(logger)
	}

	pool := &FixedWorkerPool{
		config:  cfg,
		workers: make([]*Worker, cfg.PoolSize),
		queue:   newTaskQueue(cfg.PoolSize * 4),
		logger:  logger,
	}
	if cfg.Metrics != nil {
		pool.active = cfg.Metrics.ActiveThreadsGauge(cfg.Name)
	}

	// create workers
	for i := 0; i < cfg.PoolSize; i++ {
		w := newWorker(i, cfg.Name, pool.queue, cfg.Clock, logger)
		w.pin = cfg.PinWorkers
		w.panicHandler = cfg.PanicHandler
		w.startCallback = pool.onTaskStart
		w.completionCallback = pool.onTaskDone
		pool.workers[i] = w
	}

	return pool, nil
}

// logPanic is the default pool panic handler
func logPanic(logger *zap.Logger) types.PanicHandler {
	return func(info *types.PanicInfo) {
		logger.Error("task running in the cpu pool panicked",
			zap.String("worker", info.Worker),
			zap.String("task_id", info.TaskID),
			zap.Any("panic", info.Value),
			zap.ByteString("stack", info.Stack),
		)
	}
}

// Start starts the worker pool. ctx provides the values and profiler labels
// inherited by workers; the pool runs until Close.
func (p *FixedWorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !atomic.CompareAndSwapInt32(&p.state, poolStateCreated, poolStateRunning) {
		if atomic.LoadInt32(&p.state) == poolStateRunning {
			return types.ErrPoolRunning
		}
		return types.ErrPoolClosed
	}

	ctx, p.cancel = context.WithCancel(ctx)

	// start all workers
	for _, w := range p.workers {
		go w.Start(ctx)
	}

	p.config.Metrics.SetWorkerCount(p.config.Name, p.config.PoolSize)
	p.config.Metrics.SetQueueSize(p.config.Name, 0)

	p.monitorWg.Add(1)
	go p.monitorQueueSize(ctx)

	p.logger.Info("worker pool started", zap.Int("workers", p.config.PoolSize))
	return nil
}

// Submit enqueues a task without blocking. Tasks submitted before Start wait
// in the queue until the workers come up.
func (p *FixedWorkerPool) Submit(task types.Task) error {
	if task == nil {
		return types.ErrNilTask
	}
	if atomic.LoadInt32(&p.state) == poolStateClosed {
		return types.ErrPoolClosed
	}
	if err := p.queue.Push(task); err != nil {
		return err
	}
	p.config.Metrics.RecordTaskSubmitted(p.config.Name)
	return nil
}

// onTaskStart is called by a worker right after a task is claimed
func (p *FixedWorkerPool) onTaskStart() {
	atomic.AddInt32(&p.activeCount, 1)
}

// onTaskDone is called by a worker once a task left the pool
func (p *FixedWorkerPool) onTaskDone(outcome taskOutcome, elapsed time.Duration) {
	switch outcome {
	case outcomeCancelled:
		p.config.Metrics.RecordTaskFinished(p.config.Name, metrics.StatusCancelled)
		return
	case outcomePanicked:
		p.config.Metrics.RecordTaskFinished(p.config.Name, metrics.StatusPanicked)
	default:
		p.config.Metrics.RecordTaskFinished(p.config.Name, metrics.StatusSuccess)
	}
	atomic.AddInt32(&p.activeCount, -1)
	p.config.Metrics.ObserveTaskDuration(p.config.Name, elapsed.Seconds())
}

// monitorQueueSize samples the queue length into the metrics
func (p *FixedWorkerPool) monitorQueueSize(ctx context.Context) {
	defer p.monitorWg.Done()

	ticker := p.config.Clock.NewTicker(p.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			p.config.Metrics.SetQueueSize(p.config.Name, p.queue.Len())
		case <-ctx.Done():
			return
		}
	}
}

// Close stops accepting tasks, fails every task still queued with
// ErrPoolClosed and waits for running tasks to finish.
func (p *FixedWorkerPool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		wasRunning := atomic.SwapInt32(&p.state, poolStateClosed) == poolStateRunning

		for _, task := range p.queue.Close() {
			task.Fail(types.ErrPoolClosed)
			atomic.AddInt64(&p.closedCount, 1)
			p.config.Metrics.RecordTaskFinished(p.config.Name, metrics.StatusCancelled)
		}
		if !wasRunning {
			return
		}

		var errs error
		for _, w := range p.workers {
			errs = multierr.Append(errs, w.wait(p.config.StopTimeout))
		}

		if p.cancel != nil {
			p.cancel()
		}
		p.monitorWg.Wait()
		p.config.Metrics.SetQueueSize(p.config.Name, 0)

		p.closeErr = errs
		p.logger.Info("worker pool closed", zap.Error(errs))
	})

	return p.closeErr
}

// ActiveThreadsGauge returns the gauge tracking running tasks, or nil when
// the pool has no metrics
func (p *FixedWorkerPool) ActiveThreadsGauge() types.Gauge {
	return p.active
}

// Name returns the pool name
func (p *FixedWorkerPool) Name() string {
	return p.config.Name
}

// Size returns the worker pool size
func (p *FixedWorkerPool) Size() int {
	return p.config.PoolSize
}

// Stats gets basic worker pool statistics
func (p *FixedWorkerPool) Stats() types.WorkerPoolStats {
	stats := types.WorkerPoolStats{
		Name:           p.config.Name,
		PoolSize:       p.config.PoolSize,
		ActiveWorkers:  int(atomic.LoadInt32(&p.activeCount)),
		QueueSize:      p.queue.Len(),
		TotalCancelled: atomic.LoadInt64(&p.closedCount),
	}
	for _, w := range p.workers {
		ws := w.Stats()
		stats.TotalCompleted += ws.TotalProcessed
		stats.TotalPanicked += ws.TotalPanicked
		stats.TotalCancelled += ws.TotalCancelled
	}
	return stats
}

// GetWorkerStats gets statistics of all Workers
func (p *FixedWorkerPool) GetWorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}

// IsRunning checks if the worker pool is running
func (p *FixedWorkerPool) IsRunning() bool {
	return atomic.LoadInt32(&p.state) == poolStateRunning
}

// IsClosed checks if the worker pool is closed
func (p *FixedWorkerPool) IsClosed() bool {
	return atomic.LoadInt32(&p.state) == poolStateClosed
}

// QueueLength gets the current queue length
func (p *FixedWorkerPool) QueueLength() int {
	return p.queue.Len()
}
