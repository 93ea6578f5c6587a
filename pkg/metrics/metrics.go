// Package metrics holds the Prometheus collectors of the cpu worker pool
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// StatusSuccess labels tasks whose computation returned
	StatusSuccess = "success"
	// StatusPanicked labels tasks whose computation panicked
	StatusPanicked = "panicked"
	// StatusCancelled labels tasks dropped before running
	StatusCancelled = "cancelled"
)

// Metrics holds all Prometheus metrics for cpu pools
type Metrics struct {
	ActiveThreads  *prometheus.GaugeVec
	TasksSubmitted *prometheus.CounterVec
	TasksFinished  *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	QueueSize      *prometheus.GaugeVec
	WorkerCount    *prometheus.GaugeVec
}

// NewMetrics creates the pool metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveThreads: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_threads",
				Help:      "Number of pool threads currently running a task",
			},
			[]string{"pool"},
		),
		TasksSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks submitted to the pool",
			},
			[]string{"pool"},
		),
		TasksFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tasks_finished_total",
				Help:      "Total number of tasks that left the pool, by outcome",
			},
			[]string{"pool", "status"},
		),
		TaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_duration_seconds",
				Help:      "Duration of task execution in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool"},
		),
		QueueSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_size",
				Help:      "Current number of tasks waiting in the queue",
			},
			[]string{"pool"},
		),
		WorkerCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "worker_count",
				Help:      "Total number of workers in the pool",
			},
			[]string{"pool"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.ActiveThreads,
			m.TasksSubmitted,
			m.TasksFinished,
			m.TaskDuration,
			m.QueueSize,
			m.WorkerCount,
		)
	}
	return m
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics registered with the Prometheus
// default registerer
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics("cpuexec", "pool", prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// ActiveThreadsGauge returns the active thread gauge of a pool
func (m *Metrics) ActiveThreadsGauge(pool string) prometheus.Gauge {
	return m.ActiveThreads.WithLabelValues(pool)
}

// RecordTaskSubmitted increments the submitted tasks counter
func (m *Metrics) RecordTaskSubmitted(pool string) {
	if m == nil {
		return
	}
	m.TasksSubmitted.WithLabelValues(pool).Inc()
}

// RecordTaskFinished increments the finished tasks counter for status
func (m *Metrics) RecordTaskFinished(pool, status string) {
	if m == nil {
		return
	}
	m.TasksFinished.WithLabelValues(pool, status).Inc()
}

// ObserveTaskDuration records task execution duration
func (m *Metrics) ObserveTaskDuration(pool string, seconds float64) {
	if m == nil {
		return
	}
	m.TaskDuration.WithLabelValues(pool).Observe(seconds)
}

// SetQueueSize sets the current queue size
func (m *Metrics) SetQueueSize(pool string, size int) {
	if m == nil {
		return
	}
	m.QueueSize.WithLabelValues(pool).Set(float64(size))
}

// SetWorkerCount sets the total number of workers
func (m *Metrics) SetWorkerCount(pool string, count int) {
	if m == nil {
		return
	}
	m.WorkerCount.WithLabelValues(pool).Set(float64(count))
}
