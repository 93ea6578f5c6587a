// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jzx17/cpuexec/pkg/metrics"
)

// DefaultTimeout bounds how long a test waits for pool work
const DefaultTimeout = 5 * time.Second

// Context returns a context that ends after DefaultTimeout or with the test
func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// NewObservedLogger returns a zap logger whose entries can be inspected
func NewObservedLogger(level zapcore.LevelEnabler) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// NewMetrics returns pool metrics registered on a private registry so tests
// never collide on the default one
func NewMetrics(t testing.TB) *metrics.Metrics {
	t.Helper()
	return metrics.NewMetrics("test", "pool", prometheus.NewRegistry())
}
