// Package logging carries a zap logger through context.Context so that work
// handed to a pool worker logs with the fields of the code that submitted it.
package logging

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

type loggerKey struct{}

var defaultLogger atomic.Pointer[zap.Logger]

func init() {
	defaultLogger.Store(zap.NewNop())
}

// Default returns the process-wide fallback logger
func Default() *zap.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide fallback logger. A nil logger resets
// it to a no-op logger.
func SetDefault(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultLogger.Store(logger)
}

// WithLogger returns a copy of ctx that carries logger
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or Default when there is none
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return logger
		}
	}
	return Default()
}

// With returns a copy of ctx whose logger has the extra fields attached
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(fields...))
}
