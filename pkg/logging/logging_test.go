package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))
}

func TestSetDefault(t *testing.T) {
	previous := Default()
	t.Cleanup(func() { SetDefault(previous) })

	logger := zap.NewExample()
	SetDefault(logger)
	assert.Same(t, logger, Default())

	SetDefault(nil)
	require.NotNil(t, Default())
	assert.NotSame(t, logger, Default())
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	// nil logger leaves the context untouched
	assert.Equal(t, ctx, WithLogger(ctx, nil))

	FromContext(ctx).Info("hello")
	assert.Equal(t, 1, logs.Len())
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	ctx = With(ctx, zap.String("query", "q-1"))
	ctx = With(ctx, zap.Int("split", 7))
	FromContext(ctx).Info("leaf search")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "q-1", fields["query"])
	assert.Equal(t, int64(7), fields["split"])
}
