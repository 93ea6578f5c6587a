package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBasicTask(t *testing.T) {
	task := NewBasicTask(func(ctx context.Context) error { return nil })

	assert.True(t, strings.HasPrefix(task.ID(), "task-"))
	assert.True(t, task.Claim())
}

func TestNewBasicTaskWithID(t *testing.T) {
	task := NewBasicTaskWithID("custom-id", func(ctx context.Context) error { return nil })
	assert.Equal(t, "custom-id", task.ID())
}

func TestTaskIDCounter(t *testing.T) {
	first := NewBasicTask(nil)
	second := NewBasicTask(nil)
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestBasicTask_Execute(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(ctx context.Context) error
		wantErr string
	}{
		{
			name: "success",
			fn:   func(ctx context.Context) error { return nil },
		},
		{
			name:    "error",
			fn:      func(ctx context.Context) error { return errors.New("bad split") },
			wantErr: "bad split",
		},
		{
			name:    "nil function",
			fn:      nil,
			wantErr: "has no execution function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewBasicTask(tt.fn)
			err := task.Execute(context.Background())

			select {
			case <-task.Done():
			default:
				t.Fatal("expected Done to be closed after Execute")
			}

			waitErr := task.Wait(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.NoError(t, waitErr)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, err, waitErr)
			}
		})
	}
}

func TestBasicTask_FirstOutcomeWins(t *testing.T) {
	task := NewBasicTask(func(ctx context.Context) error { return nil })
	failure := errors.New("pool closed")

	task.Fail(failure)
	assert.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, failure, task.Wait(context.Background()))
}

func TestBasicTask_WaitHonoursContext(t *testing.T) {
	task := NewBasicTask(func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, task.Wait(ctx), context.DeadlineExceeded)
}

func BenchmarkBasicTask_Execute(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		task := NewBasicTask(func(ctx context.Context) error { return nil })
		_ = task.Execute(ctx)
	}
}
