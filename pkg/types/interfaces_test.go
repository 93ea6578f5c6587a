package types

import (
	"testing"
	"time"
)

func TestTaskState_String(t *testing.T) {
	tests := []struct {
		state    TaskState
		expected string
	}{
		{TaskQueued, "Queued"},
		{TaskRunning, "Running"},
		{TaskCompleted, "Completed"},
		{TaskPanicked, "Panicked"},
		{TaskCancelled, "Cancelled"},
		{TaskState(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := tt.state.String()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestTaskState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    TaskState
		terminal bool
	}{
		{TaskQueued, false},
		{TaskRunning, false},
		{TaskCompleted, true},
		{TaskPanicked, true},
		{TaskCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if tt.state.IsTerminal() != tt.terminal {
				t.Errorf("expected IsTerminal()=%v for %s", tt.terminal, tt.state)
			}
		})
	}
}

func TestRealClock(t *testing.T) {
	clock := NewRealClock()

	start := clock.Now()
	if clock.Since(start) < 0 {
		t.Errorf("expected non-negative elapsed time")
	}

	ticker := clock.NewTicker(time.Millisecond)
	defer ticker.Stop()
	<-ticker.C()
}
