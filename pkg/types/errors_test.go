package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrPanicked", ErrPanicked},
		{"ErrPoolClosed", ErrPoolClosed},
		{"ErrPoolRunning", ErrPoolRunning},
		{"ErrNilTask", ErrNilTask},
		{"ErrAlreadyInitialized", ErrAlreadyInitialized},
		{"ErrAbandoned", ErrAbandoned},
		{"ErrInvalidConfig", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestErrPanicked(t *testing.T) {
	t.Run("Message", func(t *testing.T) {
		if ErrPanicked.Error() != "Scheduled job panicked" {
			t.Errorf("unexpected message %q", ErrPanicked.Error())
		}
	})

	t.Run("Identity", func(t *testing.T) {
		var other error = errPanicked{}
		if other != ErrPanicked {
			t.Errorf("expected marker values to compare equal")
		}
		if ErrPanicked == ErrPoolClosed {
			t.Errorf("expected distinct sentinels")
		}
	})

	t.Run("Wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("search leaf: %w", ErrPanicked)
		if !errors.Is(wrapped, ErrPanicked) {
			t.Errorf("expected errors.Is to see through wrapping")
		}
	})
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "PoolSize", Value: 0}

	expectedMsg := "invalid pool configuration: PoolSize=0"
	if err.Error() != expectedMsg {
		t.Errorf("expected message %q, got %q", expectedMsg, err.Error())
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ConfigError to match ErrInvalidConfig")
	}
	if errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ConfigError not to match ErrPoolClosed")
	}
}

func TestPanicInfo_String(t *testing.T) {
	info := &PanicInfo{Pool: "cpu", Worker: "cpu-3", TaskID: "t-1", Value: "boom"}

	expected := "task t-1 panicked on cpu-3: boom"
	if info.String() != expected {
		t.Errorf("expected %q, got %q", expected, info.String())
	}
}
