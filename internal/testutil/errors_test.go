package testutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestMockErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrMockStoreUnavailable", ErrMockStoreUnavailable, "task store unavailable"},
		{"ErrMockDiskFull", ErrMockDiskFull, "disk full"},
		{"ErrMockStepLogFailed", ErrMockStepLogFailed, "step log write failed"},
		{"ErrMockNotFound", ErrMockNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.want)
			}
		})
	}
}

func TestMockErrorsAreSentinelErrors(t *testing.T) {
	wrapped := fmt.Errorf("save step: %w", ErrMockStepLogFailed)
	if !errors.Is(wrapped, ErrMockStepLogFailed) {
		t.Error("wrapped error should match its sentinel")
	}
	if errors.Is(errors.New("step log write failed"), ErrMockStepLogFailed) {
		t.Error("identical message should not match the sentinel")
	}
}
