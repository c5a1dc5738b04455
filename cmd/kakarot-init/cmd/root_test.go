package cmd

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}

	// The child's propagated status survives the trip through the error path
	for _, code := range []int{1, 7, 137, 143} {
		if got := ExitCode(&exitError{code: code}); got != code {
			t.Errorf("ExitCode(exitError{%d}) = %d, want %d", code, got, code)
		}
	}

	// Wrapped exitErrors still unwrap
	wrapped := fmt.Errorf("run: %w", &exitError{code: 3})
	if got := ExitCode(wrapped); got != 3 {
		t.Errorf("ExitCode(wrapped) = %d, want 3", got)
	}

	// Ordinary command failures map to 1
	if got := ExitCode(errors.New("bad flag")); got != 1 {
		t.Errorf("ExitCode(plain error) = %d, want 1", got)
	}
}
