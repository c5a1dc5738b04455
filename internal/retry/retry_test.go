package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("Calls = %d, want 3", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	wantErr := errors.New("always failing")
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return wantErr
	})
	if err == nil {
		t.Fatal("Do should fail after exhausting retries")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Error should wrap the last failure, got %v", err)
	}
	if calls != 4 {
		t.Errorf("Calls = %d, want 4 (initial + 3 retries)", calls)
	}
}

func TestDoRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), func() error {
		return errors.New("failing")
	})
	if err == nil {
		t.Fatal("Do should fail on a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Error should wrap context.Canceled, got %v", err)
	}
}
