package probe

import (
	"errors"
	"testing"
)

func TestTrackerStartsHealthy(t *testing.T) {
	tr := NewTracker(5)
	if !tr.IsHealthy() {
		t.Error("Tracker should start healthy")
	}
	if tr.ConsecutiveFailures() != 0 {
		t.Errorf("Initial streak = %d, want 0", tr.ConsecutiveFailures())
	}
}

func TestTrackerUnhealthyExactlyAtThreshold(t *testing.T) {
	tr := NewTracker(5)
	probeErr := errors.New("connection refused")

	// Failures 1 through 4 must not flip the status
	for i := 1; i <= 4; i++ {
		tr.RecordFailure(probeErr)
		if !tr.IsHealthy() {
			t.Fatalf("Unhealthy after %d failures, threshold is 5", i)
		}
	}

	// The 5th consecutive failure flips it
	tr.RecordFailure(probeErr)
	if tr.IsHealthy() {
		t.Error("Still healthy after 5 consecutive failures")
	}
	if tr.Status() != HealthStatusUnhealthy {
		t.Errorf("Status = %s, want unhealthy", tr.Status())
	}
}

func TestTrackerSuccessResetsStreak(t *testing.T) {
	tr := NewTracker(5)
	probeErr := errors.New("timeout")

	tr.RecordFailure(probeErr)
	if tr.ConsecutiveFailures() != 1 {
		t.Errorf("Streak = %d, want 1", tr.ConsecutiveFailures())
	}

	tr.RecordSuccess()
	if tr.ConsecutiveFailures() != 0 {
		t.Errorf("Streak after success = %d, want 0", tr.ConsecutiveFailures())
	}
	if !tr.IsHealthy() {
		t.Error("Status should remain healthy after a reset")
	}
}

func TestTrackerRecoversAfterUnhealthy(t *testing.T) {
	tr := NewTracker(3)
	probeErr := errors.New("connection refused")

	for i := 0; i < 3; i++ {
		tr.RecordFailure(probeErr)
	}
	if tr.IsHealthy() {
		t.Fatal("Tracker should be unhealthy at the threshold")
	}

	tr.RecordSuccess()
	if !tr.IsHealthy() {
		t.Error("A single success should restore healthy status")
	}
	if tr.ConsecutiveFailures() != 0 {
		t.Errorf("Streak = %d, want 0", tr.ConsecutiveFailures())
	}
}

func TestTrackerInterleavedFailuresNeverReachThreshold(t *testing.T) {
	tr := NewTracker(5)
	probeErr := errors.New("timeout")

	// Failures interrupted by successes never accumulate into a streak
	for round := 0; round < 10; round++ {
		for i := 0; i < 4; i++ {
			tr.RecordFailure(probeErr)
		}
		tr.RecordSuccess()
	}

	if !tr.IsHealthy() {
		t.Error("Interleaved failures below the threshold must stay healthy")
	}
}

func TestTrackerSnapshot(t *testing.T) {
	tr := NewTracker(5)
	probeErr := errors.New("connection refused")

	tr.RecordSuccess()
	tr.RecordFailure(probeErr)
	tr.RecordFailure(probeErr)

	r := tr.Snapshot()
	if r.Status != "healthy" {
		t.Errorf("Status = %s, want healthy", r.Status)
	}
	if r.ConsecutiveFailures != 2 {
		t.Errorf("ConsecutiveFailures = %d, want 2", r.ConsecutiveFailures)
	}
	if r.TotalAttempts != 3 {
		t.Errorf("TotalAttempts = %d, want 3", r.TotalAttempts)
	}
	if r.TotalFailures != 2 {
		t.Errorf("TotalFailures = %d, want 2", r.TotalFailures)
	}
	if r.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want 5", r.FailureThreshold)
	}
	if r.LastError != "connection refused" {
		t.Errorf("LastError = %q, want connection refused", r.LastError)
	}
	if r.LastSuccess.IsZero() {
		t.Error("LastSuccess should be recorded")
	}
}
