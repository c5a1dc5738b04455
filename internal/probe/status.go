package probe

import (
	"sync"
	"time"
)

// HealthStatus is the externally visible verdict reported to the orchestrator
type HealthStatus int

const (
	HealthStatusHealthy HealthStatus = iota
	HealthStatusUnhealthy
)

func (hs HealthStatus) String() string {
	switch hs {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Tracker counts consecutive probe failures and derives the health status.
// Only a streak reaching maxConsecutiveFailures flips the status to
// unhealthy; a single success resets the streak and the status.
type Tracker struct {
	mu sync.RWMutex

	status           HealthStatus
	lastStatusChange time.Time

	lastSuccess         time.Time
	consecutiveFailures int
	totalFailures       int64
	totalAttempts       int64

	maxConsecutiveFailures int

	lastErr error
}

// NewTracker creates a tracker with the given failure threshold
func NewTracker(maxConsecutiveFailures int) *Tracker {
	return &Tracker{
		status:                 HealthStatusHealthy,
		lastStatusChange:       time.Now(),
		maxConsecutiveFailures: maxConsecutiveFailures,
	}
}

// RecordSuccess records a probe that got any response within its timeout
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalAttempts++
	t.lastSuccess = time.Now()
	t.consecutiveFailures = 0
	t.lastErr = nil
	t.updateStatus()
}

// RecordFailure records a probe that timed out or failed to connect
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalAttempts++
	t.consecutiveFailures++
	t.totalFailures++
	t.lastErr = err
	t.updateStatus()
}

// updateStatus derives the status from the streak. Must be called with the
// lock held.
func (t *Tracker) updateStatus() {
	newStatus := HealthStatusHealthy
	if t.consecutiveFailures >= t.maxConsecutiveFailures {
		newStatus = HealthStatusUnhealthy
	}

	if newStatus != t.status {
		t.status = newStatus
		t.lastStatusChange = time.Now()
	}
}

// Status returns the current health status
func (t *Tracker) Status() HealthStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsHealthy returns true while the failure streak is below the threshold
func (t *Tracker) IsHealthy() bool {
	return t.Status() == HealthStatusHealthy
}

// ConsecutiveFailures returns the current streak length
func (t *Tracker) ConsecutiveFailures() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.consecutiveFailures
}

// Report is a point-in-time snapshot served on /status
type Report struct {
	Status              string    `json:"status" yaml:"status"`
	StatusSince         time.Time `json:"status_since" yaml:"status_since"`
	ConsecutiveFailures int       `json:"consecutive_failures" yaml:"consecutive_failures"`
	FailureThreshold    int       `json:"failure_threshold" yaml:"failure_threshold"`
	TotalAttempts       int64     `json:"total_attempts" yaml:"total_attempts"`
	TotalFailures       int64     `json:"total_failures" yaml:"total_failures"`
	LastSuccess         time.Time `json:"last_success,omitempty" yaml:"last_success,omitempty"`
	LastError           string    `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// Snapshot returns the current report
func (t *Tracker) Snapshot() Report {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r := Report{
		Status:              t.status.String(),
		StatusSince:         t.lastStatusChange,
		ConsecutiveFailures: t.consecutiveFailures,
		FailureThreshold:    t.maxConsecutiveFailures,
		TotalAttempts:       t.totalAttempts,
		TotalFailures:       t.totalFailures,
		LastSuccess:         t.lastSuccess,
	}
	if t.lastErr != nil {
		r.LastError = t.lastErr.Error()
	}
	return r
}
