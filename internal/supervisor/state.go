package supervisor

import (
	"fmt"
	"sync"
	"syscall"
)

// State represents the supervisor's lifecycle state
type State string

const (
	StateStarting    State = "starting"
	StateRunning     State = "running"
	StateTerminating State = "terminating"
	StateExited      State = "exited"
)

// lifecycle tracks the supervisor state machine.
// Transitions only move forward; Terminating is idempotent so that a signal
// and a child exit racing each other both funnel into the same path.
type lifecycle struct {
	mu    sync.Mutex
	state State
}

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateStarting}
}

func (l *lifecycle) Current() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// ToRunning marks the child as confirmed spawned
func (l *lifecycle) ToRunning() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateStarting {
		l.state = StateRunning
	}
}

// ToTerminating begins shutdown. Returns true on the first call only;
// duplicate termination requests are no-ops.
func (l *lifecycle) ToTerminating() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateExited || l.state == StateTerminating {
		return false
	}
	l.state = StateTerminating
	return true
}

// ToExited is terminal
func (l *lifecycle) ToExited() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateExited
}

// ExitStatus describes how a reaped process terminated
type ExitStatus struct {
	Pid      int
	Code     int            // exit code when the process exited normally
	Signal   syscall.Signal // terminating signal when Signaled
	Signaled bool
}

// ExitCode maps the status to the code the supervisor itself exits with.
// Signal deaths use the shell convention of 128+signal.
func (e ExitStatus) ExitCode() int {
	if e.Signaled {
		return 128 + int(e.Signal)
	}
	return e.Code
}

func (e ExitStatus) String() string {
	if e.Signaled {
		return fmt.Sprintf("pid %d killed by signal %d", e.Pid, e.Signal)
	}
	return fmt.Sprintf("pid %d exited with code %d", e.Pid, e.Code)
}

// statusFromWait converts a raw wait status into an ExitStatus
func statusFromWait(pid int, ws syscall.WaitStatus) ExitStatus {
	if ws.Signaled() {
		return ExitStatus{Pid: pid, Signal: ws.Signal(), Signaled: true}
	}
	return ExitStatus{Pid: pid, Code: ws.ExitStatus()}
}
