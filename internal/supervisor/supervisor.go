package supervisor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/kkrt-labs/kakarot-init/internal/logging"
)

// Supervisor occupies the init position inside the container's process
// namespace. It launches the target service, forwards termination and
// interrupt signals to it, and propagates the child's exit status as its own.
// Zombie reaping happens in the reap loop feeding the exits channel.
type Supervisor struct {
	proc Process
	log  *logging.Logger
	life *lifecycle

	// pid is published once the child is confirmed spawned. Readers (the
	// stats sampler, the admin surface) go through here rather than the
	// process handle, which is only the spawning goroutine's to touch.
	mu  sync.Mutex
	pid int
}

// New creates a supervisor for the given process handle
func New(proc Process, log *logging.Logger) *Supervisor {
	return &Supervisor{
		proc: proc,
		log:  log,
		life: newLifecycle(),
	}
}

// State returns the current lifecycle state
func (s *Supervisor) State() State {
	return s.life.Current()
}

// Pid returns the child pid, or 0 before the child is spawned.
// Safe to call from any goroutine at any time.
func (s *Supervisor) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// Run spawns the child and blocks until it has exited, returning the exit
// code the supervisor itself must terminate with.
//
// signals delivers the signals to forward; exits delivers reaped statuses
// (the primary child's and any orphans'). Every received signal is forwarded
// exactly once while the child is alive. The supervisor never returns before
// the child has exited: context cancellation only asks the child to stop.
func (s *Supervisor) Run(ctx context.Context, signals <-chan os.Signal, exits <-chan ExitStatus) (int, error) {
	if err := s.proc.Start(); err != nil {
		// Fatal by contract: restarts belong to the orchestrator, not here
		s.life.ToExited()
		return 1, fmt.Errorf("failed to spawn %s: %w", describe(s.proc), err)
	}

	pid := s.proc.Pid()
	s.mu.Lock()
	s.pid = pid
	s.mu.Unlock()

	s.life.ToRunning()
	s.log.Info("child started", map[string]interface{}{"pid": pid})

	done := ctx.Done()
	for {
		select {
		case sig := <-signals:
			if s.life.ToTerminating() {
				s.log.Info("terminating", map[string]interface{}{"signal": sig.String()})
			}
			s.forward(sig)

		case <-done:
			// External teardown: translate into a single SIGTERM
			done = nil
			if s.life.ToTerminating() {
				s.log.Info("context cancelled, stopping child")
				s.forward(syscall.SIGTERM)
			}

		case es := <-exits:
			if es.Pid != pid {
				s.log.Debug("reaped orphan", map[string]interface{}{"pid": es.Pid})
				continue
			}
			s.life.ToTerminating()
			s.life.ToExited()
			s.log.Info("child exited", map[string]interface{}{
				"pid":       es.Pid,
				"exit_code": es.ExitCode(),
				"signaled":  es.Signaled,
			})
			return es.ExitCode(), nil
		}
	}
}

// forward delivers one signal to the child. Delivery failures are logged and
// swallowed: the child may be exiting already, and the exit path will report.
func (s *Supervisor) forward(sig os.Signal) {
	if err := s.proc.Signal(sig); err != nil {
		s.log.Warn("signal forward failed", map[string]interface{}{
			"signal": sig.String(),
			"error":  err.Error(),
		})
	}
}

func describe(p Process) string {
	if c, ok := p.(*childProcess); ok && c.cmd != nil {
		return c.cmd.Path
	}
	return "child"
}
