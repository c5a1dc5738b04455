package supervisor

import (
	"os"
	"os/exec"
)

// Process is the handle to the supervised child. The supervisor only ever
// needs to start it, know its pid, and deliver signals; keeping the surface
// this small lets tests inject a fake handle.
type Process interface {
	Start() error
	Pid() int
	Signal(sig os.Signal) error
}

// childProcess wraps exec.Cmd. The child's exit status is collected by the
// reap loop, never by cmd.Wait: as PID 1 the supervisor reaps everything
// through a single wait4 path, and two waiters would race for the status.
type childProcess struct {
	cmd *exec.Cmd
}

// NewProcess builds the handle for the target executable with the argument
// vector passed through verbatim. An empty args slice is a valid invocation
// meaning "run with defaults"; nothing is ever substituted for it.
func NewProcess(target string, args []string) Process {
	cmd := exec.Command(target, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Env = os.Environ()
	return &childProcess{cmd: cmd}
}

func (c *childProcess) Start() error {
	return c.cmd.Start()
}

func (c *childProcess) Pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

func (c *childProcess) Signal(sig os.Signal) error {
	if c.cmd.Process == nil {
		return os.ErrProcessDone
	}
	return c.cmd.Process.Signal(sig)
}
