//go:build !windows

package supervisor

import (
	"os"
	"os/signal"
	"syscall"
)

// StartReaper subscribes to SIGCHLD and reaps every terminated child,
// including orphans reparented to this process when it runs as PID 1.
// Each reaped status is sent on the returned channel; the supervisor picks
// out its primary child by pid and ignores the rest.
//
// The reap loop drains with WNOHANG until wait4 has nothing left, because
// SIGCHLD is not queued: one signal delivery can stand for several exits.
func StartReaper() <-chan ExitStatus {
	exits := make(chan ExitStatus, 8)

	sigchld := make(chan os.Signal, 1)
	signal.Notify(sigchld, syscall.SIGCHLD)

	go func() {
		for range sigchld {
			for {
				var ws syscall.WaitStatus
				pid, err := syscall.Wait4(-1, &ws, syscall.WNOHANG, nil)
				if pid <= 0 || err != nil {
					break
				}
				if ws.Exited() || ws.Signaled() {
					exits <- statusFromWait(pid, ws)
				}
			}
		}
	}()

	return exits
}

// ForwardableSignals are the termination and interrupt signals the
// supervisor relays to the child
var ForwardableSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}
