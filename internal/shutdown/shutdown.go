package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kkrt-labs/kakarot-init/internal/logging"
)

// Manager handles graceful shutdown of the watch daemon
type Manager struct {
	shutdownFuncs []func(context.Context) error
	mu            sync.Mutex
	timeout       time.Duration
	doneChan      chan struct{}
	once          sync.Once
	log           *logging.Logger
}

// New creates a new shutdown manager
func New(timeout time.Duration, log *logging.Logger) *Manager {
	return &Manager{
		shutdownFuncs: make([]func(context.Context) error, 0),
		timeout:       timeout,
		doneChan:      make(chan struct{}),
		log:           log,
	}
}

// Register adds a shutdown function
// Functions are called in reverse order (LIFO)
func (m *Manager) Register(fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownFuncs = append(m.shutdownFuncs, fn)
}

// Done returns a channel that is closed when shutdown is initiated
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// Wait blocks until a termination signal arrives, then runs the registered
// shutdown functions
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	m.log.Info("received signal, shutting down", map[string]interface{}{
		"signal": sig.String(),
	})

	m.once.Do(func() {
		close(m.doneChan)
	})

	m.Shutdown()
}

// Shutdown executes all registered shutdown functions
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	// Execute shutdown functions in reverse order (LIFO)
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil {
			m.log.Error("shutdown function failed", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
		}
	}

	m.log.Info("shutdown complete")
}

// StopHTTPServer creates a shutdown function for an http.Server-like value
func StopHTTPServer(server interface{ Shutdown(context.Context) error }, name string, log *logging.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		log.Info("stopping server", map[string]interface{}{"name": name})
		return server.Shutdown(ctx)
	}
}
