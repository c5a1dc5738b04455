package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kkrt-labs/kakarot-init/internal/config"
	"github.com/kkrt-labs/kakarot-init/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kakarot-init",
	Short: "Container init and liveness wrapper for the kakarot-rpc service",
	Long: `kakarot-init is the container entrypoint for the kakarot-rpc JSON-RPC
binary. It runs as PID 1: it spawns the service, forwards termination
signals to it, reaps orphaned processes, and propagates the service's
exit status. It also provides the container's health check, a periodic
JSON-RPC probe against the service's bind address.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// exitError carries a supervised child's exit status up to main through the
// normal cobra error path, so deferred cleanup still runs on the way out
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode maps a command error to the process exit code: nil is 0, an
// exitError is the child's propagated status, anything else is 1
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// loadConfig resolves the configuration with flag overrides applied
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logJSON {
		cfg.LogJSON = true
	}
	return cfg, nil
}

// newLogger builds the process logger from the resolved configuration
func newLogger(cfg *config.Config, component string) *logging.Logger {
	log := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	return log.WithField("component", component)
}
