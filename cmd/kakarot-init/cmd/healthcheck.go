package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kkrt-labs/kakarot-init/internal/probe"
)

var (
	healthcheckTarget  string
	healthcheckTimeout time.Duration
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Issue a single liveness probe and exit 0 or 1",
	Long: `Healthcheck sends one eth_chainId JSON-RPC request to the service's
bind address. Any HTTP response within the timeout means healthy (exit 0);
a connection failure or timeout means unhealthy (exit 1).

This is the Docker HEALTHCHECK form: the orchestrator supplies the cadence
and the failure threshold. For a self-contained periodic prober with streak
tracking, see the watch command.

Example:
  HEALTHCHECK --interval=3s --timeout=5s --start-period=1s --retries=5 \
    CMD ["kakarot-init", "healthcheck"]`,
	RunE: runHealthcheck,
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)

	healthcheckCmd.Flags().StringVar(&healthcheckTarget, "target", "", "address to probe (default: resolved bind address)")
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 0, "probe timeout (default from config)")
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target := cfg.BindAddr
	if healthcheckTarget != "" {
		target = healthcheckTarget
	}
	timeout := cfg.ProbeTimeout
	if healthcheckTimeout > 0 {
		timeout = healthcheckTimeout
	}

	client := &http.Client{Timeout: timeout}
	if err := probe.Attempt(context.Background(), client, target, timeout); err != nil {
		fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("healthy")
	return nil
}
