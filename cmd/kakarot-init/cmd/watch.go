package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kkrt-labs/kakarot-init/internal/admin"
	"github.com/kkrt-labs/kakarot-init/internal/probe"
	"github.com/kkrt-labs/kakarot-init/internal/shutdown"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the periodic liveness prober as a daemon",
	Long: `Watch probes the service's bind address on a fixed cadence and keeps a
consecutive-failure streak. After the configured number of consecutive
failures the externally visible status flips to unhealthy; a single success
resets it.

The daemon serves /healthz (200 healthy, 503 unhealthy), /status and
/metrics on the admin address for the orchestrator and the status command.

Example:
  kakarot-init watch
  KAKAROT_RPC_URL=127.0.0.1:3030 kakarot-init watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg, "watch")

	prober := probe.New(probe.Config{
		Target:      cfg.BindAddr,
		Interval:    cfg.ProbeInterval,
		Timeout:     cfg.ProbeTimeout,
		Grace:       cfg.ProbeGrace,
		MaxFailures: cfg.ProbeMaxFailures,
	}, log)

	// Standalone watcher supervises nothing, so there are no child stats
	server := admin.NewServer(cfg.AdminAddr, cfg.BindAddr, prober, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := shutdown.New(10*time.Second, log)
	mgr.Register(shutdown.StopHTTPServer(server, "admin", log))
	mgr.Register(func(context.Context) error {
		cancel()
		return nil
	})

	go func() {
		if err := prober.Run(ctx); err != nil && err != context.Canceled {
			log.Error("prober stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	go func() {
		if err := server.Start(); err != nil {
			log.Error("admin server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	mgr.Wait()
	return nil
}
