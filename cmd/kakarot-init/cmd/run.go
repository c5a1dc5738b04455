package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kkrt-labs/kakarot-init/internal/admin"
	"github.com/kkrt-labs/kakarot-init/internal/config"
	"github.com/kkrt-labs/kakarot-init/internal/logging"
	"github.com/kkrt-labs/kakarot-init/internal/probe"
	"github.com/kkrt-labs/kakarot-init/internal/supervisor"
)

var (
	runTarget string
	runWatch  bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- args...]",
	Short: "Supervise the kakarot-rpc service as PID 1",
	Long: `Run spawns the kakarot-rpc binary with the given arguments, forwards
termination and interrupt signals to it, reaps orphaned descendants, and
exits with the service's own exit status.

Arguments after -- are passed to the service verbatim. No arguments means
"run with defaults"; nothing is ever substituted for an empty argument list.

With --watch, an in-process liveness prober and admin endpoint
(/healthz, /status, /metrics) are started alongside supervision.

Example:
  kakarot-init run
  kakarot-init run -- --chain-id 1263227476
  kakarot-init run --watch -- --verbose`,
	Args: cobra.ArbitraryArgs,
	RunE: runSupervisor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runTarget, "target", "", "path to the supervised executable (default from config)")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "also run the liveness prober and admin endpoint in-process")
}

func runSupervisor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg, "supervisor")

	target := cfg.Target
	if runTarget != "" {
		target = runTarget
	}

	log.Info("starting", map[string]interface{}{
		"target":    target,
		"args":      args,
		"bind_addr": cfg.BindAddr,
		"pid":       os.Getpid(),
	})

	// The reaper subscribes to SIGCHLD before the child exists, so its exit
	// can never be missed
	exits := supervisor.StartReaper()

	signals := make(chan os.Signal, 8)
	signal.Notify(signals, supervisor.ForwardableSignals...)

	proc := supervisor.NewProcess(target, args)
	sup := supervisor.New(proc, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if runWatch {
		startWatcher(ctx, cfg, sup, newLogger(cfg, "watcher"))
	}

	code, err := sup.Run(ctx, signals, exits)
	if err != nil {
		log.Error("supervision failed", map[string]interface{}{"error": err.Error()})
	}
	if code != 0 {
		// Already logged; suppress cobra's own reporting so the child's
		// status propagates silently
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &exitError{code: code}
	}
	return nil
}

// startWatcher runs the prober and admin server beside the supervisor. They
// share nothing with supervision but the resolved bind address and the child
// pid for stats sampling; probe failures never affect the supervised process.
func startWatcher(ctx context.Context, cfg *config.Config, sup *supervisor.Supervisor, log *logging.Logger) {
	prober := probe.New(probe.Config{
		Target:      cfg.BindAddr,
		Interval:    cfg.ProbeInterval,
		Timeout:     cfg.ProbeTimeout,
		Grace:       cfg.ProbeGrace,
		MaxFailures: cfg.ProbeMaxFailures,
	}, log)

	stats := func() (*supervisor.ProcStats, error) {
		return supervisor.SampleStats(sup.Pid())
	}
	server := admin.NewServer(cfg.AdminAddr, cfg.BindAddr, prober, stats, log)

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
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()
}
