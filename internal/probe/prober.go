package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kkrt-labs/kakarot-init/internal/logging"
)

// Payload is the synthetic JSON-RPC request used for every probe. eth_chainId
// is side-effect-free and answerable as soon as the server is up; the content
// of the response is irrelevant, only its arrival within the timeout counts.
const Payload = `{"jsonrpc": "2.0", "method": "eth_chainId", "id": 1}`

// Config holds the probe cadence settings
type Config struct {
	// Target is the Bind Address of the probed service, host:port
	Target string

	// Interval between attempts
	Interval time.Duration

	// Timeout bounds each attempt
	Timeout time.Duration

	// Grace is the delay before the first attempt, tolerating startup latency
	Grace time.Duration

	// MaxFailures is the consecutive-failure threshold
	MaxFailures int
}

// Prober issues sequential liveness probes against the service's JSON-RPC
// endpoint. Attempts never overlap: a slow attempt delays the next interval
// rather than piling concurrent requests onto a degraded service.
type Prober struct {
	cfg     Config
	client  *http.Client
	tracker *Tracker
	metrics *Metrics
	log     *logging.Logger
}

// New creates a prober for the given target
func New(cfg Config, log *logging.Logger) *Prober {
	return &Prober{
		cfg: cfg,
		client: &http.Client{
			// The per-attempt context already bounds the attempt; the client
			// timeout is a backstop so no outbound connection can dangle
			Timeout: cfg.Timeout,
		},
		tracker: NewTracker(cfg.MaxFailures),
		metrics: NewMetrics(cfg.Target),
		log:     log,
	}
}

// Tracker exposes the health state shared with the admin server
func (p *Prober) Tracker() *Tracker {
	return p.tracker
}

// Metrics exposes the Prometheus collectors
func (p *Prober) Metrics() *Metrics {
	return p.metrics
}

// URL derives the probe URL from a Bind Address. The address itself is
// pass-through configuration; only the scheme is supplied here.
func URL(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return "http://" + target
}

// Attempt issues a single probe. Any HTTP response within the timeout counts
// as healthy regardless of status code or body; transport errors and
// timeouts count as unhealthy.
func Attempt(ctx context.Context, client *http.Client, target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, URL(target), strings.NewReader(Payload))
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe to %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	return nil
}

// Run probes on the configured cadence until the context is cancelled.
// The first attempt waits out the grace delay.
func (p *Prober) Run(ctx context.Context) error {
	p.log.Info("prober starting", map[string]interface{}{
		"target":       p.cfg.Target,
		"interval":     p.cfg.Interval.String(),
		"timeout":      p.cfg.Timeout.String(),
		"grace":        p.cfg.Grace.String(),
		"max_failures": p.cfg.MaxFailures,
	})

	select {
	case <-time.After(p.cfg.Grace):
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		p.probeOnce(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// probeOnce runs one attempt and records the outcome
func (p *Prober) probeOnce(ctx context.Context) {
	start := time.Now()
	err := Attempt(ctx, p.client, p.cfg.Target, p.cfg.Timeout)
	elapsed := time.Since(start)

	wasHealthy := p.tracker.IsHealthy()

	if err != nil {
		p.tracker.RecordFailure(err)
		p.metrics.Observe(elapsed.Seconds(), true, p.tracker)

		fields := map[string]interface{}{
			"error":                err.Error(),
			"consecutive_failures": p.tracker.ConsecutiveFailures(),
		}
		if wasHealthy && !p.tracker.IsHealthy() {
			p.log.Error("service is unhealthy", fields)
		} else {
			p.log.Warn("probe failed", fields)
		}
		return
	}

	p.tracker.RecordSuccess()
	p.metrics.Observe(elapsed.Seconds(), false, p.tracker)

	if !wasHealthy {
		p.log.Info("service recovered", map[string]interface{}{
			"duration": elapsed.String(),
		})
	} else {
		p.log.Debug("probe ok", map[string]interface{}{
			"duration": elapsed.String(),
		})
	}
}
