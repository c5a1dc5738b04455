package probe

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes probe outcomes to Prometheus. Collectors live on their own
// registry so that several probers (and tests) never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	attemptsTotal       prometheus.Counter
	failuresTotal       prometheus.Counter
	consecutiveFailures prometheus.Gauge
	healthy             prometheus.Gauge
	attemptDuration     prometheus.Histogram
}

// NewMetrics creates and registers the probe collectors
func NewMetrics(target string) *Metrics {
	labels := prometheus.Labels{"target": target}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "kakarot_init_probe_attempts_total",
			Help:        "Total liveness probe attempts issued",
			ConstLabels: labels,
		}),
		failuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "kakarot_init_probe_failures_total",
			Help:        "Total liveness probe attempts that failed",
			ConstLabels: labels,
		}),
		consecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kakarot_init_probe_consecutive_failures",
			Help:        "Current streak of consecutive failed probes",
			ConstLabels: labels,
		}),
		healthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kakarot_init_healthy",
			Help:        "Whether the probed service is considered healthy (1) or unhealthy (0)",
			ConstLabels: labels,
		}),
		attemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "kakarot_init_probe_duration_seconds",
			Help:        "Liveness probe attempt duration in seconds",
			Buckets:     prometheus.ExponentialBuckets(0.005, 2, 11),
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.attemptsTotal,
		m.failuresTotal,
		m.consecutiveFailures,
		m.healthy,
		m.attemptDuration,
	)

	m.healthy.Set(1)

	return m
}

// Observe records one finished attempt against the tracker's new state
func (m *Metrics) Observe(seconds float64, failed bool, t *Tracker) {
	m.attemptsTotal.Inc()
	m.attemptDuration.Observe(seconds)
	if failed {
		m.failuresTotal.Inc()
	}

	m.consecutiveFailures.Set(float64(t.ConsecutiveFailures()))
	if t.IsHealthy() {
		m.healthy.Set(1)
	} else {
		m.healthy.Set(0)
	}
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
