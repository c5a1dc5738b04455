package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kkrt-labs/kakarot-init/internal/logging"
	"github.com/kkrt-labs/kakarot-init/internal/probe"
	"github.com/kkrt-labs/kakarot-init/internal/supervisor"
)

// StatsSource samples the supervised child's resource usage. Nil when the
// prober runs standalone and no child is supervised in-process.
type StatsSource func() (*supervisor.ProcStats, error)

// StatusResponse is the /status payload
type StatusResponse struct {
	Target string                `json:"target" yaml:"target"`
	Probe  probe.Report          `json:"probe" yaml:"probe"`
	Child  *supervisor.ProcStats `json:"child,omitempty" yaml:"child,omitempty"`
}

// Server is the orchestrator-facing HTTP surface of the watch daemon:
// /healthz for probing machinery, /status for humans and the status CLI,
// /metrics for Prometheus.
type Server struct {
	target  string
	tracker *probe.Tracker
	metrics *probe.Metrics
	stats   StatsSource
	log     *logging.Logger
	srv     *http.Server
}

// NewServer creates the admin server listening on addr
func NewServer(addr, target string, p *probe.Prober, stats StatsSource, log *logging.Logger) *Server {
	s := &Server{
		target:  target,
		tracker: p.Tracker(),
		metrics: p.Metrics(),
		stats:   stats,
		log:     log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	r.HandleFunc("/status", s.handleStatus).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.srv.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("admin server listening", map[string]interface{}{"addr": s.srv.Addr})
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.tracker.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("unhealthy\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Target: s.target,
		Probe:  s.tracker.Snapshot(),
	}

	if s.stats != nil {
		if stats, err := s.stats(); err == nil {
			resp.Child = stats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
