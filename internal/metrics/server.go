// Package metrics provides a simple Prometheus-compatible metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/logging"
)

// Metrics holds runtime metrics for saydo
type Metrics struct {
	// Commands
	Commands            atomic.Int64
	CommandFailures     atomic.Int64
	ParseFailures       atomic.Int64
	ResolutionFailures  atomic.Int64
	TransportFailures   atomic.Int64
	OperationFailures   atomic.Int64
	UnsupportedFailures atomic.Int64

	// Health checks
	HealthChecks        atomic.Int64
	HealthCheckFailures atomic.Int64

	// Whitelist reloads
	WhitelistReloads      atomic.Int64
	WhitelistReloadErrors atomic.Int64

	// Timing (last command duration in ms)
	LastCommandDurationMs atomic.Int64

	startTime time.Time
}

var (
	global     *Metrics
	globalOnce sync.Once
)

// New returns a fresh metrics set.
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalOnce.Do(func() {
		global = New()
	})
	return global
}

// RecordCommand records one executed command and how it ended.
func (m *Metrics) RecordCommand(kind domain.FailureKind, durationMs int64) {
	m.Commands.Add(1)
	m.LastCommandDurationMs.Store(durationMs)
	if kind == domain.KindNone {
		return
	}
	m.CommandFailures.Add(1)
	switch kind {
	case domain.KindParse:
		m.ParseFailures.Add(1)
	case domain.KindResolution:
		m.ResolutionFailures.Add(1)
	case domain.KindTransport:
		m.TransportFailures.Add(1)
	case domain.KindOperation:
		m.OperationFailures.Add(1)
	case domain.KindUnsupported:
		m.UnsupportedFailures.Add(1)
	}
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(healthy bool) {
	m.HealthChecks.Add(1)
	if !healthy {
		m.HealthCheckFailures.Add(1)
	}
}

// RecordReload records a whitelist reload attempt
func (m *Metrics) RecordReload(success bool) {
	m.WhitelistReloads.Add(1)
	if !success {
		m.WhitelistReloadErrors.Add(1)
	}
}

type sample struct {
	name, help, typ string
	value           int64
}

// Handler returns an HTTP handler for /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		fmt.Fprintf(w, "# HELP saydo_uptime_seconds Time since saydo started\n")
		fmt.Fprintf(w, "# TYPE saydo_uptime_seconds gauge\n")
		fmt.Fprintf(w, "saydo_uptime_seconds %.2f\n\n", time.Since(m.startTime).Seconds())

		samples := []sample{
			{"saydo_commands_total", "Total commands executed", "counter", m.Commands.Load()},
			{"saydo_command_failures_total", "Total failed commands", "counter", m.CommandFailures.Load()},
			{"saydo_parse_failures_total", "Commands no rule recognized", "counter", m.ParseFailures.Load()},
			{"saydo_resolution_failures_total", "Commands rejected by the whitelist", "counter", m.ResolutionFailures.Load()},
			{"saydo_transport_failures_total", "Commands that could not reach the daemon", "counter", m.TransportFailures.Load()},
			{"saydo_operation_failures_total", "Commands the daemon rejected", "counter", m.OperationFailures.Load()},
			{"saydo_unsupported_failures_total", "Commands the driver cannot perform", "counter", m.UnsupportedFailures.Load()},
			{"saydo_health_checks_total", "Total health checks performed", "counter", m.HealthChecks.Load()},
			{"saydo_health_check_failures_total", "Total health check failures", "counter", m.HealthCheckFailures.Load()},
			{"saydo_whitelist_reloads_total", "Total whitelist reloads", "counter", m.WhitelistReloads.Load()},
			{"saydo_whitelist_reload_errors_total", "Total failed whitelist reloads", "counter", m.WhitelistReloadErrors.Load()},
			{"saydo_last_command_duration_ms", "Last command duration", "gauge", m.LastCommandDurationMs.Load()},
		}
		for i, s := range samples {
			fmt.Fprintf(w, "# HELP %s %s\n", s.name, s.help)
			fmt.Fprintf(w, "# TYPE %s %s\n", s.name, s.typ)
			fmt.Fprintf(w, "%s %d\n", s.name, s.value)
			if i < len(samples)-1 {
				fmt.Fprintln(w)
			}
		}
	}
}

// Server wraps the metrics HTTP server
type Server struct {
	srv *http.Server
	mux *http.ServeMux
	ln  net.Listener
}

// NewServer creates a metrics server on the given port
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", Global().Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf("127.0.0.1:%d", port),
			Handler: mux,
		},
		mux: mux,
	}
}

// Handle mounts an extra endpoint. Call before Start.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Start binds the port and serves in background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	s.ln = ln
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.New("metrics").Error("serve_failed", map[string]interface{}{"addr": s.srv.Addr}, err)
		}
	}()
	return nil
}

// Addr is the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

// Stop gracefully shuts down the metrics server
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
