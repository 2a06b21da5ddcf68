package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joss/saydo/internal/domain"
)

func TestMetricsGlobal(t *testing.T) {
	m1 := Global()
	m2 := Global()

	if m1 != m2 {
		t.Error("Global() should return same instance")
	}
}

func TestRecordCommand(t *testing.T) {
	m := New()

	m.RecordCommand(domain.KindNone, 120)
	if m.Commands.Load() != 1 {
		t.Errorf("expected 1 command, got %d", m.Commands.Load())
	}
	if m.CommandFailures.Load() != 0 {
		t.Errorf("expected 0 failures, got %d", m.CommandFailures.Load())
	}
	if m.LastCommandDurationMs.Load() != 120 {
		t.Errorf("expected duration 120, got %d", m.LastCommandDurationMs.Load())
	}

	m.RecordCommand(domain.KindParse, 1)
	m.RecordCommand(domain.KindResolution, 1)
	m.RecordCommand(domain.KindTransport, 1)
	m.RecordCommand(domain.KindOperation, 1)
	m.RecordCommand(domain.KindUnsupported, 1)

	if m.Commands.Load() != 6 {
		t.Errorf("expected 6 commands, got %d", m.Commands.Load())
	}
	if m.CommandFailures.Load() != 5 {
		t.Errorf("expected 5 failures, got %d", m.CommandFailures.Load())
	}
	for name, c := range map[string]int64{
		"parse":       m.ParseFailures.Load(),
		"resolution":  m.ResolutionFailures.Load(),
		"transport":   m.TransportFailures.Load(),
		"operation":   m.OperationFailures.Load(),
		"unsupported": m.UnsupportedFailures.Load(),
	} {
		if c != 1 {
			t.Errorf("expected 1 %s failure, got %d", name, c)
		}
	}
}

func TestRecordHealthCheck(t *testing.T) {
	m := New()

	m.RecordHealthCheck(true)
	if m.HealthChecks.Load() != 1 {
		t.Errorf("expected 1 check, got %d", m.HealthChecks.Load())
	}
	if m.HealthCheckFailures.Load() != 0 {
		t.Errorf("expected 0 failures, got %d", m.HealthCheckFailures.Load())
	}

	m.RecordHealthCheck(false)
	if m.HealthChecks.Load() != 2 {
		t.Errorf("expected 2 checks, got %d", m.HealthChecks.Load())
	}
	if m.HealthCheckFailures.Load() != 1 {
		t.Errorf("expected 1 failure, got %d", m.HealthCheckFailures.Load())
	}
}

func TestRecordReload(t *testing.T) {
	m := New()

	m.RecordReload(true)
	m.RecordReload(false)
	if m.WhitelistReloads.Load() != 2 {
		t.Errorf("expected 2 reloads, got %d", m.WhitelistReloads.Load())
	}
	if m.WhitelistReloadErrors.Load() != 1 {
		t.Errorf("expected 1 error, got %d", m.WhitelistReloadErrors.Load())
	}
}

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.RecordCommand(domain.KindNone, 150)
	m.RecordCommand(domain.KindTransport, 50)
	m.RecordHealthCheck(true)
	m.RecordHealthCheck(false)
	m.RecordReload(true)

	handler := m.Handler()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	output := string(body)

	if resp.Header.Get("Content-Type") != "text/plain; version=0.0.4" {
		t.Errorf("wrong content type: %s", resp.Header.Get("Content-Type"))
	}

	expectedMetrics := []string{
		"saydo_uptime_seconds",
		"saydo_commands_total 2",
		"saydo_command_failures_total 1",
		"saydo_transport_failures_total 1",
		"saydo_parse_failures_total 0",
		"saydo_health_checks_total 2",
		"saydo_health_check_failures_total 1",
		"saydo_whitelist_reloads_total 1",
		"saydo_last_command_duration_ms 50",
	}

	for _, expected := range expectedMetrics {
		if !strings.Contains(output, expected) {
			t.Errorf("missing metric: %s\nOutput:\n%s", expected, output)
		}
	}
}

func TestMetricsHandlerPrometheusFormat(t *testing.T) {
	m := New()
	handler := m.Handler()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	body, _ := io.ReadAll(rec.Result().Body)
	output := string(body)

	if !strings.Contains(output, "# HELP saydo_uptime_seconds") {
		t.Error("missing HELP comment for uptime")
	}
	if !strings.Contains(output, "# TYPE saydo_uptime_seconds gauge") {
		t.Error("missing TYPE comment for uptime")
	}
	if !strings.Contains(output, "# TYPE saydo_commands_total counter") {
		t.Error("missing TYPE comment for commands counter")
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(9999)
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.srv.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr '127.0.0.1:9999', got '%s'", srv.srv.Addr)
	}
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(0)
	srv.Handle("/health/detail", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("detail"))
	}))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("unexpected health response %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get("http://" + srv.Addr() + "/health/detail")
	if err != nil {
		t.Fatalf("GET /health/detail: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "detail" {
		t.Errorf("unexpected detail response %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestConcurrentMetricsRecording(t *testing.T) {
	m := New()

	done := make(chan bool)

	for i := 0; i < 100; i++ {
		go func() {
			m.RecordCommand(domain.KindNone, 100)
			m.RecordHealthCheck(true)
			m.RecordReload(true)
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}

	if m.Commands.Load() != 100 {
		t.Errorf("expected 100 commands, got %d", m.Commands.Load())
	}
	if m.HealthChecks.Load() != 100 {
		t.Errorf("expected 100 health checks, got %d", m.HealthChecks.Load())
	}
	if m.WhitelistReloads.Load() != 100 {
		t.Errorf("expected 100 reloads, got %d", m.WhitelistReloads.Load())
	}
}
