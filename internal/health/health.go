// Package health checks the collaborators saydo depends on: the automation
// daemon (critical), tesseract and Chrome (optional).
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/exec"
	"github.com/joss/saydo/internal/logging"
	"github.com/joss/saydo/internal/whitelist"
)

// Component states.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// Overall states.
const (
	Healthy   = "healthy"
	Degraded  = "degraded"
	Unhealthy = "unhealthy"
)

// ComponentStatus represents health of a single component
type ComponentStatus struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // ok, degraded, error
	Critical bool   `json:"critical,omitempty"`
	Message  string `json:"message"`
	Latency  int64  `json:"latency_ms,omitempty"`
}

// Report represents overall system health
type Report struct {
	Status     string            `json:"status"` // healthy, degraded, unhealthy
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components"`
	Timestamp  string            `json:"timestamp"`
}

// OK reports whether every critical component passed.
func (r *Report) OK() bool {
	return r.Status != Unhealthy
}

// Check is one probe. A failing optional check degrades the report; a
// failing critical check makes it unhealthy.
type Check struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) (string, error)
}

// Observer counts health checks. *metrics.Metrics implements it.
type Observer interface {
	RecordHealthCheck(healthy bool)
}

// Checker runs checks concurrently.
type Checker struct {
	Checks   []Check
	Timeout  time.Duration
	Observer Observer
}

var startTime = time.Now()

// Run performs every check and aggregates the result in check order.
func (c *Checker) Run(ctx context.Context) *Report {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	results := make([]ComponentStatus, len(c.Checks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, chk := range c.Checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			start := time.Now()
			msg, err := chk.Run(cctx)
			st := ComponentStatus{
				Name:     chk.Name,
				Status:   StatusOK,
				Critical: chk.Critical,
				Message:  msg,
				Latency:  time.Since(start).Milliseconds(),
			}
			if err != nil {
				st.Message = err.Error()
				st.Status = StatusDegraded
				if chk.Critical {
					st.Status = StatusError
				}
			}
			logging.HealthEvent(chk.Name, st.Message, err == nil)

			mu.Lock()
			results[i] = st
			mu.Unlock()
			// Failures live in the report, never in the group.
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{
		Status:     Healthy,
		Uptime:     formatUptime(time.Since(startTime)),
		Components: results,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, r := range results {
		switch {
		case r.Status == StatusError:
			rep.Status = Unhealthy
		case r.Status == StatusDegraded && rep.Status == Healthy:
			rep.Status = Degraded
		}
	}
	if c.Observer != nil {
		c.Observer.RecordHealthCheck(rep.OK())
	}
	return rep
}

// Daemon is the part of the daemon client the check needs.
type Daemon interface {
	BaseURL() string
	Health(ctx context.Context) error
	Call(ctx context.Context, cmd daemon.Command) domain.Result
}

// DaemonCheck probes GET /health and, when that endpoint is missing, a
// ping command. Any HTTP answer from /cmd means the daemon is up.
func DaemonCheck(d Daemon) Check {
	return Check{
		Name:     "hammerspoon",
		Critical: true,
		Run: func(ctx context.Context) (string, error) {
			err := d.Health(ctx)
			if err == nil {
				return "automation daemon is running at " + d.BaseURL(), nil
			}
			var de *domain.Error
			if !errors.As(err, &de) || !strings.HasPrefix(de.Message, "HTTP ") {
				return "", err
			}

			res := d.Call(ctx, daemon.Ping{})
			if res.OK || res.Kind == domain.KindOperation || strings.HasPrefix(res.Error, "HTTP ") {
				return "automation daemon is running at " + d.BaseURL(), nil
			}
			return "", res.Err()
		},
	}
}

// TesseractCheck reports the installed tesseract version.
func TesseractCheck(r exec.Runner) Check {
	return Check{
		Name: "tesseract",
		Run: func(ctx context.Context) (string, error) {
			if _, err := r.LookPath("tesseract"); err != nil {
				return "", errors.New("tesseract OCR is not installed; install with: brew install tesseract")
			}
			out, err := r.Run(ctx, "tesseract", "--version")
			if err != nil {
				return "", fmt.Errorf("tesseract --version: %w", err)
			}
			version := "unknown"
			if first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n"); first != "" {
				version = first
			}
			return "tesseract OCR is installed (" + version + ")", nil
		},
	}
}

// ChromeCheck reports whether Google Chrome is running.
func ChromeCheck(r exec.Runner) Check {
	return Check{
		Name: "chrome",
		Run: func(ctx context.Context) (string, error) {
			if _, err := r.Run(ctx, "pgrep", "-f", "Google Chrome"); err != nil {
				return "", errors.New("Google Chrome is not running; start Chrome for tab commands")
			}
			return "Google Chrome is running", nil
		},
	}
}

// WhitelistCheck loads the whitelist file and reports its size.
func WhitelistCheck(path string) Check {
	return Check{
		Name: "whitelist",
		Run: func(ctx context.Context) (string, error) {
			entries, err := whitelist.Load(path)
			if err != nil {
				return "", err
			}
			idx := whitelist.Build(entries)
			msg := fmt.Sprintf("%d chats, %d aliases in %s", idx.Len(), len(idx.Aliases()), path)
			if n := len(idx.Collisions()); n > 0 {
				msg += fmt.Sprintf(" (%d alias collisions)", n)
			}
			return msg, nil
		},
	}
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Handler serves the report as JSON; unhealthy answers 503.
func Handler(c *Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		rep := c.Run(ctx)

		w.Header().Set("Content-Type", "application/json")
		if rep.OK() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(rep)
	}
}
