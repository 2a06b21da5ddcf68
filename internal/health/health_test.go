package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/exec"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{30 * time.Second, "30s"},
		{5*time.Minute + 30*time.Second, "5m30s"},
		{2*time.Hour + 15*time.Minute + 30*time.Second, "2h15m30s"},
		{3*24*time.Hour + 5*time.Hour + 30*time.Minute, "3d5h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func staticCheck(name string, critical bool, err error) Check {
	return Check{Name: name, Critical: critical, Run: func(context.Context) (string, error) {
		return name + " fine", err
	}}
}

type counter struct{ healthy, failed int }

func (c *counter) RecordHealthCheck(ok bool) {
	if ok {
		c.healthy++
	} else {
		c.failed++
	}
}

func TestAggregation(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		want   string
	}{
		{"all ok", []Check{staticCheck("a", true, nil), staticCheck("b", false, nil)}, Healthy},
		{"optional fails", []Check{staticCheck("a", true, nil), staticCheck("b", false, errors.New("x"))}, Degraded},
		{"critical fails", []Check{staticCheck("a", true, errors.New("x")), staticCheck("b", false, errors.New("y"))}, Unhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Checker{Checks: tt.checks}
			rep := c.Run(context.Background())
			assert.Equal(t, tt.want, rep.Status)
			assert.Equal(t, tt.want != Unhealthy, rep.OK())
			require.Len(t, rep.Components, len(tt.checks))
			assert.Equal(t, "a", rep.Components[0].Name)
			assert.NotEmpty(t, rep.Timestamp)
		})
	}
}

func TestFailureStatusAndObserver(t *testing.T) {
	obs := &counter{}
	c := &Checker{
		Checks:   []Check{staticCheck("daemon", true, errors.New("refused")), staticCheck("chrome", false, errors.New("not running"))},
		Observer: obs,
	}

	rep := c.Run(context.Background())

	assert.Equal(t, StatusError, rep.Components[0].Status)
	assert.Equal(t, "refused", rep.Components[0].Message)
	assert.True(t, rep.Components[0].Critical)
	assert.Equal(t, StatusDegraded, rep.Components[1].Status)
	assert.Equal(t, 1, obs.failed)
}

func TestChecksRunConcurrently(t *testing.T) {
	slow := func(name string) Check {
		return Check{Name: name, Run: func(ctx context.Context) (string, error) {
			time.Sleep(100 * time.Millisecond)
			return "", nil
		}}
	}
	c := &Checker{Checks: []Check{slow("a"), slow("b"), slow("c")}}

	start := time.Now()
	c.Run(context.Background())
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestCheckTimeout(t *testing.T) {
	c := &Checker{Timeout: 20 * time.Millisecond, Checks: []Check{{
		Name:     "hang",
		Critical: true,
		Run: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}}}

	rep := c.Run(context.Background())
	assert.Equal(t, Unhealthy, rep.Status)
}

func TestDaemonCheck(t *testing.T) {
	t.Run("health endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		msg, err := DaemonCheck(daemon.New(srv.URL, time.Second)).Run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, msg, "running")
	})

	t.Run("ping fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(`{"ok":false,"error":"unknown cmd"}`))
		}))
		defer srv.Close()

		_, err := DaemonCheck(daemon.New(srv.URL, time.Second)).Run(context.Background())
		assert.NoError(t, err)
	})

	t.Run("down", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		chk := DaemonCheck(daemon.New(url, time.Second))
		assert.True(t, chk.Critical)
		_, err := chk.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "7733")
	})
}

func TestTesseractCheck(t *testing.T) {
	m := exec.NewMockRunner()
	_, err := TesseractCheck(m).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brew install tesseract")

	m.Installed["tesseract"] = true
	m.AddResponse("tesseract", exec.MockResponse{Stdout: []byte("tesseract 5.3.4\n leptonica-1.84.1\n")})
	msg, err := TesseractCheck(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tesseract OCR is installed (tesseract 5.3.4)", msg)
}

func TestChromeCheck(t *testing.T) {
	m := exec.NewMockRunner()
	m.AddResponse("pgrep", exec.MockResponse{Err: errors.New("exit status 1")})
	_, err := ChromeCheck(m).Run(context.Background())
	assert.Error(t, err)

	m.AddResponse("pgrep", exec.MockResponse{Stdout: []byte("4242\n")})
	_, err = ChromeCheck(m).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"-f", "Google Chrome"}, m.Calls[1].Args)
}

func TestWhitelistCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracked.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tracked":[{"canonical":"Мама","aliases":["мамуля"]},{"canonical":"Папа","aliases":["мамуля"]}]}`), 0644))

	msg, err := WhitelistCheck(path).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, "2 chats")
	assert.Contains(t, msg, "1 alias collisions")

	_, err = WhitelistCheck(filepath.Join(t.TempDir(), "missing.json")).Run(context.Background())
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	c := &Checker{Checks: []Check{staticCheck("daemon", true, errors.New("down"))}}
	rec := httptest.NewRecorder()

	Handler(c)(rec, httptest.NewRequest("GET", "/health/detail", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var rep Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, Unhealthy, rep.Status)
}
