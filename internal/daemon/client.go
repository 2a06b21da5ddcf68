// Package daemon talks to the local automation daemon that drives the
// desktop applications. Every request is a JSON command posted to /cmd.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/logging"
	sstrings "github.com/joss/saydo/internal/strings"
)

// MaxRawBytes caps raw response bodies attached to diagnostics.
const MaxRawBytes = 5000

// maxBodyBytes bounds how much of a reply is read at all.
const maxBodyBytes = MaxRawBytes + 1<<16

// HTTPClient is the transport used by Client (enables testing).
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

// Client posts commands to the daemon.
type Client struct {
	baseURL string
	timeout time.Duration
	http    HTTPClient
}

// New creates a client for baseURL. Each call is bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithClient(baseURL, timeout, &http.Client{})
}

// NewWithClient creates a client over a custom transport.
func NewWithClient(baseURL string, timeout time.Duration, hc HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    hc,
	}
}

// BaseURL is the daemon address without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Call sends one command and converts the reply into a Result.
// It never returns an error; every failure is a typed failed Result.
func (c *Client) Call(ctx context.Context, cmd Command) domain.Result {
	start := time.Now()
	res := c.call(ctx, cmd)

	var err error
	if !res.OK {
		err = res.Err()
	}
	logging.DaemonEvent(cmd.Name(), res.OK, time.Since(start), err)
	return res
}

func (c *Client) call(ctx context.Context, cmd Command) domain.Result {
	url := c.baseURL + "/cmd"

	body, err := json.Marshal(cmd.Payload())
	if err != nil {
		return domain.Failure(domain.KindTransport, fmt.Sprintf("encode command: %v", err), map[string]any{"url": url})
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Failure(domain.KindTransport, fmt.Sprintf("Request failed: %v", err), map[string]any{"url": url})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure(ctx, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportFailure(ctx, url, err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.Failure(domain.KindTransport, fmt.Sprintf("HTTP %d", resp.StatusCode), map[string]any{
			"url": url,
			"raw": sstrings.CapBytes(string(raw), MaxRawBytes),
		})
	}

	var reply map[string]any
	if err := json.Unmarshal(raw, &reply); err != nil || reply == nil {
		return domain.Failure(domain.KindTransport, "Non-JSON response", map[string]any{
			"url": url,
			"raw": sstrings.CapBytes(string(raw), MaxRawBytes),
		})
	}

	if ok, _ := reply["ok"].(bool); ok {
		return domain.Success(reply)
	}

	msg, _ := reply["error"].(string)
	if msg == "" {
		msg = "Unknown error"
	}
	return domain.Failure(domain.KindOperation, msg, reply)
}

// Health asks the daemon whether it is up.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	url := c.baseURL + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure(ctx, url, err).Err()
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.NewError(domain.KindTransport, "HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func transportFailure(ctx context.Context, url string, err error) domain.Result {
	data := map[string]any{"url": url}

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.Failure(domain.KindTransport, "daemon timeout", data)
	case errors.Is(err, syscall.ECONNREFUSED):
		return domain.Failure(domain.KindTransport, fmt.Sprintf(
			"cannot connect to automation daemon at %s: start Hammerspoon, reload its config and check that port 7733 is listening (or set HAMMER_URL)",
			url), data)
	}
	return domain.Failure(domain.KindTransport, fmt.Sprintf("Request failed: %v", err), data)
}
