package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/saydo/internal/domain"
)

type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (r *recorder) all() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.bodies...)
}

func newDaemon(t *testing.T, handler http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cmd" {
			var body map[string]any
			if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
				rec.mu.Lock()
				rec.bodies = append(rec.bodies, body)
				rec.mu.Unlock()
			}
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second), rec
}

func TestCallOK(t *testing.T) {
	c, got := newDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"selected":2}`))
	})

	res := c.Call(context.Background(), OpenChat{Query: "Мама"})

	assert.True(t, res.OK)
	assert.Equal(t, float64(2), res.Data["selected"])
	require.Len(t, got.all(), 1)
	assert.Equal(t, map[string]any{"cmd": "open_chat", "query": "Мама", "auto_select": true}, got.all()[0])
}

func TestCallOperationFailure(t *testing.T) {
	c, _ := newDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"Telegram not running"}`))
	})

	res := c.Call(context.Background(), Ping{})

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindOperation, res.Kind)
	assert.Equal(t, "Telegram not running", res.Error)
	assert.True(t, errors.Is(res.Err(), domain.ErrOperation))
}

func TestCallUnknownError(t *testing.T) {
	c, _ := newDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false}`))
	})

	res := c.Call(context.Background(), Ping{})
	assert.Equal(t, "Unknown error", res.Error)

	c, _ = newDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fine"}`))
	})
	res = c.Call(context.Background(), Ping{})
	assert.False(t, res.OK, "missing ok means failure")
	assert.Equal(t, domain.KindOperation, res.Kind)
}

func TestCallHTTPStatus(t *testing.T) {
	big := strings.Repeat("x", MaxRawBytes+100)
	c, _ := newDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(big))
	})

	res := c.Call(context.Background(), Ping{})

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindTransport, res.Kind)
	assert.Equal(t, "HTTP 500", res.Error)
	assert.Len(t, res.Data["raw"], MaxRawBytes)
	assert.True(t, strings.HasSuffix(res.Data["url"].(string), "/cmd"))
}

func TestCallNonJSON(t *testing.T) {
	c, _ := newDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	})

	res := c.Call(context.Background(), Ping{})

	assert.Equal(t, domain.KindTransport, res.Kind)
	assert.Equal(t, "Non-JSON response", res.Error)
	assert.Equal(t, "<html>oops</html>", res.Data["raw"])
}

func TestCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 50*time.Millisecond)
	res := c.Call(context.Background(), Ping{})

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindTransport, res.Kind)
	assert.Equal(t, "daemon timeout", res.Error)
}

func TestCallConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := New(url, time.Second).Call(context.Background(), Ping{})

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindTransport, res.Kind)
	assert.Contains(t, res.Error, "Hammerspoon")
}

type failingClient struct{ err error }

func (f failingClient) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestCallTransportError(t *testing.T) {
	c := NewWithClient("http://daemon", time.Second, failingClient{err: errors.New("boom")})

	res := c.Call(context.Background(), Ping{})

	assert.Equal(t, domain.KindTransport, res.Kind)
	assert.Contains(t, res.Error, "boom")
}

// endlessBody yields 'x' forever and counts what was read.
type endlessBody struct{ n int }

func (b *endlessBody) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	b.n += len(p)
	return len(p), nil
}

func (b *endlessBody) Close() error { return nil }

type endlessClient struct{ body *endlessBody }

func (c endlessClient) Do(*http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusOK, Body: c.body}, nil
}

func TestCallBoundsRunawayReply(t *testing.T) {
	body := &endlessBody{}
	c := NewWithClient("http://daemon", time.Second, endlessClient{body: body})

	res := c.Call(context.Background(), Ping{})

	assert.Equal(t, domain.KindTransport, res.Kind)
	assert.Equal(t, "Non-JSON response", res.Error)
	assert.Len(t, res.Data["raw"], MaxRawBytes)
	assert.LessOrEqual(t, body.n, maxBodyBytes)
}

func TestPayloads(t *testing.T) {
	idx := 0
	tests := []struct {
		cmd  Command
		want map[string]any
	}{
		{OpenChat{Query: "A", ResultIndex: &idx}, map[string]any{"cmd": "open_chat", "query": "A", "auto_select": true, "result_index": 0}},
		{OpenChat{Query: "A"}, map[string]any{"cmd": "open_chat", "query": "A", "auto_select": true}},
		{OpenTab{Keywords: "jira"}, map[string]any{"cmd": "open_chrome_tab", "keywords": "jira"}},
		{Send{Text: "hi"}, map[string]any{"cmd": "send", "text": "hi", "use_clipboard": true, "draft": true}},
		{PasteClipboard{}, map[string]any{"cmd": "paste", "draft": true}},
		{Ping{}, map[string]any{"cmd": "ping"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.Payload())
		})
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, time.Second).Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := New(down.URL, time.Second).Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}
