package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/saydo/internal/config"
	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/whitelist"
)

type fakeCaller struct {
	calls []map[string]any
	reply domain.Result
}

func (f *fakeCaller) Call(_ context.Context, cmd daemon.Command) domain.Result {
	f.calls = append(f.calls, cmd.Payload())
	if !f.reply.OK && f.reply.Kind == domain.KindNone {
		return domain.Success(nil)
	}
	return f.reply
}

func TestTelegramOpenPolicies(t *testing.T) {
	fc := &fakeCaller{}
	d := NewTelegram(fc)
	ctx := context.Background()

	require.True(t, d.Open(ctx, "Мама", whitelist.Fixed(2)).OK)
	require.True(t, d.Open(ctx, "Бот", whitelist.AutoOCR()).OK)
	require.True(t, d.Open(ctx, "Кто-то", whitelist.Fixed(0)).OK)

	assert.Equal(t, []map[string]any{
		{"cmd": "open_chat", "query": "Мама", "auto_select": true, "result_index": 2},
		{"cmd": "open_chat", "query": "Бот", "auto_select": true},
		{"cmd": "open_chat", "query": "Кто-то", "auto_select": true, "result_index": 0},
	}, fc.calls)
}

func TestTelegramSendPaste(t *testing.T) {
	fc := &fakeCaller{}
	d := NewTelegram(fc)

	d.Send(context.Background(), "привет")
	d.Paste(context.Background())

	assert.Equal(t, []map[string]any{
		{"cmd": "send", "text": "привет", "use_clipboard": true, "draft": true},
		{"cmd": "paste", "draft": true},
	}, fc.calls)
	assert.Equal(t, Capabilities{Open: true, Send: true, Paste: true, Chats: true}, d.Capabilities())
}

func TestTelegramPropagatesFailure(t *testing.T) {
	fc := &fakeCaller{reply: domain.Failure(domain.KindOperation, "no results", nil)}
	res := NewTelegram(fc).Open(context.Background(), "x", whitelist.AutoOCR())

	assert.False(t, res.OK)
	assert.Equal(t, "no results", res.Error)
}

func TestChrome(t *testing.T) {
	fc := &fakeCaller{}
	d := NewChrome(fc)
	ctx := context.Background()

	assert.True(t, d.Open(ctx, "смета", whitelist.Fixed(3)).OK)
	assert.Equal(t, []map[string]any{{"cmd": "open_chrome_tab", "keywords": "смета"}}, fc.calls)

	for _, res := range []domain.Result{d.Send(ctx, "x"), d.Paste(ctx)} {
		assert.False(t, res.OK)
		assert.Equal(t, domain.KindUnsupported, res.Kind)
		assert.True(t, errors.Is(res.Err(), domain.ErrUnsupported))
	}
	assert.Len(t, fc.calls, 1, "unsupported operations never reach the daemon")
	assert.False(t, d.Capabilities().Chats)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("telegram", NewTelegram(&fakeCaller{}), NewChrome(&fakeCaller{}))

	d, err := r.Get("")
	require.NoError(t, err)
	assert.Equal(t, "telegram", d.Name())

	d, err = r.Get("chrome")
	require.NoError(t, err)
	assert.Equal(t, "chrome", d.Name())

	_, err = r.Get("slack")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnsupported, domain.KindOf(err))

	assert.Equal(t, []string{"chrome", "telegram"}, r.Names())
}

func TestFromConfig(t *testing.T) {
	config.ResetEnv()
	defer config.ResetEnv()

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "drivers:\n  telegram:\n    enabled: true\n  chrome:\n    enabled: false\n  slack:\n    enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	f, err := config.LoadFile(path)
	require.NoError(t, err)

	r := FromConfig(f)
	assert.Equal(t, []string{"telegram"}, r.Names())
	assert.Equal(t, "telegram", r.Default())

	_, err = r.Get("chrome")
	assert.Error(t, err)
}
