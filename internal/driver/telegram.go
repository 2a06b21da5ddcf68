package driver

import (
	"context"

	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/whitelist"
)

// Telegram drives the messenger through chat search.
type Telegram struct {
	caller Caller
}

// NewTelegram creates the messenger driver.
func NewTelegram(c Caller) *Telegram {
	return &Telegram{caller: c}
}

func (t *Telegram) Name() string { return domain.DriverTelegram }

func (t *Telegram) Capabilities() Capabilities {
	return Capabilities{Open: true, Send: true, Paste: true, Chats: true}
}

// Open searches for target and opens a result. A fixed policy pins the
// result position; otherwise the daemon matches the result list on screen.
func (t *Telegram) Open(ctx context.Context, target string, policy whitelist.IndexPolicy) domain.Result {
	cmd := daemon.OpenChat{Query: target}
	if !policy.Auto {
		n := policy.Index
		cmd.ResultIndex = &n
	}
	return t.caller.Call(ctx, cmd)
}

// Send types text into the open chat as an unsent draft.
func (t *Telegram) Send(ctx context.Context, text string) domain.Result {
	return t.caller.Call(ctx, daemon.Send{Text: text})
}

// Paste pastes the clipboard into the open chat as an unsent draft.
func (t *Telegram) Paste(ctx context.Context) domain.Result {
	return t.caller.Call(ctx, daemon.PasteClipboard{})
}
