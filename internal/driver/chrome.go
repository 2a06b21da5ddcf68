package driver

import (
	"context"

	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/whitelist"
)

// Chrome focuses browser tabs by keywords. It cannot type or paste.
type Chrome struct {
	caller Caller
}

// NewChrome creates the browser driver.
func NewChrome(c Caller) *Chrome {
	return &Chrome{caller: c}
}

func (c *Chrome) Name() string { return domain.DriverChrome }

func (c *Chrome) Capabilities() Capabilities {
	return Capabilities{Open: true}
}

// Open focuses the tab matching keywords. The policy is ignored; tabs are
// always picked by title matching.
func (c *Chrome) Open(ctx context.Context, keywords string, _ whitelist.IndexPolicy) domain.Result {
	return c.caller.Call(ctx, daemon.OpenTab{Keywords: keywords})
}

func (c *Chrome) Send(context.Context, string) domain.Result {
	return unsupported(c.Name(), "send")
}

func (c *Chrome) Paste(context.Context) domain.Result {
	return unsupported(c.Name(), "paste")
}
