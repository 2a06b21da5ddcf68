package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/joss/saydo/internal/logging"
)

// DevTools lists tabs of an already running Chrome through its remote
// debugging endpoint. It never launches or closes the browser.
type DevTools struct {
	Addr string
}

// NewDevTools creates a lister for the debugging endpoint at addr
// (host:port or a ws:// URL).
func NewDevTools(addr string) *DevTools {
	return &DevTools{Addr: addr}
}

// Tabs returns every page target.
func (d *DevTools) Tabs(ctx context.Context) ([]Tab, error) {
	controlURL, err := launcher.ResolveURL(d.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolve devtools %s (start Chrome with --remote-debugging-port): %w", d.Addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	res, err := proto.TargetGetTargets{}.Call(b)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}

	tabs := make([]Tab, 0, len(res.TargetInfos))
	for _, info := range res.TargetInfos {
		if info.Type != proto.TargetTargetInfoTypePage {
			continue
		}
		tabs = append(tabs, Tab{ID: string(info.TargetID), Title: info.Title, URL: info.URL})
	}
	logging.New("browser").Debug("tabs_listed", map[string]interface{}{"count": len(tabs)})
	return tabs, nil
}
