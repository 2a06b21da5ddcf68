// Package driver adapts application backends to the daemon command set.
//
// Drivers advertise what they can do instead of failing on unknown calls:
// an operation outside a driver's capabilities returns an Unsupported result.
package driver

import (
	"context"

	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/whitelist"
)

// Capabilities lists the operations a driver supports.
type Capabilities struct {
	Open  bool
	Send  bool
	Paste bool
	// Chats means targets are chat names subject to the whitelist.
	Chats bool
}

// Driver is one controllable application.
type Driver interface {
	Name() string
	Capabilities() Capabilities
	Open(ctx context.Context, target string, policy whitelist.IndexPolicy) domain.Result
	Send(ctx context.Context, text string) domain.Result
	Paste(ctx context.Context) domain.Result
}

// Caller delivers daemon commands. *daemon.Client implements it.
type Caller interface {
	Call(ctx context.Context, cmd daemon.Command) domain.Result
}

var _ Caller = (*daemon.Client)(nil)

func unsupported(driver, op string) domain.Result {
	return domain.Failure(domain.KindUnsupported, driver+" driver does not support "+op, map[string]any{
		"driver":    driver,
		"operation": op,
	})
}
