package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
)

type contextKey string

const commandIDKey contextKey = "command_id"

var (
	// idPool reuses byte slices for ID generation
	idPool = sync.Pool{
		New: func() interface{} {
			return make([]byte, 8)
		},
	}
)

// NewCommandID generates a short id (16 hex chars) for one command invocation.
func NewCommandID() string {
	buf := idPool.Get().([]byte)
	defer idPool.Put(buf)

	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// WithCommandID adds a command ID to context.
// If id is empty, generates a new one.
func WithCommandID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewCommandID()
	}
	return context.WithValue(ctx, commandIDKey, id)
}

// CommandID extracts the command ID from context.
// Returns empty string if not present.
func CommandID(ctx context.Context) string {
	if v, ok := ctx.Value(commandIDKey).(string); ok {
		return v
	}
	return ""
}

// FromContext returns a logger for component tagged with the context's command id.
func FromContext(ctx context.Context, component string) *Logger {
	return New(component).WithCommand(CommandID(ctx))
}
