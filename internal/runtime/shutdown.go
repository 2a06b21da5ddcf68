// Package runtime provides graceful shutdown handling for saydo processes.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joss/saydo/internal/logging"
)

// ShutdownFunc is a cleanup function called during shutdown
type ShutdownFunc func(ctx context.Context) error

// ShutdownManager cancels the listen context on the first signal and then
// runs cleanup handlers. A second signal exits immediately.
type ShutdownManager struct {
	mu          sync.Mutex
	handlers    []namedHandler
	timeout     time.Duration
	shutdownCtx context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	once        sync.Once
	err         error

	// Exit is called on the second signal. Defaults to os.Exit.
	Exit func(code int)
}

type namedHandler struct {
	name string
	fn   ShutdownFunc
}

// DefaultShutdownTimeout bounds all cleanup handlers together.
const DefaultShutdownTimeout = 10 * time.Second

// NewShutdownManager creates a new shutdown manager with specified timeout
func NewShutdownManager(timeout time.Duration) *ShutdownManager {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownManager{
		timeout:     timeout,
		shutdownCtx: ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		Exit:        os.Exit,
	}
}

// Register adds a cleanup handler. Handlers run one at a time, last
// registered first, so resources close in reverse order of opening.
func (m *ShutdownManager) Register(name string, fn ShutdownFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, namedHandler{name: name, fn: fn})
}

// RegisterSimple adds a simple cleanup function (no error return)
func (m *ShutdownManager) RegisterSimple(name string, fn func()) {
	m.Register(name, func(ctx context.Context) error {
		fn()
		return nil
	})
}

// Context returns a context that is cancelled when shutdown begins
func (m *ShutdownManager) Context() context.Context {
	return m.shutdownCtx
}

// Done returns a channel that's closed when shutdown is complete
func (m *ShutdownManager) Done() <-chan struct{} {
	return m.done
}

// ListenForSignals starts listening for SIGTERM and SIGINT. It does not
// block. The returned func stops listening.
func (m *ShutdownManager) ListenForSignals() (stop func()) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	quit := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			logging.New("runtime").Info("signal", map[string]interface{}{"signal": sig.String()})
			fmt.Fprintln(os.Stderr, "\nStopping after the current command (press Ctrl+C again to force)...")
			go m.Shutdown()
		case <-quit:
			return
		}

		select {
		case <-sigChan:
			m.Exit(130)
		case <-m.done:
		case <-quit:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(quit)
		})
	}
}

// Shutdown cancels the context and runs the handlers. Only the first call
// does work; every call returns the joined handler errors.
func (m *ShutdownManager) Shutdown() error {
	m.once.Do(func() {
		m.err = m.performShutdown()
	})
	<-m.done
	return m.err
}

func (m *ShutdownManager) performShutdown() error {
	defer close(m.done)
	log := logging.New("runtime")

	m.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	handlers := make([]namedHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	var errs []error
	for i := len(handlers) - 1; i >= 0; i-- {
		h := handlers[i]
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: skipped: %w", h.name, ctx.Err()))
			continue
		}
		start := time.Now()
		err := h.fn(ctx)
		log.TimedEvent("shutdown_handler", start, map[string]interface{}{"handler": h.name}, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}

// WaitForShutdown blocks until shutdown is complete
func (m *ShutdownManager) WaitForShutdown() {
	<-m.done
}
