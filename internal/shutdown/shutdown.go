// Package shutdown installs a SIGINT/SIGTERM handler and a panic hook
// that both fan into one cooperative shutdown signal, so every
// component blocked on a channel or context can unwind cleanly.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Handler coordinates cooperative shutdown across the process.
type Handler struct {
	requested atomic.Bool
	notify    chan struct{}
	once      sync.Once
}

// New constructs a Handler. Call Install to start watching for
// SIGINT/SIGTERM.
func New() *Handler {
	return &Handler{notify: make(chan struct{})}
}

// Install registers the OS signal handler. It returns immediately;
// shutdown is observed via Done/Context/Requested.
func (h *Handler) Install() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown requested", "signal", sig)
		h.Request()
	}()
}

// RecoverAndShutdown should be deferred in main and in any
// long-running goroutine that must not crash the process silently. It
// logs the panic, requests shutdown, and re-panics so the caller's own
// deferred cleanup and exit status still happen.
func (h *Handler) RecoverAndShutdown() {
	if r := recover(); r != nil {
		slog.Error("panic, requesting shutdown", "panic", r)
		h.Request()
		panic(r)
	}
}

// Request marks shutdown as requested and wakes every waiter. Safe to
// call more than once or concurrently.
func (h *Handler) Request() {
	h.once.Do(func() {
		h.requested.Store(true)
		close(h.notify)
	})
}

// Requested reports whether shutdown has been requested.
func (h *Handler) Requested() bool {
	return h.requested.Load()
}

// Done returns a channel closed once shutdown has been requested,
// suitable for use in a select alongside context.Context.Done().
func (h *Handler) Done() <-chan struct{} {
	return h.notify
}

// Context returns a context canceled when shutdown is requested,
// derived from parent.
func (h *Handler) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-h.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
