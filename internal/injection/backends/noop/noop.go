// Package noop provides the injection backend that always succeeds
// without touching the OS, used as the terminal fallback in the
// orchestrator's method order.
package noop

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/coldaine/coldvox-go/internal/injection"
)

// Backend records the operation but performs no OS side effect.
type Backend struct {
	attempts, successes atomic.Uint64
}

// New constructs a NoOp backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() injection.BackendID { return injection.BackendNoOp }

func (b *Backend) IsAvailable(ctx context.Context) bool { return true }

func (b *Backend) SupportsFocus(status injection.FocusStatus) bool { return true }

func (b *Backend) Inject(ctx context.Context, text string, injCtx injection.Context) error {
	b.attempts.Add(1)
	if text == "" {
		return nil
	}
	b.successes.Add(1)
	slog.Debug("noop injector: would inject", "chars", len(text))
	return nil
}

func (b *Backend) Metrics() injection.Metrics {
	return injection.Metrics{
		Attempts:  b.attempts.Load(),
		Successes: b.successes.Load(),
	}
}
