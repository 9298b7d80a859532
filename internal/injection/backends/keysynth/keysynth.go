// Package keysynth types characters one at a time at a configured
// rate, the lowest-common-denominator injection method that works
// without any accessibility or clipboard API.
package keysynth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coldaine/coldvox-go/internal/injection"
)

// CharsPerSecond controls the typing cadence.
const CharsPerSecond = 50

// Backend synthesizes individual keystrokes via a per-OS typer.
type Backend struct {
	attempts, successes, failures atomic.Uint64
}

// New constructs a keysynth Backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() injection.BackendID { return injection.BackendKeySynth }

func (b *Backend) IsAvailable(ctx context.Context) bool { return typerAvailable() }

func (b *Backend) SupportsFocus(status injection.FocusStatus) bool {
	return status == injection.FocusEditableText || status == injection.FocusUnknown
}

func (b *Backend) Inject(ctx context.Context, text string, injCtx injection.Context) error {
	b.attempts.Add(1)

	delay := time.Second / CharsPerSecond
	for _, r := range text {
		select {
		case <-ctx.Done():
			b.failures.Add(1)
			return &injection.Failure{Kind: injection.FailureTransient, Message: "keysynth: context canceled mid-type"}
		default:
		}
		if err := typeRune(r); err != nil {
			b.failures.Add(1)
			return &injection.Failure{Kind: injection.FailureTransient, Message: err.Error()}
		}
		time.Sleep(delay)
	}

	b.successes.Add(1)
	return nil
}

func (b *Backend) Metrics() injection.Metrics {
	return injection.Metrics{
		Attempts:  b.attempts.Load(),
		Successes: b.successes.Load(),
		Failures:  b.failures.Load(),
	}
}
