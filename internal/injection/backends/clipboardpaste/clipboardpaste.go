// Package clipboardpaste implements text injection by saving the
// current clipboard contents, setting the text to inject, synthesizing
// a paste chord via an external tool, and restoring the prior
// clipboard contents best-effort.
package clipboardpaste

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/atotto/clipboard"

	"github.com/coldaine/coldvox-go/internal/injection"
)

// pasteTool names the external binary used to synthesize the paste
// chord, selected by session type since no OS-native Go API can send
// Wayland-compatible synthetic input.
func pasteTool() (name string, args []string) {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "ydotool", []string{"key", "ctrl+v"}
	}
	return "xdotool", []string{"key", "ctrl+v"}
}

// Backend pastes text via the system clipboard.
type Backend struct {
	restoreClipboard bool

	attempts, successes, failures atomic.Uint64
}

// New constructs a clipboard-paste Backend. When restoreClipboard is
// false, the prior clipboard contents are neither saved nor restored
// around the injection (spec: restoration is conditional on
// InjectionConfig.RestoreClipboard).
func New(restoreClipboard bool) *Backend {
	return &Backend{restoreClipboard: restoreClipboard}
}

func (b *Backend) Name() injection.BackendID { return injection.BackendClipboardPaste }

func (b *Backend) IsAvailable(ctx context.Context) bool {
	tool, _ := pasteTool()
	_, err := exec.LookPath(tool)
	return err == nil
}

func (b *Backend) SupportsFocus(status injection.FocusStatus) bool {
	return status == injection.FocusEditableText || status == injection.FocusUnknown
}

func (b *Backend) Inject(ctx context.Context, text string, injCtx injection.Context) error {
	b.attempts.Add(1)

	prior, hadPrior := "", false
	if b.restoreClipboard {
		if saved, err := clipboard.ReadAll(); err == nil {
			prior, hadPrior = saved, true
		}

		defer func() {
			if !hadPrior {
				return
			}
			if err := clipboard.WriteAll(prior); err != nil {
				slog.Debug("clipboardpaste: best-effort clipboard restore failed", "error", err)
			}
		}()
	}

	if err := clipboard.WriteAll(text); err != nil {
		b.failures.Add(1)
		return &injection.Failure{Kind: injection.FailureTransient, Message: fmt.Sprintf("clipboardpaste: set clipboard: %v", err)}
	}

	tool, args := pasteTool()
	cmd := exec.CommandContext(ctx, tool, args...)
	if err := cmd.Run(); err != nil {
		b.failures.Add(1)
		return &injection.Failure{Kind: injection.FailureTransient, Message: fmt.Sprintf("clipboardpaste: synthesize paste: %v", err)}
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
