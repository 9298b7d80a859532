// Package hotkey implements the push-to-talk activation path: a
// global key chord that emits synthetic VAD-shaped events so the
// session controller can drive speech-to-text without any voice
// activity detector in the loop.
package hotkey

import (
	"context"
	"log/slog"
	"sync"
	"time"

	hk "golang.design/x/hotkey"

	"github.com/coldaine/coldvox-go/internal/config"
	"github.com/coldaine/coldvox-go/internal/vad"
)

// modifierByName maps the spec's human-readable modifier names to the
// library's platform-neutral modifier constants.
var modifierByName = map[string]hk.Modifier{
	"Control": hk.ModCtrl,
	"Shift":   hk.ModShift,
	"Alt":     hk.ModOption,
	"Super":   hk.Mod1,
}

// defaultTriggerKey is the non-modifier key registered alongside the
// configured modifiers. golang.design/x/hotkey requires at least one
// such key; the spec's modifier-only chord ("Control+Super") is
// realized here as that chord held together with Space, since no
// pack library exposes raw held-modifier polling without a key.
const defaultTriggerKey = hk.KeySpace

// Listener owns a registered global hotkey and translates its
// press/release transitions into synthetic vad.Event values.
type Listener struct {
	combo     []hk.Modifier
	indicator *Indicator
	events    chan vad.Event

	mu      sync.Mutex
	active  bool
	started time.Time
}

// New builds a Listener from the configured key combination. Unknown
// modifier names are ignored with a warning rather than failing
// startup, since a misconfigured hotkey should not prevent the rest
// of the pipeline from running.
func New(cfg config.HotkeyConfig) *Listener {
	combo := make([]hk.Modifier, 0, len(cfg.Combination))
	for _, name := range cfg.Combination {
		mod, ok := modifierByName[name]
		if !ok {
			slog.Warn("hotkey: unrecognized modifier, ignoring", "name", name)
			continue
		}
		combo = append(combo, mod)
	}

	var ind *Indicator
	if cfg.ShowIndicator {
		ind = NewIndicator()
	}

	return &Listener{
		combo:     combo,
		indicator: ind,
		events:    make(chan vad.Event, 8),
	}
}

// Events returns the channel of synthetic SpeechStart/SpeechEnd
// events produced while the hotkey is held.
func (l *Listener) Events() <-chan vad.Event { return l.events }

// Run registers the global hotkey and blocks, translating keydown and
// keyup into synthetic events, until ctx is canceled.
func (l *Listener) Run(ctx context.Context) error {
	h := hk.New(l.combo, defaultTriggerKey)
	if err := h.Register(); err != nil {
		return err
	}
	defer h.Unregister()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.Keydown():
			l.onPress()
		case <-h.Keyup():
			l.onRelease()
		}
	}
}

func (l *Listener) onPress() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		return
	}
	l.active = true
	l.started = time.Now()
	if l.indicator != nil {
		l.indicator.Show()
	}
	l.emit(vad.Event{Kind: vad.SpeechStart, TimestampMs: nowMs()})
}

func (l *Listener) onRelease() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	l.active = false
	duration := time.Since(l.started)
	if l.indicator != nil {
		l.indicator.Hide()
	}
	l.emit(vad.Event{
		Kind:        vad.SpeechEnd,
		TimestampMs: nowMs(),
		DurationMs:  duration.Milliseconds(),
	})
}

func (l *Listener) emit(e vad.Event) {
	select {
	case l.events <- e:
	default:
		slog.Warn("hotkey: event channel full, dropping", "kind", e.Kind)
	}
}

func nowMs() int64 { return time.Now().UnixMilli() }
