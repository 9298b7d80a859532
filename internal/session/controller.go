// Package session merges VAD and hotkey event streams into a single
// transcription session lifecycle, driving the active SttPlugin.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/coldaine/coldvox-go/internal/audio"
	"github.com/coldaine/coldvox-go/internal/config"
	"github.com/coldaine/coldvox-go/internal/stt"
	"github.com/coldaine/coldvox-go/internal/vad"
)

// Source identifies what triggered a session.
type Source int

const (
	SourceVad Source = iota
	SourceHotkey
)

func (s Source) String() string {
	if s == SourceHotkey {
		return "hotkey"
	}
	return "vad"
}

// Event describes a session lifecycle transition, useful for logging
// and UI surfaces outside the controller itself.
type Event struct {
	SessionID uint64
	Source    Source
	Kind      string // "start", "end", "abort"
	Reason    string // populated only for "abort"
}

// Controller merges a VAD event channel and a hotkey event channel
// per the configured activation mode, driving the active stt.Plugin
// through its Begin/ProcessAudio/Finalize/Reset lifecycle.
type Controller struct {
	mode   config.ActivationMode
	plugin stt.Plugin

	mu        sync.Mutex
	active    bool
	source    Source
	sessionID uint64
	nextID    atomic.Uint64

	events      chan Event
	transcripts chan stt.TranscriptionEvent
}

// New constructs a Controller driving plugin according to the
// configured activation mode.
func New(mode config.ActivationMode, plugin stt.Plugin) *Controller {
	return &Controller{
		mode:        mode,
		plugin:      plugin,
		events:      make(chan Event, 16),
		transcripts: make(chan stt.TranscriptionEvent, 16),
	}
}

// Events returns lifecycle notifications for logging or UI display.
func (c *Controller) Events() <-chan Event { return c.events }

// Transcripts returns partial and final transcription events produced
// while a session is active, for the injection orchestrator to consume.
func (c *Controller) Transcripts() <-chan stt.TranscriptionEvent { return c.transcripts }

// Run consumes vadEvents and hotkeyEvents, feeding audioFrames to the
// active plugin while a session is open, until ctx is canceled. On
// cancellation any active session is aborted with reason "shutdown".
func (c *Controller) Run(ctx context.Context, vadEvents, hotkeyEvents <-chan vad.Event, audioFrames <-chan audio.Frame) {
	for {
		select {
		case <-ctx.Done():
			c.abort(ctx, "shutdown")
			return
		case e, ok := <-hotkeyEvents:
			if !ok {
				hotkeyEvents = nil
				continue
			}
			c.onHotkeyEvent(ctx, e)
		case e, ok := <-vadEvents:
			if !ok {
				vadEvents = nil
				continue
			}
			c.onVadEvent(ctx, e)
		case f, ok := <-audioFrames:
			if !ok {
				audioFrames = nil
				continue
			}
			c.onFrame(ctx, f)
		}
	}
}

func (c *Controller) onHotkeyEvent(ctx context.Context, e vad.Event) {
	switch e.Kind {
	case vad.SpeechStart:
		c.mu.Lock()
		if c.active && c.source == SourceVad {
			c.endLocked(ctx, "preempted-by-hotkey", true)
		}
		c.mu.Unlock()
		c.start(ctx, SourceHotkey)
	case vad.SpeechEnd:
		c.end(ctx)
	}
}

func (c *Controller) onVadEvent(ctx context.Context, e vad.Event) {
	if c.mode == config.ModeHotkey {
		slog.Debug("session: vad event ignored in hotkey mode", "kind", e.Kind)
		return
	}
	switch e.Kind {
	case vad.SpeechStart:
		c.start(ctx, SourceVad)
	case vad.SpeechEnd:
		c.end(ctx)
	}
}

func (c *Controller) onFrame(ctx context.Context, f audio.Frame) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if !active {
		return
	}
	event, err := c.plugin.ProcessAudio(ctx, f.Data)
	if err != nil {
		slog.Warn("session: process_audio failed", "error", err)
		return
	}
	c.emitTranscript(event)
}

func (c *Controller) emitTranscript(event *stt.TranscriptionEvent) {
	if event == nil {
		return
	}
	select {
	case c.transcripts <- *event:
	default:
		slog.Debug("session: transcript channel full, dropping", "kind", event.Kind)
	}
}

func (c *Controller) start(ctx context.Context, source Source) {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	id := c.nextID.Add(1)
	c.active = true
	c.source = source
	c.sessionID = id
	c.mu.Unlock()

	if err := c.plugin.Begin(ctx, id); err != nil {
		slog.Warn("session: begin failed", "session_id", id, "error", err)
	}
	c.emit(Event{SessionID: id, Source: source, Kind: "start"})
}

func (c *Controller) end(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(ctx, "", false)
}

// endLocked must be called with c.mu held. If abort is true the
// session is aborted with reason instead of ended cleanly.
func (c *Controller) endLocked(ctx context.Context, reason string, abort bool) {
	if !c.active {
		return
	}
	id, source := c.sessionID, c.source
	c.active = false

	if abort {
		if err := c.plugin.Reset(ctx); err != nil {
			slog.Warn("session: reset failed", "session_id", id, "error", err)
		}
		c.emit(Event{SessionID: id, Source: source, Kind: "abort", Reason: reason})
		return
	}

	final, err := c.plugin.Finalize(ctx)
	if err != nil {
		slog.Warn("session: finalize failed", "session_id", id, "error", err)
	}
	c.emitTranscript(final)
	c.emit(Event{SessionID: id, Source: source, Kind: "end"})
}

func (c *Controller) abort(ctx context.Context, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(ctx, reason, true)
}

func (c *Controller) emit(e Event) {
	select {
	case c.events <- e:
	default:
		slog.Debug("session: event channel full, dropping", "kind", e.Kind)
	}
}
