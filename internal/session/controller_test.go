package session

import (
	"context"
	"testing"
	"time"

	"github.com/coldaine/coldvox-go/internal/audio"
	"github.com/coldaine/coldvox-go/internal/config"
	"github.com/coldaine/coldvox-go/internal/stt"
	"github.com/coldaine/coldvox-go/internal/vad"
)

type fakePlugin struct {
	begins    []uint64
	finalizes int
	resets    int
	processed [][]int16
}

func (f *fakePlugin) Info() stt.Info                               { return stt.Info{Name: "fake"} }
func (f *fakePlugin) IsAvailable(ctx context.Context) bool         { return true }
func (f *fakePlugin) Initialize(context.Context, stt.Config) error { return nil }
func (f *fakePlugin) Begin(ctx context.Context, sessionID uint64) error {
	f.begins = append(f.begins, sessionID)
	return nil
}
func (f *fakePlugin) ProcessAudio(ctx context.Context, samples []int16) (*stt.TranscriptionEvent, error) {
	f.processed = append(f.processed, samples)
	return nil, nil
}
func (f *fakePlugin) Finalize(ctx context.Context) (*stt.TranscriptionEvent, error) {
	f.finalizes++
	return nil, nil
}
func (f *fakePlugin) Reset(ctx context.Context) error {
	f.resets++
	return nil
}

func waitForEvent(t *testing.T, events <-chan Event, kind string) Event {
	t.Helper()
	for {
		select {
		case e := <-events:
			if e.Kind == kind {
				return e
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q event", kind)
		}
	}
}

func TestVadModeStartAndEnd(t *testing.T) {
	plugin := &fakePlugin{}
	c := New(config.ModeVad, plugin)

	vadEvents := make(chan vad.Event, 4)
	hotkeyEvents := make(chan vad.Event)
	frames := make(chan audio.Frame)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, vadEvents, hotkeyEvents, frames)

	vadEvents <- vad.Event{Kind: vad.SpeechStart}
	startEv := waitForEvent(t, c.Events(), "start")
	if startEv.Source != SourceVad {
		t.Errorf("Source = %v, want SourceVad", startEv.Source)
	}

	vadEvents <- vad.Event{Kind: vad.SpeechEnd}
	waitForEvent(t, c.Events(), "end")

	if plugin.finalizes != 1 {
		t.Errorf("finalizes = %d, want 1", plugin.finalizes)
	}
}

func TestHotkeyPreemptsActiveVadSession(t *testing.T) {
	plugin := &fakePlugin{}
	c := New(config.ModeVad, plugin)

	vadEvents := make(chan vad.Event, 4)
	hotkeyEvents := make(chan vad.Event, 4)
	frames := make(chan audio.Frame)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, vadEvents, hotkeyEvents, frames)

	vadEvents <- vad.Event{Kind: vad.SpeechStart}
	waitForEvent(t, c.Events(), "start")

	hotkeyEvents <- vad.Event{Kind: vad.SpeechStart}
	abortEv := waitForEvent(t, c.Events(), "abort")
	if abortEv.Reason != "preempted-by-hotkey" {
		t.Errorf("Reason = %q, want preempted-by-hotkey", abortEv.Reason)
	}

	startEv := waitForEvent(t, c.Events(), "start")
	if startEv.Source != SourceHotkey {
		t.Errorf("Source = %v, want SourceHotkey", startEv.Source)
	}
}

func TestHotkeyModeIgnoresVadEvents(t *testing.T) {
	plugin := &fakePlugin{}
	c := New(config.ModeHotkey, plugin)

	vadEvents := make(chan vad.Event, 4)
	hotkeyEvents := make(chan vad.Event)
	frames := make(chan audio.Frame)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, vadEvents, hotkeyEvents, frames)

	vadEvents <- vad.Event{Kind: vad.SpeechStart}

	select {
	case e := <-c.Events():
		t.Fatalf("expected no events in hotkey mode, got %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestShutdownAbortsActiveSession(t *testing.T) {
	plugin := &fakePlugin{}
	c := New(config.ModeHotkey, plugin)

	vadEvents := make(chan vad.Event)
	hotkeyEvents := make(chan vad.Event, 4)
	frames := make(chan audio.Frame)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx, vadEvents, hotkeyEvents, frames)

	hotkeyEvents <- vad.Event{Kind: vad.SpeechStart}
	waitForEvent(t, c.Events(), "start")

	cancel()
	abortEv := waitForEvent(t, c.Events(), "abort")
	if abortEv.Reason != "shutdown" {
		t.Errorf("Reason = %q, want shutdown", abortEv.Reason)
	}
}
