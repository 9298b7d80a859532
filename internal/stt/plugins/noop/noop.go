// Package noop implements an STT plugin that never transcribes
// anything, useful for exercising the rest of the pipeline without a
// real speech engine and as the registry's always-available fallback.
package noop

import (
	"context"

	"github.com/coldaine/coldvox-go/internal/stt"
)

// Plugin is the no-op speech-to-text engine.
type Plugin struct{}

// New constructs a Plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Info() stt.Info {
	return stt.Info{
		Name: "noop",
		Capabilities: stt.Capabilities{
			Streaming: true,
			Batch:     true,
			Local:     true,
		},
	}
}

func (p *Plugin) IsAvailable(ctx context.Context) bool { return true }

func (p *Plugin) Initialize(ctx context.Context, cfg stt.Config) error { return nil }

func (p *Plugin) Begin(ctx context.Context, sessionID uint64) error { return nil }

func (p *Plugin) ProcessAudio(ctx context.Context, samples []int16) (*stt.TranscriptionEvent, error) {
	return nil, nil
}

func (p *Plugin) Finalize(ctx context.Context) (*stt.TranscriptionEvent, error) {
	return nil, nil
}

func (p *Plugin) Reset(ctx context.Context) error { return nil }
