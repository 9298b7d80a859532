//go:build !onnx

package parakeetonnx

import (
	"context"

	"github.com/coldaine/coldvox-go/internal/stt"
)

// Plugin is a build without onnxruntime support; it reports itself as
// unavailable so the registry falls through to another plugin.
type Plugin struct{}

// New constructs an unavailable Plugin placeholder.
func New(modelPath string, vocab []string) *Plugin { return &Plugin{} }

func (p *Plugin) Info() stt.Info {
	return stt.Info{Name: "parakeetonnx", Capabilities: stt.Capabilities{Streaming: true, Local: true}}
}

func (p *Plugin) IsAvailable(ctx context.Context) bool { return false }

func (p *Plugin) Initialize(ctx context.Context, cfg stt.Config) error { return nil }

func (p *Plugin) Begin(ctx context.Context, sessionID uint64) error { return nil }

func (p *Plugin) ProcessAudio(ctx context.Context, samples []int16) (*stt.TranscriptionEvent, error) {
	return nil, nil
}

func (p *Plugin) Finalize(ctx context.Context) (*stt.TranscriptionEvent, error) { return nil, nil }

func (p *Plugin) Reset(ctx context.Context) error { return nil }
