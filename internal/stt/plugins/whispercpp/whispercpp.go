// Package whispercpp implements a batch-only STT plugin backed by the
// whisper.cpp CGO bindings. A session buffers every frame it receives
// and transcribes the full utterance on Finalize, since whisper.cpp
// has no incremental decoding mode.
package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/coldaine/coldvox-go/internal/stt"
)

// Plugin loads a whisper.cpp model once and creates a fresh inference
// context per session, since whisper.cpp contexts are not safe for
// concurrent use but the model itself may be shared.
type Plugin struct {
	modelPath string
	language  string
	model     whisperlib.Model

	sessionID uint64
	buffer    []int16
}

// New constructs a Plugin that will load modelPath on Initialize.
func New(modelPath, language string) *Plugin {
	if language == "" {
		language = "en"
	}
	return &Plugin{modelPath: modelPath, language: language}
}

func (p *Plugin) Info() stt.Info {
	return stt.Info{
		Name: "whispercpp",
		Capabilities: stt.Capabilities{
			Batch: true,
			Local: true,
		},
	}
}

func (p *Plugin) IsAvailable(ctx context.Context) bool {
	return p.model != nil
}

func (p *Plugin) Initialize(ctx context.Context, cfg stt.Config) error {
	path := p.modelPath
	if cfg.ModelPath != "" {
		path = cfg.ModelPath
	}
	model, err := whisperlib.New(path)
	if err != nil {
		return fmt.Errorf("whispercpp: load model %q: %w", path, err)
	}
	p.model = model
	return nil
}

func (p *Plugin) Begin(ctx context.Context, sessionID uint64) error {
	p.sessionID = sessionID
	p.buffer = p.buffer[:0]
	return nil
}

// ProcessAudio only buffers samples; whisper.cpp never emits partials.
func (p *Plugin) ProcessAudio(ctx context.Context, samples []int16) (*stt.TranscriptionEvent, error) {
	p.buffer = append(p.buffer, samples...)
	return nil, nil
}

func (p *Plugin) Finalize(ctx context.Context) (*stt.TranscriptionEvent, error) {
	if len(p.buffer) == 0 {
		return nil, nil
	}
	if p.model == nil {
		return nil, errors.New("whispercpp: plugin not initialized")
	}

	samples := pcmToFloat32(p.buffer)
	p.buffer = p.buffer[:0]

	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whispercpp: create context: %w", err)
	}
	if err := wctx.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("whispercpp: set language: %w", err)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whispercpp: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whispercpp: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return nil, nil
	}
	return &stt.TranscriptionEvent{Kind: stt.Final, SessionID: p.sessionID, Text: text}, nil
}

func (p *Plugin) Reset(ctx context.Context) error {
	p.buffer = p.buffer[:0]
	return nil
}

// Close releases the whisper.cpp model.
func (p *Plugin) Close() error {
	if p.model == nil {
		return nil
	}
	return p.model.Close()
}

func pcmToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}
