//go:build onnx

// Package parakeetonnx implements a streaming STT plugin around a
// CTC-style acoustic model running through onnxruntime_go, decoding
// greedily per frame rather than buffering a whole utterance the way
// whispercpp does.
package parakeetonnx

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/coldaine/coldvox-go/internal/stt"
)

const frameSamples = 512

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

func ensureRuntime() error {
	runtimeOnce.Do(func() {
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// Plugin streams audio through a CTC acoustic model, collapsing
// repeated tokens and the blank symbol into a running transcript.
type Plugin struct {
	modelPath string
	vocab     []string
	blankID   int

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	logits  *ort.Tensor[float32]

	sessionID uint64
	lastToken int
	text      strings.Builder
}

// New constructs a Plugin that loads its model from modelPath on
// Initialize, decoding against the provided vocabulary (index 0
// conventionally reserved for the CTC blank symbol).
func New(modelPath string, vocab []string) *Plugin {
	return &Plugin{modelPath: modelPath, vocab: vocab, blankID: 0, lastToken: -1}
}

func (p *Plugin) Info() stt.Info {
	return stt.Info{
		Name: "parakeetonnx",
		Capabilities: stt.Capabilities{
			Streaming: true,
			Local:     true,
		},
	}
}

func (p *Plugin) IsAvailable(ctx context.Context) bool {
	return p.session != nil
}

func (p *Plugin) Initialize(ctx context.Context, cfg stt.Config) error {
	if err := ensureRuntime(); err != nil {
		return fmt.Errorf("parakeetonnx: initialize onnxruntime: %w", err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, frameSamples), make([]float32, frameSamples))
	if err != nil {
		return err
	}
	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(p.vocab))))
	if err != nil {
		input.Destroy()
		return err
	}

	session, err := ort.NewAdvancedSession(
		p.modelPath,
		[]string{"input"},
		[]string{"logits"},
		[]ort.Value{input},
		[]ort.Value{logits},
		nil,
	)
	if err != nil {
		input.Destroy()
		logits.Destroy()
		return fmt.Errorf("parakeetonnx: load model %q: %w", p.modelPath, err)
	}

	p.session = session
	p.input = input
	p.logits = logits
	return nil
}

func (p *Plugin) Begin(ctx context.Context, sessionID uint64) error {
	p.sessionID = sessionID
	p.lastToken = -1
	p.text.Reset()
	return nil
}

func (p *Plugin) ProcessAudio(ctx context.Context, samples []int16) (*stt.TranscriptionEvent, error) {
	if len(samples) != frameSamples || p.session == nil {
		return nil, nil
	}

	in := p.input.GetData()
	for i, s := range samples {
		in[i] = float32(s) / 32768.0
	}
	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("parakeetonnx: run inference: %w", err)
	}

	token := argmax(p.logits.GetData())
	if token != p.blankID && token != p.lastToken && token < len(p.vocab) {
		p.text.WriteString(p.vocab[token])
	}
	p.lastToken = token

	if p.text.Len() == 0 {
		return nil, nil
	}
	return &stt.TranscriptionEvent{Kind: stt.Partial, SessionID: p.sessionID, Text: p.text.String()}, nil
}

func (p *Plugin) Finalize(ctx context.Context) (*stt.TranscriptionEvent, error) {
	text := p.text.String()
	p.text.Reset()
	if text == "" {
		return nil, nil
	}
	return &stt.TranscriptionEvent{Kind: stt.Final, SessionID: p.sessionID, Text: text}, nil
}

func (p *Plugin) Reset(ctx context.Context) error {
	p.lastToken = -1
	p.text.Reset()
	return nil
}

// Close releases the ONNX session and its tensors.
func (p *Plugin) Close() error {
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	if p.input != nil {
		p.input.Destroy()
		p.input = nil
	}
	if p.logits != nil {
		p.logits.Destroy()
		p.logits = nil
	}
	return nil
}

func argmax(logits []float32) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}
