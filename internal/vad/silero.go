//go:build onnx

package vad

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	sileroWindowSamples = 512
	sileroStateSize     = 128
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func ensureRuntime() error {
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Silero runs the Silero VAD v5 ONNX model, carrying its recurrent
// state tensor between windows the way the reference plugin's
// SileroEngine does.
type Silero struct {
	session *ort.AdvancedSession

	input  *ort.Tensor[float32]
	state  *ort.Tensor[float32]
	sr     *ort.Tensor[int64]
	output *ort.Tensor[float32]
	stateN *ort.Tensor[float32]

	pcmBuf []float32
}

// NewSilero loads the given ONNX model bytes and allocates the fixed
// tensors the model expects: a 512-sample input window, a [2,1,128]
// recurrent state, and the sample rate scalar.
func NewSilero(modelData []byte) (*Silero, error) {
	if err := ensureRuntime(); err != nil {
		return nil, fmt.Errorf("vad: initialize onnxruntime: %w", err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, sileroWindowSamples), make([]float32, sileroWindowSamples))
	if err != nil {
		return nil, err
	}
	state, err := ort.NewTensor(ort.NewShape(2, 1, sileroStateSize), make([]float32, 2*sileroStateSize))
	if err != nil {
		input.Destroy()
		return nil, err
	}
	sr, err := ort.NewTensor(ort.NewShape(1), []int64{16000})
	if err != nil {
		input.Destroy()
		state.Destroy()
		return nil, err
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()
		state.Destroy()
		sr.Destroy()
		return nil, err
	}
	stateN, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroStateSize))
	if err != nil {
		input.Destroy()
		state.Destroy()
		sr.Destroy()
		output.Destroy()
		return nil, err
	}

	session, err := ort.NewAdvancedSessionWithONNXData(
		modelData,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{input, state, sr},
		[]ort.Value{output, stateN},
		nil,
	)
	if err != nil {
		input.Destroy()
		state.Destroy()
		sr.Destroy()
		output.Destroy()
		stateN.Destroy()
		return nil, err
	}

	return &Silero{
		session: session,
		input:   input,
		state:   state,
		sr:      sr,
		output:  output,
		stateN:  stateN,
		pcmBuf:  make([]float32, 0, sileroWindowSamples),
	}, nil
}

// Process converts the int16 frame to normalized float32, runs a
// single inference pass, carries the recurrent state forward, and
// returns the model's speech probability.
func (s *Silero) Process(frame []int16) (float64, error) {
	if len(frame) != sileroWindowSamples {
		return 0, fmt.Errorf("vad: silero requires exactly %d samples, got %d", sileroWindowSamples, len(frame))
	}

	in := s.input.GetData()
	for i, v := range frame {
		in[i] = float32(v) / 32768.0
	}

	if err := s.session.Run(); err != nil {
		return 0, err
	}

	p := float64(s.output.GetData()[0])
	copy(s.state.GetData(), s.stateN.GetData())
	return p, nil
}

func (s *Silero) Reset() error {
	state := s.state.GetData()
	for i := range state {
		state[i] = 0
	}
	return nil
}

func (s *Silero) RequiredSampleRate() int       { return 16000 }
func (s *Silero) RequiredFrameSizeSamples() int { return sileroWindowSamples }

// Close destroys the session and its tensors. Safe to call more than
// once.
func (s *Silero) Close() error {
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.state != nil {
		s.state.Destroy()
		s.state = nil
	}
	if s.sr != nil {
		s.sr.Destroy()
		s.sr = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.stateN != nil {
		s.stateN.Destroy()
		s.stateN = nil
	}
	return nil
}
