package vad

// stubToggleInterval is how many frames the Stub engine spends in
// each state before flipping, grounded on the nupi-ai Silero plugin's
// own StubEngine used when no native inference backend is compiled in.
const stubToggleInterval = 50

// stubConfidence is the fixed probability the stub reports while
// "speaking".
const stubConfidence = 0.42

// Stub is a deterministic Engine used when the onnx build tag is not
// set, so the pipeline still runs (with synthetic VAD behavior) on
// platforms without an ONNX Runtime install.
type Stub struct {
	counter  int
	speaking bool
}

// NewStub creates a deterministic fallback engine.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) Process(frame []int16) (float64, error) {
	s.counter++
	if s.counter >= stubToggleInterval {
		s.counter = 0
		s.speaking = !s.speaking
	}
	if s.speaking {
		return stubConfidence, nil
	}
	return 0, nil
}

func (s *Stub) Reset() error {
	s.counter = 0
	s.speaking = false
	return nil
}

func (s *Stub) RequiredSampleRate() int       { return 16000 }
func (s *Stub) RequiredFrameSizeSamples() int { return 512 }
func (s *Stub) Close() error                  { return nil }
