package vad

// Level3Config tunes the legacy energy-based engine, restored from the
// original implementation's energy-VAD path. It is optional and off by
// default; when enabled it must drive the same Hysteresis layer as
// Silero so downstream session logic is unaffected.
type Level3Config struct {
	SampleRateHz int
	FrameSamples int
	// NoiseFloorDB is the initial estimate of ambient noise; it adapts
	// via an exponential moving average during silence.
	NoiseFloorDB float64
	// OnsetMarginDB is how far above the adapted noise floor a frame's
	// energy must rise to count as fully "speech" (probability 1.0).
	OnsetMarginDB float64
	EmaAlpha      float64
}

// DefaultLevel3Config mirrors the original's defaults.
func DefaultLevel3Config() Level3Config {
	return Level3Config{
		SampleRateHz:  16000,
		FrameSamples:  512,
		NoiseFloorDB:  -60.0,
		OnsetMarginDB: 12.0,
		EmaAlpha:      0.05,
	}
}

// EnergyEngine classifies frames purely from RMS/dBFS energy relative
// to an adaptive noise floor, implementing the same Engine interface
// as the neural Silero engine so Hysteresis is agnostic to which
// backs it.
type EnergyEngine struct {
	cfg        Level3Config
	noiseFloor float64
}

// NewEnergyEngine constructs the legacy energy-based engine.
func NewEnergyEngine(cfg Level3Config) *EnergyEngine {
	return &EnergyEngine{cfg: cfg, noiseFloor: cfg.NoiseFloorDB}
}

// Process returns a probability derived from how far the frame's
// energy sits above the adapted noise floor, linearly scaled across
// OnsetMarginDB and clamped to [0,1]. The noise floor itself only
// adapts when the frame looks like silence, so speech never drags it
// upward.
func (e *EnergyEngine) Process(frame []int16) (float64, error) {
	db := FrameEnergyDB(frame)
	margin := db - e.noiseFloor
	p := margin / e.cfg.OnsetMarginDB
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	if p < 0.5 {
		e.noiseFloor = e.cfg.EmaAlpha*db + (1-e.cfg.EmaAlpha)*e.noiseFloor
	}
	return p, nil
}

func (e *EnergyEngine) Reset() error {
	e.noiseFloor = e.cfg.NoiseFloorDB
	return nil
}

func (e *EnergyEngine) RequiredSampleRate() int       { return e.cfg.SampleRateHz }
func (e *EnergyEngine) RequiredFrameSizeSamples() int { return e.cfg.FrameSamples }
func (e *EnergyEngine) Close() error                  { return nil }
