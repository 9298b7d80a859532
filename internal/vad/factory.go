package vad

import "github.com/coldaine/coldvox-go/internal/config"

// NewEngine builds the Engine named by cfg.Mode. ModeSilero requires
// the onnx build tag and a model; when that tag is absent a
// deterministic Stub is used so the pipeline still runs end-to-end.
func NewEngine(cfg config.VadConfig, modelData []byte) (Engine, error) {
	switch cfg.Mode {
	case config.ModeLevel3:
		return NewEnergyEngine(Level3Config{
			SampleRateHz: cfg.SampleRateHz,
			FrameSamples: cfg.WindowSamples,
			NoiseFloorDB: -60.0,
			OnsetMarginDB: 12.0,
			EmaAlpha:      0.05,
		}), nil
	default:
		return newSileroOrStub(modelData)
	}
}

// NewPipeline wires an Engine through the Hysteresis layer using the
// given config's threshold and dwell times.
func NewPipeline(cfg config.VadConfig, modelData []byte) (*Hysteresis, error) {
	engine, err := NewEngine(cfg, modelData)
	if err != nil {
		return nil, err
	}
	return NewHysteresis(engine, cfg.Threshold, cfg.MinSpeechMs, cfg.MinSilenceMs), nil
}
