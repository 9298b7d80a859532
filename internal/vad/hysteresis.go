package vad

import "math"

// Hysteresis wraps any Engine with the debounced state machine
// described in spec §4.5: sustained evidence is required before a
// state transition is emitted, regardless of which Engine supplies
// the per-frame probability.
type Hysteresis struct {
	engine    Engine
	threshold float64

	frameDurationMs float64
	speechFrames    int // ceil(min_speech_ms / frame_duration_ms)
	silenceFrames   int // ceil(min_silence_ms / frame_duration_ms)

	state          State
	inStateFrames  uint64
	lastEnergyDB   float64
	speechStartMs  int64
	samplesEmitted uint64

	metrics Metrics
}

// NewHysteresis builds the hysteresis layer around engine using the
// given threshold and dwell times in milliseconds.
func NewHysteresis(engine Engine, threshold float64, minSpeechMs, minSilenceMs int) *Hysteresis {
	frameDurationMs := float64(engine.RequiredFrameSizeSamples()) * 1000.0 / float64(engine.RequiredSampleRate())
	return &Hysteresis{
		engine:          engine,
		threshold:       threshold,
		frameDurationMs: frameDurationMs,
		speechFrames:    ceilDiv(minSpeechMs, frameDurationMs),
		silenceFrames:   ceilDiv(minSilenceMs, frameDurationMs),
		state:           Silence,
	}
}

func ceilDiv(ms int, frameDurationMs float64) int {
	if frameDurationMs <= 0 {
		return 1
	}
	n := int(math.Ceil(float64(ms) / frameDurationMs))
	if n < 1 {
		n = 1
	}
	return n
}

// Process runs one frame through the engine and the hysteresis state
// machine, returning an Event only on a state transition.
func (h *Hysteresis) Process(frame []int16) (*Event, error) {
	energyDB := FrameEnergyDB(frame)
	h.lastEnergyDB = energyDB
	h.metrics.FramesProcessed++
	h.metrics.LastEnergyDB = energyDB

	timestampMs := int64(float64(h.samplesEmitted) * 1000.0 / float64(h.engine.RequiredSampleRate()))
	h.samplesEmitted += uint64(len(frame))

	p, err := h.engine.Process(frame)
	if err != nil {
		return nil, err
	}
	qualifies := p >= h.threshold

	switch h.state {
	case Silence:
		if qualifies {
			h.inStateFrames++
			if h.inStateFrames == 1 {
				h.speechStartMs = timestampMs
			}
			if h.inStateFrames >= uint64(h.speechFrames) {
				h.state = Speech
				h.inStateFrames = 0
				h.metrics.SpeechSegments++
				return &Event{Kind: SpeechStart, TimestampMs: h.speechStartMs, EnergyDB: energyDB}, nil
			}
		} else {
			h.inStateFrames = 0
		}
	case Speech:
		if !qualifies {
			h.inStateFrames++
			if h.inStateFrames == 1 {
				// first silent frame of this run is the boundary we stamp the end at
			}
			if h.inStateFrames >= uint64(h.silenceFrames) {
				endMs := timestampMs - int64(h.inStateFrames-1)*int64(h.frameDurationMs)
				duration := endMs - h.speechStartMs
				h.metrics.TotalSpeechMs += duration
				h.state = Silence
				h.inStateFrames = 0
				return &Event{Kind: SpeechEnd, TimestampMs: endMs, EnergyDB: energyDB, DurationMs: duration}, nil
			}
		} else {
			h.inStateFrames = 0
		}
	}
	return nil, nil
}

// Reset returns the hysteresis layer and its engine to the initial
// Silence state.
func (h *Hysteresis) Reset() error {
	h.state = Silence
	h.inStateFrames = 0
	h.samplesEmitted = 0
	return h.engine.Reset()
}

// State returns the current debounced VAD state.
func (h *Hysteresis) State() State { return h.state }

// Metrics returns a snapshot of accumulated observability counters.
func (h *Hysteresis) Metrics() Metrics { return h.metrics }

func (h *Hysteresis) RequiredSampleRate() int       { return h.engine.RequiredSampleRate() }
func (h *Hysteresis) RequiredFrameSizeSamples() int { return h.engine.RequiredFrameSizeSamples() }

// Close releases the underlying engine's resources.
func (h *Hysteresis) Close() error { return h.engine.Close() }
