// Package config defines the pipeline's configuration surface. Loading
// values from files, flags, or environment variables is an external
// collaborator's job; this package only defines the knobs and their
// defaults.
package config

import "time"

// VadMode selects which VadEngine implementation drives hysteresis.
type VadMode int

const (
	ModeSilero VadMode = iota
	ModeLevel3
)

// VadConfig configures the voice-activity engine and its hysteresis.
type VadConfig struct {
	Mode          VadMode
	Threshold     float64
	MinSpeechMs   int
	MinSilenceMs  int
	WindowSamples int
	SampleRateHz  int
}

// DefaultVadConfig matches the values the spec's hysteresis scenarios
// are written against.
func DefaultVadConfig() VadConfig {
	return VadConfig{
		Mode:          ModeSilero,
		Threshold:     0.3,
		MinSpeechMs:   250,
		MinSilenceMs:  100,
		WindowSamples: 512,
		SampleRateHz:  16000,
	}
}

// HotkeyConfig configures the push-to-talk listener.
type HotkeyConfig struct {
	// Combination names the modifier keys that must be held together.
	Combination   []string
	ShowIndicator bool
}

// DefaultHotkeyConfig returns the spec's default combination.
func DefaultHotkeyConfig() HotkeyConfig {
	return HotkeyConfig{
		Combination:   []string{"Control", "Super"},
		ShowIndicator: true,
	}
}

// ActivationMode selects which event stream drives session start/end.
type ActivationMode int

const (
	ModeVad ActivationMode = iota
	ModeHotkey
)

// SessionConfig configures the session controller's activation rules.
type SessionConfig struct {
	ActivationMode ActivationMode
}

// DefaultSessionConfig matches the spec's default of hotkey-driven
// activation.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{ActivationMode: ModeHotkey}
}

// InjectionConfig configures the text-injection orchestrator.
type InjectionConfig struct {
	MaxTotalLatency       time.Duration
	PerBackendSoftTimeout time.Duration
	FocusCacheTTL         time.Duration
	FocusReadinessTimeout time.Duration
	Allowlist             []string
	Blocklist             []string
	InjectOnUnknownFocus  bool
	PasteChunkChars       int
	ChunkDelay            time.Duration
	RestoreClipboard      bool
}

// DefaultInjectionConfig matches the constants in spec §6/§4.8.
func DefaultInjectionConfig() InjectionConfig {
	return InjectionConfig{
		MaxTotalLatency:       1200 * time.Millisecond,
		PerBackendSoftTimeout: 600 * time.Millisecond,
		FocusCacheTTL:         50 * time.Millisecond,
		FocusReadinessTimeout: 250 * time.Millisecond,
		InjectOnUnknownFocus:  false,
		PasteChunkChars:       0,
		ChunkDelay:            0,
		RestoreClipboard:      true,
	}
}

// AudioConfig configures device capture.
type AudioConfig struct {
	SampleRateHz    int
	Channels        int
	RingCapacity    int
	WatchdogTimeout time.Duration
}

// DefaultAudioConfig returns device-capture defaults.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRateHz:    16000,
		Channels:        1,
		RingCapacity:    1 << 16,
		WatchdogTimeout: 5 * time.Second,
	}
}

// Config is the top-level configuration surface for one pipeline
// instance.
type Config struct {
	Audio     AudioConfig
	Vad       VadConfig
	Hotkey    HotkeyConfig
	Session   SessionConfig
	Injection InjectionConfig
}

// Default assembles the pipeline's default configuration.
func Default() Config {
	return Config{
		Audio:     DefaultAudioConfig(),
		Vad:       DefaultVadConfig(),
		Hotkey:    DefaultHotkeyConfig(),
		Session:   DefaultSessionConfig(),
		Injection: DefaultInjectionConfig(),
	}
}
