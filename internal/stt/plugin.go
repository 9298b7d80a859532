// Package stt defines the speech-to-text plugin contract and its
// concrete implementations, selected at runtime by a Registry.
package stt

import "context"

// EventKind distinguishes a partial, in-progress transcription from a
// session's single final result.
type EventKind int

const (
	Partial EventKind = iota
	Final
)

// WordTiming is a single word's recognized span, populated only when
// a plugin advertises WordTimestamps.
type WordTiming struct {
	Word       string
	StartMs    int64
	EndMs      int64
	Confidence float64
}

// TranscriptionEvent is produced by Plugin.ProcessAudio (Partial) or
// Plugin.Finalize (Final, at most one per session).
type TranscriptionEvent struct {
	Kind      EventKind
	SessionID uint64
	Text      string
	Words     []WordTiming
}

// Capabilities advertises what a plugin can do so the Registry and
// the session controller can make correct decisions without
// type-switching on plugin identity.
type Capabilities struct {
	Streaming        bool
	Batch            bool
	WordTimestamps   bool
	ConfidenceScores bool
	AutoPunctuation  bool
	Local            bool
	RequiresNetwork  bool
}

// Info is a plugin's static identity.
type Info struct {
	Name         string
	Capabilities Capabilities
}

// Config carries plugin-specific initialization parameters. Plugins
// ignore keys they do not recognize.
type Config struct {
	SampleRateHz int
	ModelPath    string
	Extra        map[string]string
}

// Plugin is the speech-to-text contract every engine implements.
// Every operation may block and must accept ctx cancellation as a
// signal to abort and return promptly; Reset must be safe to call at
// any point in a plugin's lifecycle, including mid-utterance.
type Plugin interface {
	Info() Info
	IsAvailable(ctx context.Context) bool
	Initialize(ctx context.Context, cfg Config) error
	Begin(ctx context.Context, sessionID uint64) error
	ProcessAudio(ctx context.Context, samples []int16) (*TranscriptionEvent, error)
	Finalize(ctx context.Context) (*TranscriptionEvent, error)
	Reset(ctx context.Context) error
}
