// Package injection turns finalized transcriptions into OS-level text
// input via a fallback chain of backends, bounded by a global latency
// budget.
package injection

import (
	"context"
	"time"
)

// FocusStatus classifies the currently focused UI element.
type FocusStatus int

const (
	FocusUnknown FocusStatus = iota
	FocusEditableText
	FocusNonEditable
)

// Context carries everything a backend needs to decide whether and
// how to inject.
type Context struct {
	SessionID   uint64
	AppIdentity string
	FocusStatus FocusStatus
	Deadline    time.Time
}

// BackendID names a registered injection backend.
type BackendID string

const (
	BackendATSPI          BackendID = "atspi"
	BackendClipboardPaste BackendID = "clipboardpaste"
	BackendKeySynth       BackendID = "keysynth"
	BackendNoOp           BackendID = "noop"
)

// Outcome describes a successful injection.
type Outcome struct {
	Backend   BackendID
	LatencyMs int64
	Degraded  bool
}

// FailureKind distinguishes failures a fallback loop should retry
// from ones that permanently disable a backend.
type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailurePermanent
)

// Failure is returned by a backend that could not inject.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Metrics tracks a backend's lifetime usage, updated with atomics so
// reads never block the injection hot path.
type Metrics struct {
	Attempts  uint64
	Successes uint64
	Failures  uint64
}

// Backend is the capability every injection method implements.
type Backend interface {
	Name() BackendID
	IsAvailable(ctx context.Context) bool
	// SupportsFocus reports whether this backend can act on the given
	// focus status at all (e.g. AT-SPI requires an editable target).
	SupportsFocus(status FocusStatus) bool
	Inject(ctx context.Context, text string, injCtx Context) error
	Metrics() Metrics
}
