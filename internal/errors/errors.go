// Package errors provides the pipeline's unified error taxonomy. Every
// failure surfaced across component boundaries carries one of the
// ErrorCode values below; Code, IsCode and IsRetryable let callers
// branch on kind rather than string-matching.
package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode classifies a failure by where in the pipeline it occurred
// and whether it is expected to be transient.
type ErrorCode int

const (
	Unknown ErrorCode = iota
	Configuration
	DeviceUnavailable
	WatchdogTimeout
	VadInternal
	SttUnavailable
	SttFailure
	FocusUnknown
	AppBlocked
	BackendTransient
	BackendPermanent
	AllBackendsFailed
	ShutdownRequested
)

var codeNames = map[ErrorCode]string{
	Unknown:            "unknown",
	Configuration:      "configuration",
	DeviceUnavailable:  "device_unavailable",
	WatchdogTimeout:    "watchdog_timeout",
	VadInternal:        "vad_internal",
	SttUnavailable:     "stt_unavailable",
	SttFailure:         "stt_failure",
	FocusUnknown:       "focus_unknown",
	AppBlocked:         "app_blocked",
	BackendTransient:   "backend_transient",
	BackendPermanent:   "backend_permanent",
	AllBackendsFailed:  "all_backends_failed",
	ShutdownRequested:  "shutdown_requested",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "unknown"
}

// AppError is the pipeline's structured error type.
type AppError struct {
	Code     ErrorCode
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// WithMetadata attaches a key/value pair and returns the error for chaining.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error.
func Wrap(err error, code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf attaches a code and formatted message to an existing error.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Code extracts the ErrorCode from err, or Unknown if err is not an AppError.
func Code(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return Unknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return Code(err) == code
}

// IsRetryable reports whether the failure is transient and worth
// retrying: device hiccups, backend-transient injection failures, and
// STT unavailability (e.g. a remote endpoint flapping).
func IsRetryable(err error) bool {
	switch Code(err) {
	case DeviceUnavailable, BackendTransient, SttUnavailable:
		return true
	default:
		return false
	}
}

// grpcCodeMap maps our taxonomy onto gRPC status codes for the
// remotegrpc STT plugin, which surfaces AppError-wrapped RPC failures.
var grpcCodeMap = map[ErrorCode]codes.Code{
	Unknown:           codes.Unknown,
	Configuration:     codes.InvalidArgument,
	DeviceUnavailable: codes.Unavailable,
	WatchdogTimeout:   codes.DeadlineExceeded,
	VadInternal:       codes.Internal,
	SttUnavailable:    codes.Unavailable,
	SttFailure:        codes.Internal,
	BackendTransient:  codes.Unavailable,
	BackendPermanent:  codes.FailedPrecondition,
	AllBackendsFailed: codes.Internal,
}

// GRPCCode returns the gRPC status code matching this error's taxonomy.
func (e *AppError) GRPCCode() codes.Code {
	if c, ok := grpcCodeMap[e.Code]; ok {
		return c
	}
	return codes.Unknown
}

// GRPCStatus lets AppError satisfy status.FromError's interface.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(e.GRPCCode(), e.Error())
}

// FromGRPCError maps a gRPC error back onto our taxonomy, best effort.
func FromGRPCError(err error) *AppError {
	st, ok := status.FromError(err)
	if !ok {
		return &AppError{Code: Unknown, Message: err.Error(), Cause: err}
	}
	switch st.Code() {
	case codes.Unavailable:
		return &AppError{Code: SttUnavailable, Message: st.Message()}
	case codes.DeadlineExceeded:
		return &AppError{Code: WatchdogTimeout, Message: st.Message()}
	case codes.InvalidArgument:
		return &AppError{Code: Configuration, Message: st.Message()}
	case codes.Internal:
		return &AppError{Code: SttFailure, Message: st.Message()}
	default:
		return &AppError{Code: Unknown, Message: st.Message()}
	}
}
