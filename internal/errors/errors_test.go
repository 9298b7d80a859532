package errors

import (
	stderrors "errors"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("device busy")
	err := Wrap(cause, DeviceUnavailable, "failed to open capture device")

	if !stderrors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if err.Code != DeviceUnavailable {
		t.Errorf("Code = %v, want DeviceUnavailable", err.Code)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{DeviceUnavailable, true},
		{BackendTransient, true},
		{SttUnavailable, true},
		{BackendPermanent, false},
		{Configuration, false},
	}

	for _, tt := range tests {
		err := New(tt.code, "x")
		if got := IsRetryable(err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := New(AppBlocked, "blocked by policy")
	if !IsCode(err, AppBlocked) {
		t.Errorf("IsCode(err, AppBlocked) = false, want true")
	}
	if IsCode(err, SttFailure) {
		t.Errorf("IsCode(err, SttFailure) = true, want false")
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(FocusUnknown, "no focused window").WithMetadata("app", "unknown")
	if err.Metadata["app"] != "unknown" {
		t.Errorf("Metadata[app] = %q, want %q", err.Metadata["app"], "unknown")
	}
}
