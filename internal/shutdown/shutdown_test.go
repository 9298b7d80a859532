package shutdown

import (
	"context"
	"testing"
	"time"
)

func TestRequestClosesDone(t *testing.T) {
	h := New()
	h.Request()
	select {
	case <-h.Done():
	default:
		t.Fatal("Done channel should be closed after Request")
	}
	if !h.Requested() {
		t.Fatal("Requested should report true")
	}
}

func TestRequestIsIdempotent(t *testing.T) {
	h := New()
	h.Request()
	h.Request() // must not panic on double close
	if !h.Requested() {
		t.Fatal("Requested should report true")
	}
}

func TestContextCanceledOnRequest(t *testing.T) {
	h := New()
	ctx, cancel := h.Context(context.Background())
	defer cancel()

	h.Request()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context should be canceled after Request")
	}
}

func TestRecoverAndShutdownRequestsAndRepanics(t *testing.T) {
	h := New()
	defer func() {
		r := recover()
		if r != "boom" {
			t.Fatalf("want repanic with original value, got %v", r)
		}
		if !h.Requested() {
			t.Fatal("want shutdown requested after panic recovery")
		}
	}()
	defer h.RecoverAndShutdown()
	panic("boom")
}
