// Package atspi implements text injection via the Linux accessibility
// bus (AT-SPI2), inserting text directly into the focused editable
// accessible object rather than synthesizing keystrokes.
package atspi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"

	"github.com/coldaine/coldvox-go/internal/injection"
)

const (
	a11yBusService    = "org.a11y.Bus"
	a11yBusObject     = "/org/a11y/bus"
	eventObjectIface  = "org.a11y.atspi.Event.Object"
	editableTextIface = "org.a11y.atspi.EditableText"
)

type focusedObject struct {
	busName string
	path    dbus.ObjectPath
}

// Backend talks to the AT-SPI accessibility bus over D-Bus, tracking
// the currently focused accessible object via StateChanged signals
// and inserting text directly into it.
type Backend struct {
	conn *dbus.Conn

	mu      sync.RWMutex
	focused *focusedObject

	attempts, successes, failures atomic.Uint64
}

// New bootstraps the AT-SPI connection: it asks the session bus for
// the accessibility bus address, dials that address, and starts a
// background goroutine tracking focus changes. Returns a Backend that
// reports itself unavailable if any step fails, rather than an error,
// since AT-SPI availability is an environmental fact the orchestrator
// probes for rather than a hard dependency.
func New() *Backend {
	b := &Backend{}

	sessionConn, err := dbus.ConnectSessionBus()
	if err != nil {
		return b
	}

	var addr string
	obj := sessionConn.Object(a11yBusService, a11yBusObject)
	if err := obj.Call(a11yBusService+".GetAddress", 0).Store(&addr); err != nil {
		return b
	}

	atspiConn, err := dbus.Dial(addr)
	if err != nil {
		return b
	}
	if err := atspiConn.Auth(nil); err != nil {
		atspiConn.Close()
		return b
	}

	b.conn = atspiConn
	go b.trackFocus()
	return b
}

func (b *Backend) trackFocus() {
	if err := b.conn.AddMatchSignal(
		dbus.WithMatchInterface(eventObjectIface),
		dbus.WithMatchMember("StateChanged"),
	); err != nil {
		return
	}

	signals := make(chan *dbus.Signal, 16)
	b.conn.Signal(signals)

	for sig := range signals {
		if len(sig.Body) < 2 {
			continue
		}
		state, ok := sig.Body[0].(string)
		if !ok || state != "focused" {
			continue
		}
		detail, ok := sig.Body[1].(int32)
		if !ok || detail != 1 {
			continue
		}
		b.mu.Lock()
		b.focused = &focusedObject{busName: sig.Sender, path: sig.Path}
		b.mu.Unlock()
	}
}

func (b *Backend) Name() injection.BackendID { return injection.BackendATSPI }

func (b *Backend) IsAvailable(ctx context.Context) bool { return b.conn != nil }

func (b *Backend) SupportsFocus(status injection.FocusStatus) bool {
	return status == injection.FocusEditableText
}

func (b *Backend) Inject(ctx context.Context, text string, injCtx injection.Context) error {
	b.attempts.Add(1)

	b.mu.RLock()
	target := b.focused
	b.mu.RUnlock()
	if target == nil {
		b.failures.Add(1)
		return &injection.Failure{Kind: injection.FailureTransient, Message: "atspi: no focused accessible object"}
	}

	obj := b.conn.Object(target.busName, target.path)
	call := obj.CallWithContext(ctx, editableTextIface+".InsertText", 0, int32(0), text, int32(len(text)))
	if call.Err != nil {
		b.failures.Add(1)
		return &injection.Failure{Kind: injection.FailureTransient, Message: fmt.Sprintf("atspi: insert text: %v", call.Err)}
	}

	b.successes.Add(1)
	return nil
}

// Resolve reports the bus name of the last accessible object observed
// gaining input focus, letting the Backend double as the
// orchestrator's injection.FocusResolver so focus tracking is not
// duplicated across a second D-Bus subscription.
func (b *Backend) Resolve(ctx context.Context) (string, injection.FocusStatus) {
	b.mu.RLock()
	target := b.focused
	b.mu.RUnlock()
	if target == nil {
		return "", injection.FocusUnknown
	}
	return target.busName, injection.FocusEditableText
}

func (b *Backend) Metrics() injection.Metrics {
	return injection.Metrics{
		Attempts:  b.attempts.Load(),
		Successes: b.successes.Load(),
		Failures:  b.failures.Load(),
	}
}

// Close releases the AT-SPI connection.
func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}
