// Package state implements the process-wide AppState machine: a
// small, strictly validated set of transitions that every other
// component reports into and can subscribe to.
package state

import (
	"log/slog"
	"sync"

	"github.com/coldaine/coldvox-go/internal/errors"
	"github.com/coldaine/coldvox-go/internal/syncx"
)

// AppState is the pipeline's top-level lifecycle state.
type AppState int

const (
	Initializing AppState = iota
	Running
	Recovering
	Stopping
	Stopped
)

func (s AppState) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Recovering:
		return "recovering"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is one published state change: the new state plus, for
// Recovering, the reason that triggered it.
type Snapshot struct {
	State  AppState
	Reason string
}

// allowed enumerates the valid transition table from spec.md §3:
// Initializing→Running; Running↔Recovering; Running/Recovering→Stopping→Stopped.
var allowed = map[AppState]map[AppState]bool{
	Initializing: {Running: true},
	Running:      {Recovering: true, Stopping: true},
	Recovering:   {Running: true, Stopping: true},
	Stopping:     {Stopped: true},
	Stopped:      {},
}

// Manager owns the current AppState and broadcasts every accepted
// transition to subscribers.
type Manager struct {
	mu          sync.Mutex
	current     AppState
	subscribers *syncx.Subscribers[Snapshot]
}

// New constructs a Manager starting in Initializing.
func New() *Manager {
	return &Manager{
		current:     Initializing,
		subscribers: syncx.NewSubscribers[Snapshot](),
	}
}

// Current returns the current state.
func (m *Manager) Current() AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe returns a channel that receives every accepted transition
// from this point forward.
func (m *Manager) Subscribe(buffer int) <-chan Snapshot {
	return m.subscribers.Add(buffer)
}

// Transition attempts to move to next, validating against the
// transition table. reason is only meaningful (and only broadcast)
// when next is Recovering.
func (m *Manager) Transition(next AppState, reason string) error {
	m.mu.Lock()
	current := m.current
	if !allowed[current][next] {
		m.mu.Unlock()
		return errors.Newf(errors.Configuration, "illegal app state transition: %s -> %s", current, next)
	}
	m.current = next
	m.mu.Unlock()

	if next != Recovering {
		reason = ""
	}
	if next == Recovering {
		slog.Warn("app state: recovering", "from", current, "reason", reason)
	} else {
		slog.Info("app state transition", "from", current, "to", next)
	}
	m.subscribers.Broadcast(Snapshot{State: next, Reason: reason})
	return nil
}
