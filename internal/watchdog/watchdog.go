// Package watchdog detects a stalled audio capture callback and raises
// a recovery signal for the pipeline to act on.
package watchdog

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coldaine/coldvox-go/internal/clock"
)

const pollInterval = time.Second

// Watchdog observes a Feed stream and flags a stall once no feed
// arrives within Timeout.
type Watchdog struct {
	clock   clock.Clock
	timeout time.Duration

	mu        sync.Mutex
	lastFeed  time.Time
	triggered atomic.Bool

	stop chan struct{}
	done chan struct{}
}

// New creates a Watchdog with the given timeout, driven by clk.
func New(clk clock.Clock, timeout time.Duration) *Watchdog {
	return &Watchdog{
		clock:    clk,
		timeout:  timeout,
		lastFeed: clk.Now(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Feed records that capture is alive and clears any triggered state.
func (w *Watchdog) Feed() {
	w.mu.Lock()
	w.lastFeed = w.clock.Now()
	w.mu.Unlock()
	w.triggered.Store(false)
}

// IsTriggered reports whether the watchdog currently believes capture
// has stalled.
func (w *Watchdog) IsTriggered() bool {
	return w.triggered.Load()
}

// Start runs the 1 Hz supervisor loop until Stop is called. Intended
// to run in its own goroutine.
func (w *Watchdog) Start() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		default:
		}
		w.clock.Sleep(pollInterval)
		w.check()
	}
}

func (w *Watchdog) check() {
	w.mu.Lock()
	elapsed := w.clock.Now().Sub(w.lastFeed)
	w.mu.Unlock()

	if elapsed > w.timeout && w.triggered.CompareAndSwap(false, true) {
		slog.Warn("watchdog triggered: capture stalled", "elapsed", elapsed, "timeout", w.timeout)
	}
}

// Stop signals the supervisor loop to exit after its current poll and
// returns without waiting for it. Safe to call more than once, and
// safe to call when Start was never run (tests that drive Check
// manually instead).
func (w *Watchdog) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

// Check runs one supervisor pass synchronously, for tests driving a
// virtual clock without the background goroutine.
func (w *Watchdog) Check() {
	w.check()
}
