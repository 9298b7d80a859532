package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// chunkerSubscriberBuffer is the default per-subscriber channel
// capacity. A subscriber slower than real time drops its oldest
// buffered frame rather than stalling the publisher.
const chunkerSubscriberBuffer = 64

// Frame is a timestamped, fixed-size block of mono 16 kHz PCM.
type Frame struct {
	Data        []int16
	TimestampMs int64
}

type chunkerSubscriber struct {
	ch  chan Frame
	lag atomic.Uint64
}

// Chunker owns a FrameReader exclusively, stamping each frame with an
// elapsed-time timestamp derived from the count of samples emitted so
// far, and fans it out to any number of subscribers without ever
// blocking on a slow one.
type Chunker struct {
	reader      *FrameReader
	startUnixMs int64

	mu             sync.Mutex
	subscribers    map[int]*chunkerSubscriber
	nextSubID      int
	samplesEmitted uint64

	stop chan struct{}
	done chan struct{}
}

// NewChunker constructs a Chunker reading from r, with frame
// timestamps measured relative to startUnixMs.
func NewChunker(r *FrameReader, startUnixMs int64) *Chunker {
	return &Chunker{
		reader:      r,
		startUnixMs: startUnixMs,
		subscribers: make(map[int]*chunkerSubscriber),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a new listener and returns a channel that
// receives every frame published from this point on.
func (c *Chunker) Subscribe() (id int, frames <-chan Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id = c.nextSubID
	c.nextSubID++
	sub := &chunkerSubscriber{ch: make(chan Frame, chunkerSubscriberBuffer)}
	c.subscribers[id] = sub
	return id, sub.ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (c *Chunker) Unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, ok := c.subscribers[id]; ok {
		close(sub.ch)
		delete(c.subscribers, id)
	}
}

// Lag reports how many frames have been dropped for a given
// subscriber due to slow consumption.
func (c *Chunker) Lag(id int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, ok := c.subscribers[id]; ok {
		return sub.lag.Load()
	}
	return 0
}

// Run drains frames from the FrameReader at the cadence implied by
// TargetSampleRateHz and publishes them until ctx is canceled or Stop
// is called. It is intended to run in its own goroutine.
func (c *Chunker) Run(ctx context.Context) {
	defer close(c.done)

	frameDuration := time.Duration(FrameSamples) * time.Second / TargetSampleRateHz
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	buf := make([]int16, FrameSamples)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			n := c.reader.ReadFrame(buf)
			if n == 0 {
				continue
			}
			c.publish(buf[:n])
		}
	}
}

func (c *Chunker) publish(samples []int16) {
	c.mu.Lock()
	emitted := c.samplesEmitted
	c.samplesEmitted += uint64(len(samples))
	c.mu.Unlock()

	frame := Frame{
		Data:        append([]int16(nil), samples...),
		TimestampMs: c.startUnixMs + int64(emitted)*1000/int64(TargetSampleRateHz),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subscribers {
		select {
		case sub.ch <- frame:
		default:
			// Drop the oldest buffered frame to make room, never
			// block the publisher for a lagging subscriber.
			select {
			case <-sub.ch:
				sub.lag.Add(1)
			default:
			}
			select {
			case sub.ch <- frame:
			default:
			}
		}
	}
}

// Stop halts Run and waits for it to return.
func (c *Chunker) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
}
