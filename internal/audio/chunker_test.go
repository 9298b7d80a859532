package audio

import (
	"context"
	"testing"
	"time"

	"github.com/coldaine/coldvox-go/internal/ring"
)

func TestChunkerPublishesTimestampedFrames(t *testing.T) {
	buf := ring.New(1 << 16)
	samples := make([]int16, FrameSamples*4)
	buf.Write(samples)

	reader := NewFrameReader(buf, TargetSampleRateHz)
	c := NewChunker(reader, 1000)
	_, frames := c.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go c.Run(ctx)

	select {
	case f := <-frames:
		if len(f.Data) != FrameSamples {
			t.Fatalf("len(f.Data) = %d, want %d", len(f.Data), FrameSamples)
		}
		if f.TimestampMs != 1000 {
			t.Fatalf("first frame TimestampMs = %d, want 1000", f.TimestampMs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first frame")
	}

	c.Stop()
}

func TestChunkerDropsOldestOnLaggingSubscriber(t *testing.T) {
	buf := ring.New(1 << 20)
	// Enough frames to overflow the subscriber buffer several times over.
	samples := make([]int16, FrameSamples*(chunkerSubscriberBuffer*3))
	buf.Write(samples)

	reader := NewFrameReader(buf, TargetSampleRateHz)
	c := NewChunker(reader, 0)
	id, _ := c.Subscribe()

	// Publish directly, bypassing the ticker, to avoid a slow test.
	dst := make([]int16, FrameSamples)
	for i := 0; i < chunkerSubscriberBuffer*3; i++ {
		n := reader.ReadFrame(dst)
		if n == 0 {
			break
		}
		c.publish(dst[:n])
	}

	if c.Lag(id) == 0 {
		t.Fatal("expected a nonzero lag count for an unread subscriber")
	}
}
