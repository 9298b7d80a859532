package audio

import (
	"testing"

	"github.com/coldaine/coldvox-go/internal/ring"
)

func TestFrameReaderPassthroughAtTargetRate(t *testing.T) {
	buf := ring.New(4096)
	samples := make([]int16, FrameSamples*2)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	buf.Write(samples)

	r := NewFrameReader(buf, TargetSampleRateHz)
	dst := make([]int16, FrameSamples)

	n := r.ReadFrame(dst)
	if n != FrameSamples {
		t.Fatalf("n = %d, want %d", n, FrameSamples)
	}
	for i := 0; i < FrameSamples; i++ {
		if dst[i] != samples[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], samples[i])
		}
	}
}

func TestFrameReaderShortReadWhenRingEmpty(t *testing.T) {
	buf := ring.New(4096)
	r := NewFrameReader(buf, TargetSampleRateHz)
	dst := make([]int16, FrameSamples)

	n := r.ReadFrame(dst)
	if n != 0 {
		t.Fatalf("n = %d, want 0 on empty ring", n)
	}
}

func TestFrameReaderResamplesDownToTargetRate(t *testing.T) {
	const deviceRate = 48000
	buf := ring.New(1 << 18)
	// Enough native samples to produce several output frames.
	samples := make([]int16, deviceRate)
	for i := range samples {
		samples[i] = int16(i % 500)
	}
	buf.Write(samples)

	r := NewFrameReader(buf, deviceRate)
	dst := make([]int16, FrameSamples)

	n := r.ReadFrame(dst)
	if n != FrameSamples {
		t.Fatalf("n = %d, want %d", n, FrameSamples)
	}
}
