package audio

import (
	"github.com/coldaine/coldvox-go/internal/ring"
)

// FrameSamples is the fixed frame size the rest of the pipeline
// (VAD, STT) consumes, regardless of the device's native sample rate.
const FrameSamples = 512

// TargetSampleRateHz is the sample rate all frames are resampled to
// before leaving FrameReader.
const TargetSampleRateHz = 16000

// FrameReader drains a ring.Buffer into fixed-size mono frames at
// TargetSampleRateHz, resampling with linear interpolation when the
// device's native rate differs.
type FrameReader struct {
	ring       *ring.Buffer
	deviceRate int

	// scratch holds samples read directly from the ring at the
	// device's native rate, sized so that after resampling it yields
	// at least FrameSamples.
	scratch []int16
	// carry holds resampled samples not yet consumed by a caller,
	// so ReadFrame can always return exactly FrameSamples.
	carry []int16

	// lastNative remembers the final native sample across reads so
	// linear interpolation has a left edge for the first output
	// sample of the next read.
	lastNative int16
	haveLast   bool
}

// NewFrameReader constructs a FrameReader pulling from buf, where buf
// carries mono samples at deviceRateHz.
func NewFrameReader(buf *ring.Buffer, deviceRateHz int) *FrameReader {
	scratchLen := FrameSamples
	if deviceRateHz != TargetSampleRateHz {
		scratchLen = FrameSamples*deviceRateHz/TargetSampleRateHz + 2
	}
	return &FrameReader{
		ring:       buf,
		deviceRate: deviceRateHz,
		scratch:    make([]int16, scratchLen),
	}
}

// ReadFrame fills dst (which must have length FrameSamples) with the
// next frame of mono 16 kHz PCM. It returns FrameSamples once a full
// frame is available, or 0 when the ring did not yet have enough data;
// in that case the samples gathered so far stay buffered and the
// caller should retry later rather than treat it as EOF.
func (r *FrameReader) ReadFrame(dst []int16) int {
	if len(dst) != FrameSamples {
		panic("audio: ReadFrame requires a buffer of length FrameSamples")
	}

	for len(r.carry) < FrameSamples {
		n := r.ring.Read(r.scratch)
		if n == 0 {
			break
		}
		resampled := r.resample(r.scratch[:n])
		r.carry = append(r.carry, resampled...)
	}
	if len(r.carry) < FrameSamples {
		return 0
	}

	n := copy(dst, r.carry)
	r.carry = r.carry[n:]
	return n
}

func (r *FrameReader) resample(native []int16) []int16 {
	if r.deviceRate == TargetSampleRateHz {
		return native
	}

	ratio := float64(r.deviceRate) / float64(TargetSampleRateHz)
	outLen := int(float64(len(native)) / ratio)
	if outLen <= 0 {
		return nil
	}

	out := make([]int16, outLen)
	for i := range out {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		var left, right int16
		switch {
		case idx == 0 && r.haveLast:
			left = r.lastNative
			if len(native) > 0 {
				right = native[0]
			}
		case idx < len(native):
			left = native[idx]
			if idx+1 < len(native) {
				right = native[idx+1]
			} else {
				right = left
			}
		default:
			left = native[len(native)-1]
			right = left
		}
		out[i] = int16(float64(left) + frac*float64(right-left))
	}

	if len(native) > 0 {
		r.lastNative = native[len(native)-1]
		r.haveLast = true
	}
	return out
}
