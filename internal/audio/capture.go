// Package audio owns the OS audio input stream, the frame reader that
// drains it into fixed-size mono frames, and the chunker that
// timestamps and broadcasts those frames to the rest of the pipeline.
package audio

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/coldaine/coldvox-go/internal/errors"
	"github.com/coldaine/coldvox-go/internal/resilience"
	"github.com/coldaine/coldvox-go/internal/ring"
	"github.com/coldaine/coldvox-go/internal/watchdog"
)

// Stats exposes lock-free capture counters for observability.
type Stats struct {
	FramesRead       atomic.Uint64
	SamplesCaptured  atomic.Uint64
	Drops            atomic.Uint64
	LastCallbackUnix atomic.Int64
}

// Capture owns a single microphone input device and feeds its samples
// into a ring buffer, converting to mono 16-bit PCM and feeding the
// watchdog on every callback.
type Capture struct {
	ctx      *malgo.AllocatedContext
	device   *malgo.Device
	ring     *ring.Buffer
	watchdog *watchdog.Watchdog
	breaker  *resilience.Breaker

	sampleRateHz uint32
	channels     uint32

	Stats Stats

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// New allocates a Capture targeting the default input device at the
// given sample rate and channel count, writing into ringBuf and
// feeding wd on every device callback.
func New(ringBuf *ring.Buffer, wd *watchdog.Watchdog, sampleRateHz, channels int) (*Capture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.DeviceUnavailable, "initialize audio context")
	}
	return &Capture{
		ctx:          ctx,
		ring:         ringBuf,
		watchdog:     wd,
		breaker:      resilience.New(resilience.DefaultConfig()),
		sampleRateHz: uint32(sampleRateHz),
		channels:     uint32(channels),
		stopCh:       make(chan struct{}),
	}, nil
}

// Start opens the default capture device and begins streaming. On
// device loss it retries with exponential backoff under the
// resilience breaker; repeated failure is reported to the caller as
// DeviceUnavailable so the StateManager can move to Recovering.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()

	return resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() error {
		return c.breaker.Execute(func() error {
			return c.openAndRun(ctx)
		})
	})
}

func (c *Capture) openAndRun(ctx context.Context) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = c.channels
	deviceConfig.SampleRate = c.sampleRateHz

	lost := make(chan struct{}, 1)
	restoreStderr := suppressNativeWarnings()
	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: c.onData,
		Stop: func() {
			select {
			case lost <- struct{}{}:
			default:
			}
		},
	})
	restoreStderr()
	if err != nil {
		return errors.Wrap(err, errors.DeviceUnavailable, "open capture device")
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return errors.Wrap(err, errors.DeviceUnavailable, "start capture device")
	}

	c.mu.Lock()
	c.device = device
	c.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-c.stopCh:
	case <-lost:
		device.Uninit()
		return errors.New(errors.DeviceUnavailable, "capture device stopped unexpectedly")
	}
	device.Stop()
	device.Uninit()
	return nil
}

func (c *Capture) onData(_, pSamples []byte, _ uint32) {
	c.watchdog.Feed()
	c.Stats.LastCallbackUnix.Store(time.Now().UnixNano())

	samples := bytesToInt16(pSamples)
	if len(samples) == 0 {
		return
	}

	mono := downmixToMono(samples, int(c.channels))
	c.Stats.FramesRead.Add(1)
	c.Stats.SamplesCaptured.Add(uint64(len(mono)))

	written := c.ring.Write(mono)
	if dropped := len(mono) - written; dropped > 0 {
		c.Stats.Drops.Add(uint64(dropped))
		slog.Debug("capture ring full, dropping samples", "dropped", dropped)
	}
}

// Stop halts capture. Safe to call once Start's context has already
// been canceled.
func (c *Capture) Stop() {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
}

// Close releases the underlying audio context.
func (c *Capture) Close() error {
	c.ctx.Free()
	return nil
}

const int16ByteSize = 2

func bytesToInt16(b []byte) []int16 {
	if len(b)%int16ByteSize != 0 {
		return nil
	}
	samples := make([]int16, len(b)/int16ByteSize)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*int16ByteSize:]))
	}
	return samples
}

// downmixToMono averages interleaved channels, saturating is
// unnecessary here since the sum of two int16 samples divided by
// channel count cannot overflow int16 range.
func downmixToMono(interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]int16, frames)
	for f := 0; f < frames; f++ {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(interleaved[f*channels+ch])
		}
		mono[f] = int16(sum / int32(channels))
	}
	return mono
}
