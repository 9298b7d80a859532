// Command record is a standalone diagnostic probe: it taps the audio
// pipeline the same way the STT path does, but writes the resampled
// 16 kHz mono stream straight to a WAV file instead of transcribing
// it, for verifying capture and resampling in isolation.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	coldvoxaudio "github.com/coldaine/coldvox-go/internal/audio"
	"github.com/coldaine/coldvox-go/internal/clock"
	"github.com/coldaine/coldvox-go/internal/config"
	"github.com/coldaine/coldvox-go/internal/ring"
	"github.com/coldaine/coldvox-go/internal/watchdog"
)

func main() {
	outPath := flag.String("out", "capture.wav", "output WAV file path")
	duration := flag.Duration("duration", 10*time.Second, "how long to record")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*outPath, *duration); err != nil {
		slog.Error("record probe failed", "error", err)
		os.Exit(1)
	}
}

func run(outPath string, duration time.Duration) error {
	cfg := config.DefaultAudioConfig()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := wav.NewEncoder(out, coldvoxaudio.TargetSampleRateHz, 16, 1, 1)
	defer enc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("record probe: interrupted")
		cancel()
	}()

	ringBuf := ring.New(cfg.RingCapacity)
	wd := watchdog.New(clock.NewReal(), cfg.WatchdogTimeout)
	go wd.Start()
	defer wd.Stop()

	capture, err := coldvoxaudio.New(ringBuf, wd, cfg.SampleRateHz, cfg.Channels)
	if err != nil {
		return err
	}
	defer capture.Close()

	go func() {
		if err := capture.Start(ctx); err != nil {
			slog.Warn("capture stopped", "error", err)
		}
	}()

	reader := coldvoxaudio.NewFrameReader(ringBuf, cfg.SampleRateHz)
	chunker := coldvoxaudio.NewChunker(reader, time.Now().UnixMilli())
	go chunker.Run(ctx)
	defer chunker.Stop()

	id, frames := chunker.Subscribe()
	defer chunker.Unsubscribe(id)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: coldvoxaudio.TargetSampleRateHz},
		SourceBitDepth: 16,
	}

	var samplesWritten int64
	for {
		select {
		case <-ctx.Done():
			slog.Info("record probe: done", "samples_written", samplesWritten, "out", outPath)
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			buf.Data = buf.Data[:0]
			for _, s := range f.Data {
				buf.Data = append(buf.Data, int(s))
			}
			if err := enc.Write(buf); err != nil {
				return err
			}
			samplesWritten += int64(len(f.Data))
		}
	}
}
