// Command coldvox runs the full voice-to-text pipeline: microphone
// capture, voice-activity detection, push-to-talk hotkey, speech-to-text,
// and text injection into the focused application.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/coldaine/coldvox-go/internal/audio"
	"github.com/coldaine/coldvox-go/internal/clock"
	"github.com/coldaine/coldvox-go/internal/config"
	"github.com/coldaine/coldvox-go/internal/hotkey"
	"github.com/coldaine/coldvox-go/internal/injection"
	"github.com/coldaine/coldvox-go/internal/injection/backends/atspi"
	"github.com/coldaine/coldvox-go/internal/injection/backends/clipboardpaste"
	"github.com/coldaine/coldvox-go/internal/injection/backends/keysynth"
	injectnoop "github.com/coldaine/coldvox-go/internal/injection/backends/noop"
	"github.com/coldaine/coldvox-go/internal/ring"
	"github.com/coldaine/coldvox-go/internal/session"
	"github.com/coldaine/coldvox-go/internal/shutdown"
	"github.com/coldaine/coldvox-go/internal/state"
	"github.com/coldaine/coldvox-go/internal/stt"
	sttnoop "github.com/coldaine/coldvox-go/internal/stt/plugins/noop"
	"github.com/coldaine/coldvox-go/internal/stt/plugins/parakeetonnx"
	"github.com/coldaine/coldvox-go/internal/stt/plugins/remotegrpc"
	"github.com/coldaine/coldvox-go/internal/stt/plugins/whispercpp"
	"github.com/coldaine/coldvox-go/internal/vad"
	"github.com/coldaine/coldvox-go/internal/watchdog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	sh := shutdown.New()
	sh.Install()
	defer sh.RecoverAndShutdown()

	ctx, cancel := sh.Context(context.Background())
	defer cancel()

	cfg := config.Default()
	states := state.New()

	if err := run(ctx, cfg, states, sh); err != nil {
		slog.Error("coldvox exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, states *state.Manager, sh *shutdown.Handler) error {
	ringBuf := ring.New(cfg.Audio.RingCapacity)
	wd := watchdog.New(clock.NewReal(), cfg.Audio.WatchdogTimeout)
	go wd.Start()
	defer wd.Stop()

	capture, err := audio.New(ringBuf, wd, cfg.Audio.SampleRateHz, cfg.Audio.Channels)
	if err != nil {
		return err
	}
	defer capture.Close()

	go func() {
		if err := capture.Start(ctx); err != nil {
			slog.Error("audio capture stopped", "error", err)
			_ = states.Transition(state.Recovering, "capture: "+err.Error())
		}
	}()

	reader := audio.NewFrameReader(ringBuf, cfg.Audio.SampleRateHz)
	chunker := audio.NewChunker(reader, time.Now().UnixMilli())
	go chunker.Run(ctx)
	defer chunker.Stop()

	vadSubID, vadFrames := chunker.Subscribe()
	defer chunker.Unsubscribe(vadSubID)

	sttSubID, sttFrames := chunker.Subscribe()
	defer chunker.Unsubscribe(sttSubID)

	var vadModelData []byte
	if modelPath := os.Getenv("COLDVOX_SILERO_MODEL"); modelPath != "" {
		data, err := os.ReadFile(modelPath)
		if err != nil {
			return err
		}
		vadModelData = data
	}
	pipeline, err := vad.NewPipeline(cfg.Vad, vadModelData)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	vadEvents := make(chan vad.Event, 8)
	go runVad(ctx, pipeline, vadFrames, vadEvents)

	hk := hotkey.New(cfg.Hotkey)
	go func() {
		if err := hk.Run(ctx); err != nil {
			slog.Warn("hotkey listener stopped", "error", err)
		}
	}()

	registry := sttRegistry(cfg)
	for _, p := range registry.All() {
		if err := p.Initialize(ctx, stt.Config{SampleRateHz: cfg.Audio.SampleRateHz}); err != nil {
			slog.Warn("stt plugin initialize failed, continuing with reduced capability", "plugin", p.Info().Name, "error", err)
		}
	}
	plugin := registry.Active(ctx)
	if plugin == nil {
		plugin = sttnoop.New()
	}

	controller := session.New(cfg.Session.ActivationMode, plugin)
	go controller.Run(ctx, vadEvents, hk.Events(), sttFrames)

	orch := buildOrchestrator(cfg)
	go injectTranscripts(ctx, orch, controller.Transcripts())

	if err := states.Transition(state.Running, ""); err != nil {
		return err
	}

	<-ctx.Done()
	_ = states.Transition(state.Stopping, "")
	_ = states.Transition(state.Stopped, "")
	return nil
}

// runVad feeds each broadcast frame through the hysteresis pipeline
// and forwards any resulting SpeechStart/SpeechEnd onward.
func runVad(ctx context.Context, pipeline *vad.Hysteresis, frames <-chan audio.Frame, out chan<- vad.Event) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			event, err := pipeline.Process(f.Data)
			if err != nil {
				slog.Warn("vad: process failed", "error", err)
				continue
			}
			if event == nil {
				continue
			}
			select {
			case out <- *event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func sttRegistry(cfg config.Config) *stt.Registry {
	plugins := []stt.Plugin{}
	if addr := os.Getenv("COLDVOX_REMOTE_STT_ADDR"); addr != "" {
		plugins = append(plugins, remotegrpc.New(addr))
	}
	if modelPath := os.Getenv("COLDVOX_WHISPER_MODEL"); modelPath != "" {
		plugins = append(plugins, whispercpp.New(modelPath, "en"))
	}
	if modelPath := os.Getenv("COLDVOX_PARAKEET_MODEL"); modelPath != "" {
		plugins = append(plugins, parakeetonnx.New(modelPath, nil))
	}
	plugins = append(plugins, sttnoop.New())
	return stt.NewRegistry(plugins...)
}

func buildOrchestrator(cfg config.Config) *injection.Orchestrator {
	atspiBackend := atspi.New()
	backends := []injection.Backend{
		atspiBackend,
		clipboardpaste.New(cfg.Injection.RestoreClipboard),
		keysynth.New(),
		injectnoop.New(),
	}
	return injection.New(cfg.Injection, atspiBackend, backends...)
}

func injectTranscripts(ctx context.Context, orch *injection.Orchestrator, transcripts <-chan stt.TranscriptionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-transcripts:
			if !ok {
				return
			}
			if event.Kind != stt.Final || event.Text == "" {
				continue
			}
			if _, err := orch.Inject(ctx, event.Text, event.SessionID); err != nil {
				slog.Warn("injection failed", "session_id", event.SessionID, "error", err)
			}
		}
	}
}
