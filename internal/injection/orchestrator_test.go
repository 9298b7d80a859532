package injection

import (
	"context"
	"testing"
	"time"

	"github.com/coldaine/coldvox-go/internal/config"
)

type fakeBackend struct {
	name      BackendID
	available bool
	fail      *Failure
	calls     []string
}

func (f *fakeBackend) Name() BackendID                      { return f.name }
func (f *fakeBackend) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakeBackend) SupportsFocus(status FocusStatus) bool { return true }
func (f *fakeBackend) Inject(ctx context.Context, text string, injCtx Context) error {
	f.calls = append(f.calls, text)
	if f.fail != nil {
		return f.fail
	}
	return nil
}
func (f *fakeBackend) Metrics() Metrics { return Metrics{} }

type fakeResolver struct {
	identity string
	status   FocusStatus
}

func (r fakeResolver) Resolve(ctx context.Context) (string, FocusStatus) { return r.identity, r.status }

func testCfg() config.InjectionConfig {
	cfg := config.DefaultInjectionConfig()
	cfg.InjectOnUnknownFocus = true
	return cfg
}

func TestOrchestratorFallsBackOnTransientFailure(t *testing.T) {
	failing := &fakeBackend{name: BackendKeySynth, available: true, fail: &Failure{Kind: FailureTransient, Message: "boom"}}
	working := &fakeBackend{name: BackendNoOp, available: true}

	o := New(testCfg(), fakeResolver{identity: "app", status: FocusEditableText}, failing, working)

	outcome, err := o.Inject(context.Background(), "hello", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Backend != BackendNoOp {
		t.Fatalf("want fallback to noop, got %v", outcome.Backend)
	}
	if len(failing.calls) != 1 || len(working.calls) != 1 {
		t.Fatalf("expected both backends tried once, got %v %v", failing.calls, working.calls)
	}
}

func TestOrchestratorPermanentFailureDisablesBackendForFutureCalls(t *testing.T) {
	failing := &fakeBackend{name: BackendKeySynth, available: true, fail: &Failure{Kind: FailurePermanent, Message: "gone"}}
	working := &fakeBackend{name: BackendNoOp, available: true}

	o := New(testCfg(), fakeResolver{identity: "app", status: FocusEditableText}, failing, working)

	if _, err := o.Inject(context.Background(), "hello", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := o.Inject(context.Background(), "world", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failing.calls) != 1 {
		t.Fatalf("want permanently-failed backend tried exactly once across calls, got %d", len(failing.calls))
	}
	if len(working.calls) != 2 {
		t.Fatalf("want working backend tried on every call, got %d", len(working.calls))
	}
}

func TestOrchestratorAllBackendsFailedReturnsError(t *testing.T) {
	failing := &fakeBackend{name: BackendKeySynth, available: true, fail: &Failure{Kind: FailureTransient, Message: "boom"}}

	o := New(testCfg(), fakeResolver{identity: "app", status: FocusEditableText}, failing)

	if _, err := o.Inject(context.Background(), "hello", 1); err == nil {
		t.Fatal("want error when all backends exhausted")
	}
}

func TestOrchestratorBlocklistRejectsApp(t *testing.T) {
	working := &fakeBackend{name: BackendNoOp, available: true}
	cfg := testCfg()
	cfg.Blocklist = []string{"^blocked-app$"}

	o := New(cfg, fakeResolver{identity: "blocked-app", status: FocusEditableText}, working)

	if _, err := o.Inject(context.Background(), "hello", 1); err == nil {
		t.Fatal("want error for blocklisted app")
	}
	if len(working.calls) != 0 {
		t.Fatalf("backend should not be called for blocked app, got %d calls", len(working.calls))
	}
}

func TestOrchestratorAllowlistRequiresMatch(t *testing.T) {
	working := &fakeBackend{name: BackendNoOp, available: true}
	cfg := testCfg()
	cfg.Allowlist = []string{"^allowed-app$"}

	o := New(cfg, fakeResolver{identity: "other-app", status: FocusEditableText}, working)

	if _, err := o.Inject(context.Background(), "hello", 1); err == nil {
		t.Fatal("want error for app not on allowlist")
	}
}

func TestOrchestratorUnknownFocusRejectedByDefault(t *testing.T) {
	working := &fakeBackend{name: BackendNoOp, available: true}
	cfg := config.DefaultInjectionConfig() // InjectOnUnknownFocus: false

	o := New(cfg, fakeResolver{identity: "app", status: FocusUnknown}, working)

	if _, err := o.Inject(context.Background(), "hello", 1); err == nil {
		t.Fatal("want error when focus unknown and InjectOnUnknownFocus is false")
	}
}

func TestOrchestratorChunksLongText(t *testing.T) {
	working := &fakeBackend{name: BackendNoOp, available: true}
	cfg := testCfg()
	cfg.PasteChunkChars = 3
	cfg.ChunkDelay = time.Millisecond

	o := New(cfg, fakeResolver{identity: "app", status: FocusEditableText}, working)

	if _, err := o.Inject(context.Background(), "hello!", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(working.calls) != 2 {
		t.Fatalf("want 2 chunks of 3 runes, got %d: %v", len(working.calls), working.calls)
	}
	if working.calls[0] != "hel" || working.calls[1] != "lo!" {
		t.Fatalf("unexpected chunk split: %v", working.calls)
	}
}

func TestChunkByRunesNeverSplitsCodepoints(t *testing.T) {
	chunks := chunkByRunes("aébèc", 2)
	for _, c := range chunks {
		for _, r := range c {
			if r == '�' {
				t.Fatalf("chunk contains replacement rune, codepoint was split: %q", c)
			}
		}
	}
	joined := ""
	for _, c := range chunks {
		joined += c
	}
	if joined != "aébèc" {
		t.Fatalf("chunks do not reassemble to original: %q", joined)
	}
}
