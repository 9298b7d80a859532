package stt

import (
	"context"
	"testing"
)

type fakePlugin struct {
	name      string
	available bool
}

func (f *fakePlugin) Info() Info { return Info{Name: f.name} }
func (f *fakePlugin) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakePlugin) Initialize(ctx context.Context, cfg Config) error { return nil }
func (f *fakePlugin) Begin(ctx context.Context, sessionID uint64) error { return nil }
func (f *fakePlugin) ProcessAudio(ctx context.Context, samples []int16) (*TranscriptionEvent, error) {
	return nil, nil
}
func (f *fakePlugin) Finalize(ctx context.Context) (*TranscriptionEvent, error) { return nil, nil }
func (f *fakePlugin) Reset(ctx context.Context) error { return nil }

func TestRegistryActivePrefersFirstAvailable(t *testing.T) {
	unavailable := &fakePlugin{name: "a", available: false}
	available := &fakePlugin{name: "b", available: true}
	r := NewRegistry(unavailable, available)

	active := r.Active(context.Background())
	if active == nil || active.Info().Name != "b" {
		t.Fatalf("Active() = %v, want plugin b", active)
	}
}

func TestRegistryActiveReturnsNilWhenNoneAvailable(t *testing.T) {
	r := NewRegistry(&fakePlugin{name: "a", available: false})
	if r.Active(context.Background()) != nil {
		t.Fatal("expected nil when no plugin is available")
	}
}

func TestRegistryByName(t *testing.T) {
	p := &fakePlugin{name: "target"}
	r := NewRegistry(&fakePlugin{name: "other"}, p)
	if r.ByName("target") != p {
		t.Fatal("ByName did not return the matching plugin")
	}
	if r.ByName("missing") != nil {
		t.Fatal("ByName should return nil for unknown names")
	}
}
