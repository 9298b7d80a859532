package stt

import "context"

// Registry holds every configured plugin and selects the first
// available one in preference order, mirroring the teacher's
// factory-composition style for wiring interchangeable processors.
type Registry struct {
	plugins []Plugin
}

// NewRegistry builds a Registry from plugins in preference order: the
// first plugin whose IsAvailable returns true is selected by Active.
func NewRegistry(plugins ...Plugin) *Registry {
	return &Registry{plugins: plugins}
}

// Active returns the highest-preference available plugin, or nil if
// none are available.
func (r *Registry) Active(ctx context.Context) Plugin {
	for _, p := range r.plugins {
		if p.IsAvailable(ctx) {
			return p
		}
	}
	return nil
}

// All returns every registered plugin, for diagnostics and shutdown.
func (r *Registry) All() []Plugin {
	return r.plugins
}

// ByName returns the plugin with the given Info().Name, or nil.
func (r *Registry) ByName(name string) Plugin {
	for _, p := range r.plugins {
		if p.Info().Name == name {
			return p
		}
	}
	return nil
}
