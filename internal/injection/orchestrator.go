package injection

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/coldaine/coldvox-go/internal/config"
	"github.com/coldaine/coldvox-go/internal/errors"
)

// FocusResolver resolves the currently focused application's identity
// and editability, so the orchestrator can filter and order backends
// without depending on any one backend's own focus-tracking.
type FocusResolver interface {
	Resolve(ctx context.Context) (appIdentity string, status FocusStatus)
}

type cachedFocus struct {
	appIdentity string
	status      FocusStatus
	at          time.Time
}

// readinessPollInterval is how often acquireFocusReady re-polls the
// resolver while waiting for focus to settle on a known target.
const readinessPollInterval = 30 * time.Millisecond

// Orchestrator resolves focus, filters by allow/block list, computes a
// per-app backend order, and walks that order with a per-backend soft
// timeout inside a global deadline.
type Orchestrator struct {
	cfg      config.InjectionConfig
	backends []Backend
	resolver FocusResolver

	allow, block []*regexp.Regexp

	mu          sync.Mutex
	focusCache  *cachedFocus
	orderCache  map[string][]Backend
	unavailable map[BackendID]bool

	injectMu sync.Mutex // serializes Inject across sessions
}

// New builds an Orchestrator from the configured backend preference
// order (highest preference first).
func New(cfg config.InjectionConfig, resolver FocusResolver, backends ...Backend) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		backends:    backends,
		resolver:    resolver,
		allow:       compilePatterns(cfg.Allowlist),
		block:       compilePatterns(cfg.Blocklist),
		orderCache:  make(map[string][]Backend),
		unavailable: make(map[BackendID]bool),
	}
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}
	return compiled
}

// Inject resolves focus, applies filtering, and walks the fallback
// chain under the configured global budget, capped further by
// ctx's deadline if it is sooner.
func (o *Orchestrator) Inject(ctx context.Context, text string, sessionID uint64) (*Outcome, error) {
	o.injectMu.Lock()
	defer o.injectMu.Unlock()

	appIdentity, status := o.acquireFocusReady(ctx)

	if status == FocusUnknown && !o.cfg.InjectOnUnknownFocus {
		return nil, errors.New(errors.FocusUnknown, "focus is unknown and inject_on_unknown_focus is false")
	}
	if !o.passesFilter(appIdentity) {
		return nil, errors.New(errors.AppBlocked, "application blocked by allow/block filter")
	}

	deadline := time.Now().Add(o.cfg.MaxTotalLatency)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	budgetCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	injCtx := Context{SessionID: sessionID, AppIdentity: appIdentity, FocusStatus: status, Deadline: deadline}

	if o.cfg.PasteChunkChars > 0 {
		return o.injectChunked(budgetCtx, text, injCtx)
	}
	return o.injectOnce(budgetCtx, text, injCtx)
}

func (o *Orchestrator) injectChunked(ctx context.Context, text string, injCtx Context) (*Outcome, error) {
	chunks := chunkByRunes(text, o.cfg.PasteChunkChars)
	var last *Outcome
	for i, chunk := range chunks {
		outcome, err := o.injectOnce(ctx, chunk, injCtx)
		if err != nil {
			return nil, err
		}
		last = outcome
		if i < len(chunks)-1 && o.cfg.ChunkDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), errors.AllBackendsFailed, "injection budget exceeded mid-chunk")
			case <-time.After(o.cfg.ChunkDelay):
			}
		}
	}
	return last, nil
}

// chunkByRunes splits s into chunks of at most n runes, never
// producing a partial codepoint.
func chunkByRunes(s string, n int) []string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return []string{s}
	}
	chunks := make([]string, 0, (len(runes)+n-1)/n)
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

func (o *Orchestrator) injectOnce(ctx context.Context, text string, injCtx Context) (*Outcome, error) {
	order := o.methodOrder(ctx, injCtx.AppIdentity, injCtx.FocusStatus)
	retries := 0

	for _, backend := range order {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.AllBackendsFailed, "injection budget exceeded")
		}

		backendCtx, cancel := context.WithTimeout(ctx, o.cfg.PerBackendSoftTimeout)
		start := time.Now()
		err := backend.Inject(backendCtx, text, injCtx)
		cancel()

		if err == nil {
			return &Outcome{Backend: backend.Name(), LatencyMs: time.Since(start).Milliseconds(), Degraded: retries > 0}, nil
		}

		if f, ok := err.(*Failure); ok && f.Kind == FailurePermanent {
			o.markUnavailable(backend.Name())
		}
		retries++
	}

	return nil, errors.New(errors.AllBackendsFailed, "all injection backends exhausted")
}

func (o *Orchestrator) markUnavailable(id BackendID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unavailable[id] = true
	// Invalidate cached orders so the now-dead backend drops out of
	// future fallback chains instead of being retried every call.
	o.orderCache = make(map[string][]Backend)
}

// methodOrder returns the intersection of configured backend
// preference, current availability, and focus suitability, cached per
// app identity since it rarely changes between consecutive finals for
// the same application.
func (o *Orchestrator) methodOrder(ctx context.Context, appIdentity string, status FocusStatus) []Backend {
	o.mu.Lock()
	if cached, ok := o.orderCache[appIdentity]; ok {
		o.mu.Unlock()
		return cached
	}
	o.mu.Unlock()

	order := make([]Backend, 0, len(o.backends))
	for _, b := range o.backends {
		o.mu.Lock()
		blocked := o.unavailable[b.Name()]
		o.mu.Unlock()
		if blocked {
			continue
		}
		if !b.SupportsFocus(status) {
			continue
		}
		if !b.IsAvailable(ctx) {
			continue
		}
		order = append(order, b)
	}

	o.mu.Lock()
	o.orderCache[appIdentity] = order
	o.mu.Unlock()
	return order
}

// acquireFocusReady returns a cached focus result if still fresh,
// otherwise polls the resolver at readinessPollInterval until focus
// settles on a known target or FocusReadinessTimeout elapses — the
// "acquire focus readiness" step ahead of the per-backend fallback
// loop, distinct from and shorter than the overall injection budget.
func (o *Orchestrator) acquireFocusReady(ctx context.Context) (string, FocusStatus) {
	o.mu.Lock()
	if o.focusCache != nil && time.Since(o.focusCache.at) < o.cfg.FocusCacheTTL {
		identity, status := o.focusCache.appIdentity, o.focusCache.status
		o.mu.Unlock()
		return identity, status
	}
	o.mu.Unlock()

	deadline := time.Now().Add(o.cfg.FocusReadinessTimeout)
	var identity string
	var status FocusStatus
	for {
		identity, status = o.resolver.Resolve(ctx)
		if status != FocusUnknown || ctx.Err() != nil || !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(readinessPollInterval):
		}
	}

	o.mu.Lock()
	o.focusCache = &cachedFocus{appIdentity: identity, status: status, at: time.Now()}
	o.mu.Unlock()
	return identity, status
}

func (o *Orchestrator) passesFilter(appIdentity string) bool {
	for _, re := range o.block {
		if re.MatchString(appIdentity) {
			return false
		}
	}
	if len(o.allow) == 0 {
		return true
	}
	for _, re := range o.allow {
		if re.MatchString(appIdentity) {
			return true
		}
	}
	return false
}
