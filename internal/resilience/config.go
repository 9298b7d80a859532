package resilience

import "time"

// Circuit breaker configuration constants.
const (
	// Default configuration.
	DefaultThreshold         = 5
	DefaultResetTimeout      = 30 * time.Second
	DefaultMaxBackoff        = 5 * time.Minute
	DefaultFailureWindow     = time.Minute
	DefaultHalfOpenSuccesses = 3

	// Fast configuration (aggressive, for critical paths like focus probes).
	FastThreshold         = 3
	FastResetTimeout      = 10 * time.Second
	FastMaxBackoff        = time.Minute
	FastFailureWindow     = 15 * time.Second
	FastHalfOpenSuccesses = 2

	// Slow configuration (lenient, for less critical paths like a remote STT plugin).
	SlowThreshold         = 10
	SlowResetTimeout      = 60 * time.Second
	SlowMaxBackoff        = 10 * time.Minute
	SlowFailureWindow     = 5 * time.Minute
	SlowHalfOpenSuccesses = 5
)

// Config holds circuit breaker settings. Failures are counted within a
// sliding FailureWindow; repeated trips back off ResetTimeout
// exponentially up to MaxBackoff.
type Config struct {
	Threshold         int           // failures within FailureWindow before opening
	ResetTimeout      time.Duration // base wait before first half-open attempt
	MaxBackoff        time.Duration // ceiling on exponential backoff across repeated trips
	FailureWindow     time.Duration // sliding window used to count failures
	HalfOpenSuccesses int           // successes needed in half-open to close
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:         DefaultThreshold,
		ResetTimeout:      DefaultResetTimeout,
		MaxBackoff:        DefaultMaxBackoff,
		FailureWindow:     DefaultFailureWindow,
		HalfOpenSuccesses: DefaultHalfOpenSuccesses,
	}
}

// FastConfig returns aggressive settings for critical paths.
func FastConfig() Config {
	return Config{
		Threshold:         FastThreshold,
		ResetTimeout:      FastResetTimeout,
		MaxBackoff:        FastMaxBackoff,
		FailureWindow:     FastFailureWindow,
		HalfOpenSuccesses: FastHalfOpenSuccesses,
	}
}

// SlowConfig returns lenient settings for less critical paths.
func SlowConfig() Config {
	return Config{
		Threshold:         SlowThreshold,
		ResetTimeout:      SlowResetTimeout,
		MaxBackoff:        SlowMaxBackoff,
		FailureWindow:     SlowFailureWindow,
		HalfOpenSuccesses: SlowHalfOpenSuccesses,
	}
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = DefaultResetTimeout
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.FailureWindow <= 0 {
		c.FailureWindow = DefaultFailureWindow
	}
	if c.HalfOpenSuccesses <= 0 {
		c.HalfOpenSuccesses = DefaultHalfOpenSuccesses
	}
	return c
}
