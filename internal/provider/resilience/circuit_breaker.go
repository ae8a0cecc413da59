// Package resilience wraps outbound provider calls with a circuit breaker,
// per-request timeouts and bounded retries.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker guarding a provider.
type BreakerConfig struct {
	// HalfOpenRequests is the number of probes allowed while half-open. Default 1.
	HalfOpenRequests uint32

	// OpenTimeout is how long the breaker stays open. Default 60s.
	OpenTimeout time.Duration

	// MinRequests and FailureRatio decide when the breaker trips.
	// Defaults: 5 requests at a 50% failure ratio.
	MinRequests  uint32
	FailureRatio float64

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker settings used for inference providers.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		HalfOpenRequests: 1,
		OpenTimeout:      60 * time.Second,
		MinRequests:      5,
		FailureRatio:     0.5,
	}
}

// TripAfter returns a ReadyToTrip function that opens the breaker once at
// least minRequests were seen and the failure ratio reaches ratio.
func TripAfter(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests == 0 || counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
	}
}

func newBreaker[T any](name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	defaults := DefaultBreakerConfig()
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = defaults.HalfOpenRequests
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaults.MinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = defaults.FailureRatio
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          name,
		MaxRequests:   cfg.HalfOpenRequests,
		Timeout:       cfg.OpenTimeout,
		ReadyToTrip:   TripAfter(cfg.MinRequests, cfg.FailureRatio),
		OnStateChange: cfg.OnStateChange,
	})
}
