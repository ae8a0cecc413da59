// Package worker runs the SmartDiet background jobs.
package worker

import (
	"time"
)

// WatchConfig holds configuration for the fasting stage watcher.
type WatchConfig struct {
	// Interval between checks.
	// Default: 1 minute
	Interval time.Duration

	// CheckTimeout bounds a single check including notification delivery.
	// Default: 15 seconds
	CheckTimeout time.Duration
}

// DefaultWatchConfig returns the default watcher configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Interval:     time.Minute,
		CheckTimeout: 15 * time.Second,
	}
}

func (c WatchConfig) withDefaults() WatchConfig {
	def := DefaultWatchConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = def.CheckTimeout
	}
	return c
}
