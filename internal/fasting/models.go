// Package fasting tracks intermittent-fasting sessions against a fixed
// physiological stage timeline.
package fasting

import (
	"errors"
	"time"
)

// Errors returned by the fasting package.
var (
	ErrSessionNotFound = errors.New("fasting session not found")
	ErrNotFasting      = errors.New("no active fasting session")
)

// OpenEnded is the target duration of a session without a goal.
const OpenEnded = 0

// DefaultTargetHours is the target offered when the caller asks for a goal
// without naming one.
const DefaultTargetHours = 16

// Session is a single fasting period. EndTime is nil while the session is active.
type Session struct {
	ID                  int64
	StartTime           time.Time
	EndTime             *time.Time
	TargetDurationHours int
}

// Active reports whether the session is still running.
func (s *Session) Active() bool {
	return s != nil && s.EndTime == nil
}

// HasTarget reports whether the session has a goal duration.
func (s *Session) HasTarget() bool {
	return s != nil && s.TargetDurationHours > OpenEnded
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cpy := *s
	if s.EndTime != nil {
		end := *s.EndTime
		cpy.EndTime = &end
	}
	return &cpy
}

// State is the tracker state.
type State string

// Tracker states.
const (
	StateIdle   State = "idle"
	StateActive State = "active"
)
