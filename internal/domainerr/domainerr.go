// Package domainerr defines the error kinds surfaced by the nutrition and fasting engine.
package domainerr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind string

const (
	// KindInvalidInput covers blank descriptions and non-positive body metrics.
	// It is always recoverable by the caller and never has side effects.
	KindInvalidInput Kind = "invalid_input"

	// KindAnalysisFailed covers inference transport errors, empty responses
	// and responses that fail schema validation.
	KindAnalysisFailed Kind = "analysis_failed"

	// KindPersistenceUnavailable covers storage I/O failures.
	KindPersistenceUnavailable Kind = "persistence_unavailable"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
	ErrAnalysisFailed         = &Error{Kind: KindAnalysisFailed}
	ErrPersistenceUnavailable = &Error{Kind: KindPersistenceUnavailable}
)

// Error is a structured domain failure: a kind, a human-readable detail and
// an optional underlying cause.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a domain error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidInput creates an InvalidInput error.
func InvalidInput(detail string) error {
	return &Error{Kind: KindInvalidInput, Detail: detail}
}

// AnalysisFailed creates an AnalysisFailed error wrapping cause.
func AnalysisFailed(detail string, cause error) error {
	return &Error{Kind: KindAnalysisFailed, Detail: detail, Err: cause}
}

// PersistenceUnavailable creates a PersistenceUnavailable error wrapping cause.
func PersistenceUnavailable(op string, cause error) error {
	return &Error{Kind: KindPersistenceUnavailable, Detail: op, Err: cause}
}

// KindOf returns the kind of err, or the empty kind if err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
