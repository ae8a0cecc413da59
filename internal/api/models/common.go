// Package models provides request and response models for the SmartDiet API.
package models

import (
	"strings"
	"time"
)

// timestampLayout keeps millisecond precision, which is the storage precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a time.Time serialised as RFC 3339 with milliseconds.
type Timestamp time.Time

// NewTimestamp returns a pointer to t as a Timestamp, or nil for nil input.
func NewTimestamp(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := Timestamp(*t)
	return &ts
}

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(timestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// HealthStatus represents the health status of a service.
type HealthStatus string

// Health status values.
const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// List wraps a collection response.
type List[T any] struct {
	Items []T `json:"items"`
}
