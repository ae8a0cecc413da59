// Package profile manages the single user profile and its derived energy targets.
package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/smartdiet/smartdiet/internal/bodymetrics"
)

// ErrProfileNotFound is returned when no profile has been saved yet.
var ErrProfileNotFound = errors.New("profile not found")

// UserProfile is the singleton profile record. BMI and CalorieTarget are
// derived from the body measurements and are never edited directly.
type UserProfile struct {
	Nickname         string
	WeightKg         float64
	HeightCm         float64
	Age              int
	Gender           bodymetrics.Gender
	Activity         bodymetrics.ActivityLevel
	BMI              float64
	CalorieTarget    int
	HealthConditions []string
	UpdatedAt        time.Time
}

// Metrics returns the body-metric input of the profile.
func (p *UserProfile) Metrics() bodymetrics.Input {
	return bodymetrics.Input{
		WeightKg: p.WeightKg,
		HeightCm: p.HeightCm,
		Age:      p.Age,
		Gender:   p.Gender,
		Activity: p.Activity,
	}
}

// Clone returns a deep copy of p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cpy := *p
	cpy.HealthConditions = append([]string(nil), p.HealthConditions...)
	return &cpy
}

// Input is the editable part of a profile.
type Input struct {
	Nickname         string
	WeightKg         float64
	HeightCm         float64
	Age              int
	Gender           string
	ActivityFactor   float64
	HealthConditions []string
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field of an Input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid profile: " + strings.Join(msgs, "; ")
}
