// Package analysis produces AI-assisted nutritional feedback for a meal.
//
// The Orchestrator owns prompt construction and strict validation of the
// structured response; transport is delegated to a Generator.
package analysis

import (
	"context"
	"errors"

	"github.com/smartdiet/smartdiet/internal/meal"
)

// ErrAnalysisInProgress is returned when Analyze is called while another
// request of the same orchestrator is still in flight.
var ErrAnalysisInProgress = errors.New("a meal analysis is already in progress")

// Result is a validated analysis response.
type Result struct {
	Description string
	Calories    int
	Protein     float64
	Carbs       float64
	Fat         float64
	Analysis    string
}

// Meal converts r into the meal package representation used for saving.
func (r *Result) Meal() meal.Analysis {
	return meal.Analysis{
		Description: r.Description,
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		Fat:         r.Fat,
		Text:        r.Analysis,
	}
}

// Generator issues a single structured inference request and returns the raw
// response text.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, schema *Schema) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	return f(ctx, prompt, schema)
}

// LocaleProvider exposes the display language the analysis text must be written in.
type LocaleProvider interface {
	DisplayLanguage() string
}

// Switch reports whether meal analysis has been turned off.
type Switch interface {
	IsMealAnalysisDisabled(ctx context.Context) bool
}
