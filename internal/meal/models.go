// Package meal records eaten meals and their nutritional analysis.
package meal

import (
	"errors"
	"time"
)

// ErrMealNotFound is returned when a meal ID is unknown.
var ErrMealNotFound = errors.New("meal not found")

// DefaultRecentLimit is the number of meals considered "recent history".
const DefaultRecentLimit = 20

// Record is a single logged meal. Analysis fields are nil for meals saved
// without analysis. Records are immutable once stored, except for deletion.
type Record struct {
	ID          int64
	Description string
	Timestamp   time.Time
	ImagePath   *string
	Calories    *int
	Protein     *float64
	Carbs       *float64
	Fat         *float64
	Analysis    *string
}

// Analyzed reports whether the record carries nutritional values.
func (r *Record) Analyzed() bool {
	return r.Calories != nil
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cpy := *r
	cpy.ImagePath = clonePtr(r.ImagePath)
	cpy.Calories = clonePtr(r.Calories)
	cpy.Protein = clonePtr(r.Protein)
	cpy.Carbs = clonePtr(r.Carbs)
	cpy.Fat = clonePtr(r.Fat)
	cpy.Analysis = clonePtr(r.Analysis)
	return &cpy
}

// Analysis is the nutritional content of a meal as produced by the analyzer.
type Analysis struct {
	Description string
	Calories    int
	Protein     float64
	Carbs       float64
	Fat         float64
	Text        string
}

// DailySummary is the calorie budget of one local day.
type DailySummary struct {
	Date      time.Time
	Consumed  int
	Target    int
	Remaining int
	Progress  float64
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
