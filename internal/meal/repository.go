package meal

import (
	"context"
	"time"
)

// Repository persists meal records.
type Repository interface {
	// Insert stores r and returns the assigned ID.
	Insert(ctx context.Context, r *Record) (int64, error)

	// Delete removes a meal. Returns ErrMealNotFound if id is unknown.
	Delete(ctx context.Context, id int64) error

	// Get returns a meal by ID. Returns ErrMealNotFound if id is unknown.
	Get(ctx context.Context, id int64) (*Record, error)

	// ListAll returns every meal ordered by timestamp descending.
	ListAll(ctx context.Context) ([]*Record, error)

	// ListRecent returns the n most recent meals ordered by timestamp descending.
	ListRecent(ctx context.Context, n int) ([]*Record, error)

	// SumCalories sums calories of meals with start <= timestamp < end.
	// Returns nil when no meal in range carries a calorie value.
	SumCalories(ctx context.Context, start, end time.Time) (*int, error)
}
