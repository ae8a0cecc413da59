package meal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository or SQLiteRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	meals  map[int64]*Record
	nextID int64
}

// NewInMemoryRepository creates a new in-memory meal repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		meals:  make(map[int64]*Record),
		nextID: 1,
	}
}

// Insert stores a meal.
func (r *InMemoryRepository) Insert(_ context.Context, rec *Record) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := rec.Clone()
	cpy.ID = r.nextID
	r.nextID++
	r.meals[cpy.ID] = cpy
	return cpy.ID, nil
}

// Delete removes a meal.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meals[id]; !ok {
		return ErrMealNotFound
	}
	delete(r.meals, id)
	return nil
}

// Get returns a meal by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meals[id]
	if !ok {
		return nil, ErrMealNotFound
	}
	return m.Clone(), nil
}

// ListAll returns every meal, newest first.
func (r *InMemoryRepository) ListAll(ctx context.Context) ([]*Record, error) {
	return r.ListRecent(ctx, 0)
}

// ListRecent returns the n newest meals. n <= 0 returns all.
func (r *InMemoryRepository) ListRecent(_ context.Context, n int) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, len(r.meals))
	for _, m := range r.meals {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// SumCalories sums calories within [start, end).
func (r *InMemoryRepository) SumCalories(_ context.Context, start, end time.Time) (*int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		total int
		found bool
	)
	for _, m := range r.meals {
		if m.Calories == nil || m.Timestamp.Before(start) || !m.Timestamp.Before(end) {
			continue
		}
		total += *m.Calories
		found = true
	}
	if !found {
		return nil, nil
	}
	return &total, nil
}
