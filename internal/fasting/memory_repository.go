package fasting

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository or SQLiteRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	nextID   int64
}

// NewInMemoryRepository creates a new in-memory fasting repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[int64]*Session),
		nextID:   1,
	}
}

// Upsert inserts or replaces a session.
func (r *InMemoryRepository) Upsert(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	} else if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}

	r.sessions[s.ID] = s.Clone()
	return nil
}

// Update replaces an existing session.
func (r *InMemoryRepository) Update(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}

	r.sessions[s.ID] = s.Clone()
	return nil
}

// Latest returns the most recent session.
func (r *InMemoryRepository) Latest(_ context.Context) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked()
	if len(sorted) == 0 {
		return nil, ErrSessionNotFound
	}
	return sorted[0].Clone(), nil
}

// List returns sessions, most recent first.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]*Session, len(sorted))
	for i, s := range sorted {
		out[i] = s.Clone()
	}
	return out, nil
}

func (r *InMemoryRepository) sortedLocked() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}
