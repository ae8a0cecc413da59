package profile

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository or SQLiteRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	profile *UserProfile
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Load returns the stored profile.
func (r *InMemoryRepository) Load(_ context.Context) (*UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.profile == nil {
		return nil, ErrProfileNotFound
	}
	return r.profile.Clone(), nil
}

// Save replaces the stored profile.
func (r *InMemoryRepository) Save(_ context.Context, p *UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile = p.Clone()
	return nil
}
