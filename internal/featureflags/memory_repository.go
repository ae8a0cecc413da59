package featureflags

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for testing.
type InMemoryRepository struct {
	mu    sync.RWMutex
	flags map[string]Flag
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{flags: make(map[string]Flag)}
}

// Get retrieves a single flag by key.
func (r *InMemoryRepository) Get(_ context.Context, key string) (*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flags[key]
	if !ok {
		return nil, ErrFlagNotFound
	}
	return &f, nil
}

// All retrieves every stored flag.
func (r *InMemoryRepository) All(_ context.Context) (map[string]*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Flag, len(r.flags))
	for k, f := range r.flags {
		out[k] = &f
	}
	return out, nil
}

// Set creates or updates the given flags.
func (r *InMemoryRepository) Set(_ context.Context, flags ...*Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range flags {
		r.flags[f.Key] = *f
	}
	return nil
}

// Delete removes a flag by key.
func (r *InMemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flags, key)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
