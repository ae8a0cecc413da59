package featureflags

import "context"

// Repository defines the interface for feature flag storage.
type Repository interface {
	// Get retrieves a single flag by key.
	Get(ctx context.Context, key string) (*Flag, error)

	// All retrieves every stored flag.
	All(ctx context.Context) (map[string]*Flag, error)

	// Set creates or updates the given flags atomically.
	Set(ctx context.Context, flags ...*Flag) error

	// Delete removes a flag by key.
	Delete(ctx context.Context, key string) error
}
