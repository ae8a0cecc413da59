package profile

import "context"

// Repository persists the single user profile.
type Repository interface {
	// Load returns the stored profile or ErrProfileNotFound.
	Load(ctx context.Context) (*UserProfile, error)

	// Save replaces the stored profile, creating it if needed.
	Save(ctx context.Context, p *UserProfile) error
}
