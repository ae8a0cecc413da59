package fasting

import "context"

// Repository persists fasting sessions.
type Repository interface {
	// Upsert inserts s when s.ID is zero, assigning the new ID, and replaces
	// the stored session otherwise.
	Upsert(ctx context.Context, s *Session) error

	// Update replaces a stored session. Returns ErrSessionNotFound if s.ID is unknown.
	Update(ctx context.Context, s *Session) error

	// Latest returns the most recent session by start time.
	// Returns ErrSessionNotFound if no session was ever recorded.
	Latest(ctx context.Context) (*Session, error)

	// List returns up to limit sessions, most recent first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Session, error)
}
