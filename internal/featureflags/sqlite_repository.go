package featureflags

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// SQLiteRepository is a SQLite implementation of Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite feature flags repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves a single flag by key.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (*Flag, error) {
	var (
		f         Flag
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT key, enabled, updated_at FROM feature_flags WHERE key = ?`, key,
	).Scan(&f.Key, &f.Enabled, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFlagNotFound
		}
		return nil, domainerr.PersistenceUnavailable("get feature flag", err)
	}
	f.UpdatedAt = time.UnixMilli(updatedAt)
	return &f, nil
}

// All retrieves every stored flag.
func (r *SQLiteRepository) All(ctx context.Context) (map[string]*Flag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, enabled, updated_at FROM feature_flags ORDER BY key`)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("list feature flags", err)
	}
	defer rows.Close()

	flags := make(map[string]*Flag)
	for rows.Next() {
		var (
			f         Flag
			updatedAt int64
		)
		if err := rows.Scan(&f.Key, &f.Enabled, &updatedAt); err != nil {
			return nil, domainerr.PersistenceUnavailable("scan feature flag", err)
		}
		f.UpdatedAt = time.UnixMilli(updatedAt)
		flags[f.Key] = &f
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.PersistenceUnavailable("list feature flags", err)
	}
	return flags, nil
}

// Set creates or updates the given flags in one transaction.
func (r *SQLiteRepository) Set(ctx context.Context, flags ...*Flag) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domainerr.PersistenceUnavailable("begin feature flag update", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, f := range flags {
		_, err := tx.ExecContext(ctx, `
INSERT INTO feature_flags (key, enabled, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
			f.Key, f.Enabled, f.UpdatedAt.UnixMilli())
		if err != nil {
			return domainerr.PersistenceUnavailable("set feature flag", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domainerr.PersistenceUnavailable("commit feature flag update", err)
	}
	return nil
}

// Delete removes a flag by key.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feature_flags WHERE key = ?`, key); err != nil {
		return domainerr.PersistenceUnavailable("delete feature flag", err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
