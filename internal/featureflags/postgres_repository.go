package featureflags

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL feature flags repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a single flag by key.
func (r *PostgresRepository) Get(ctx context.Context, key string) (*Flag, error) {
	var f Flag
	err := r.pool.QueryRow(ctx,
		`SELECT key, enabled, updated_at FROM feature_flags WHERE key = $1`, key,
	).Scan(&f.Key, &f.Enabled, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlagNotFound
		}
		return nil, domainerr.PersistenceUnavailable("get feature flag", err)
	}
	return &f, nil
}

// All retrieves every stored flag.
func (r *PostgresRepository) All(ctx context.Context) (map[string]*Flag, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, enabled, updated_at FROM feature_flags ORDER BY key`)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("list feature flags", err)
	}
	defer rows.Close()

	flags := make(map[string]*Flag)
	for rows.Next() {
		var f Flag
		if err := rows.Scan(&f.Key, &f.Enabled, &f.UpdatedAt); err != nil {
			return nil, domainerr.PersistenceUnavailable("scan feature flag", err)
		}
		flags[f.Key] = &f
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.PersistenceUnavailable("list feature flags", err)
	}
	return flags, nil
}

// Set creates or updates the given flags in one transaction.
func (r *PostgresRepository) Set(ctx context.Context, flags ...*Flag) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domainerr.PersistenceUnavailable("begin feature flag update", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, f := range flags {
		_, err := tx.Exec(ctx, `
			INSERT INTO feature_flags (key, enabled, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET
				enabled = EXCLUDED.enabled,
				updated_at = EXCLUDED.updated_at`,
			f.Key, f.Enabled, f.UpdatedAt)
		if err != nil {
			return domainerr.PersistenceUnavailable("set feature flag", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domainerr.PersistenceUnavailable("commit feature flag update", err)
	}
	return nil
}

// Delete removes a flag by key.
func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM feature_flags WHERE key = $1`, key); err != nil {
		return domainerr.PersistenceUnavailable("delete feature flag", err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
