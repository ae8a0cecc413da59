package fasting

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL fasting repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts or replaces a session.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Session) error {
	if s.ID == 0 {
		query := `
			INSERT INTO fasting_sessions (start_time, end_time, target_duration_hours)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		err := r.pool.QueryRow(ctx, query,
			s.StartTime.UnixMilli(), endMillis(s.EndTime), s.TargetDurationHours,
		).Scan(&s.ID)
		if err != nil {
			return domainerr.PersistenceUnavailable("insert fasting session", err)
		}
		return nil
	}

	query := `
		INSERT INTO fasting_sessions (id, start_time, end_time, target_duration_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			target_duration_hours = EXCLUDED.target_duration_hours
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.StartTime.UnixMilli(), endMillis(s.EndTime), s.TargetDurationHours,
	)
	if err != nil {
		return domainerr.PersistenceUnavailable("upsert fasting session", err)
	}
	return nil
}

// Update replaces an existing session.
func (r *PostgresRepository) Update(ctx context.Context, s *Session) error {
	query := `
		UPDATE fasting_sessions
		SET start_time = $2, end_time = $3, target_duration_hours = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		s.ID, s.StartTime.UnixMilli(), endMillis(s.EndTime), s.TargetDurationHours,
	)
	if err != nil {
		return domainerr.PersistenceUnavailable("update fasting session", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Latest returns the most recent session.
func (r *PostgresRepository) Latest(ctx context.Context) (*Session, error) {
	query := `
		SELECT id, start_time, end_time, target_duration_hours
		FROM fasting_sessions
		ORDER BY start_time DESC, id DESC
		LIMIT 1
	`

	var (
		s     Session
		start int64
		end   *int64
	)
	err := r.pool.QueryRow(ctx, query).Scan(&s.ID, &start, &end, &s.TargetDurationHours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, domainerr.PersistenceUnavailable("load latest fasting session", err)
	}

	s.StartTime = time.UnixMilli(start)
	s.EndTime = fromMillis(end)
	return &s, nil
}

// List returns sessions, most recent first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Session, error) {
	query := `
		SELECT id, start_time, end_time, target_duration_hours
		FROM fasting_sessions
		ORDER BY start_time DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("list fasting sessions", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var (
			s     Session
			start int64
			end   *int64
		)
		if err := rows.Scan(&s.ID, &start, &end, &s.TargetDurationHours); err != nil {
			return nil, domainerr.PersistenceUnavailable("scan fasting session", err)
		}
		s.StartTime = time.UnixMilli(start)
		s.EndTime = fromMillis(end)
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.PersistenceUnavailable("list fasting sessions", err)
	}

	return sessions, nil
}

func endMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}
