package fasting

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// SQLiteRepository is a SQLite implementation of Repository for local-first use.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite fasting repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or replaces a session.
func (r *SQLiteRepository) Upsert(ctx context.Context, s *Session) error {
	if s.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO fasting_sessions(start_time, end_time, target_duration_hours) VALUES(?, ?, ?)`,
			s.StartTime.UnixMilli(), endMillis(s.EndTime), s.TargetDurationHours,
		)
		if err != nil {
			return domainerr.PersistenceUnavailable("insert fasting session", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return domainerr.PersistenceUnavailable("insert fasting session", err)
		}
		s.ID = id
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO fasting_sessions(id, start_time, end_time, target_duration_hours) VALUES(?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  start_time = excluded.start_time,
  end_time = excluded.end_time,
  target_duration_hours = excluded.target_duration_hours`,
		s.ID, s.StartTime.UnixMilli(), endMillis(s.EndTime), s.TargetDurationHours,
	)
	if err != nil {
		return domainerr.PersistenceUnavailable("upsert fasting session", err)
	}
	return nil
}

// Update replaces an existing session.
func (r *SQLiteRepository) Update(ctx context.Context, s *Session) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fasting_sessions SET start_time = ?, end_time = ?, target_duration_hours = ? WHERE id = ?`,
		s.StartTime.UnixMilli(), endMillis(s.EndTime), s.TargetDurationHours, s.ID,
	)
	if err != nil {
		return domainerr.PersistenceUnavailable("update fasting session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerr.PersistenceUnavailable("update fasting session", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Latest returns the most recent session.
func (r *SQLiteRepository) Latest(ctx context.Context) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, start_time, end_time, target_duration_hours
FROM fasting_sessions
ORDER BY start_time DESC, id DESC
LIMIT 1`)

	s, err := scanSQLiteSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, domainerr.PersistenceUnavailable("load latest fasting session", err)
	}
	return s, nil
}

// List returns sessions, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, start_time, end_time, target_duration_hours
FROM fasting_sessions
ORDER BY start_time DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("list fasting sessions", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, domainerr.PersistenceUnavailable("scan fasting session", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.PersistenceUnavailable("list fasting sessions", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSession(row rowScanner) (*Session, error) {
	var (
		s     Session
		start int64
		end   sql.NullInt64
	)
	if err := row.Scan(&s.ID, &start, &end, &s.TargetDurationHours); err != nil {
		return nil, err
	}
	s.StartTime = time.UnixMilli(start)
	if end.Valid {
		t := time.UnixMilli(end.Int64)
		s.EndTime = &t
	}
	return &s, nil
}
