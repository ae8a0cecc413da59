package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates every table used by the PostgreSQL repositories.
// Timestamps of meals and fasting sessions are epoch milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_profile (
		id                INTEGER PRIMARY KEY CHECK (id = 1),
		nickname          TEXT NOT NULL,
		weight_kg         DOUBLE PRECISION NOT NULL CHECK (weight_kg > 0),
		height_cm         DOUBLE PRECISION NOT NULL CHECK (height_cm > 0),
		age               INTEGER NOT NULL CHECK (age > 0),
		gender            TEXT NOT NULL,
		activity_level    DOUBLE PRECISION NOT NULL,
		bmi               DOUBLE PRECISION NOT NULL,
		calorie_target    INTEGER NOT NULL,
		health_conditions TEXT[] NOT NULL DEFAULT '{}',
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS meals (
		id           BIGSERIAL PRIMARY KEY,
		description  TEXT NOT NULL,
		eaten_at     BIGINT NOT NULL,
		image_path   TEXT,
		calories     INTEGER CHECK (calories >= 0),
		protein      DOUBLE PRECISION CHECK (protein >= 0),
		carbs        DOUBLE PRECISION CHECK (carbs >= 0),
		fat          DOUBLE PRECISION CHECK (fat >= 0),
		raw_analysis TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meals_eaten_at ON meals (eaten_at DESC)`,
	`CREATE TABLE IF NOT EXISTS fasting_sessions (
		id                    BIGSERIAL PRIMARY KEY,
		start_time            BIGINT NOT NULL,
		end_time              BIGINT,
		target_duration_hours INTEGER NOT NULL DEFAULT 0 CHECK (target_duration_hours >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fasting_sessions_start_time ON fasting_sessions (start_time DESC)`,
	`CREATE TABLE IF NOT EXISTS feature_flags (
		key        TEXT PRIMARY KEY,
		enabled    BOOLEAN NOT NULL DEFAULT false,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
