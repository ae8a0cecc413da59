package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS user_profile (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  nickname TEXT NOT NULL,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  age INTEGER NOT NULL CHECK(age > 0),
  gender TEXT NOT NULL,
  activity_level REAL NOT NULL,
  bmi REAL NOT NULL,
  calorie_target INTEGER NOT NULL,
  health_conditions TEXT NOT NULL DEFAULT '[]',
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS meals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  description TEXT NOT NULL,
  eaten_at INTEGER NOT NULL,
  image_path TEXT,
  calories INTEGER CHECK(calories >= 0),
  protein REAL CHECK(protein >= 0),
  carbs REAL CHECK(carbs >= 0),
  fat REAL CHECK(fat >= 0),
  raw_analysis TEXT
);

CREATE INDEX IF NOT EXISTS idx_meals_eaten_at ON meals(eaten_at);
`,
	},
	{
		version: 2,
		name:    "fasting_sessions",
		sql: `
CREATE TABLE IF NOT EXISTS fasting_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  start_time INTEGER NOT NULL,
  end_time INTEGER,
  target_duration_hours INTEGER NOT NULL DEFAULT 0 CHECK(target_duration_hours >= 0)
);

CREATE INDEX IF NOT EXISTS idx_fasting_sessions_start_time ON fasting_sessions(start_time);
`,
	},
	{
		version: 3,
		name:    "feature_flags",
		sql: `
CREATE TABLE IF NOT EXISTS feature_flags (
  key TEXT PRIMARY KEY,
  enabled INTEGER NOT NULL DEFAULT 0 CHECK(enabled IN (0, 1)),
  updated_at INTEGER NOT NULL
);
`,
	},
}

// ApplyMigrations applies every migration not yet recorded in schema_migrations.
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	return nil
}

// AppliedVersions returns the recorded migration versions in ascending order.
func AppliedVersions(db *sql.DB) ([]int, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
