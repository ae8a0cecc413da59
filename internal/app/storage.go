// Package app assembles SmartDiet services from configuration. It is shared
// by the API server, the worker and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/config"
	"github.com/smartdiet/smartdiet/internal/database"
	"github.com/smartdiet/smartdiet/internal/database/sqlite"
	"github.com/smartdiet/smartdiet/internal/fasting"
	"github.com/smartdiet/smartdiet/internal/featureflags"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
)

// Storage holds the repositories of one storage driver.
type Storage struct {
	Driver   string
	Location string

	Profiles profile.Repository
	Meals    meal.Repository
	Fasting  fasting.Repository
	Flags    featureflags.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping verifies the storage is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connections.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the driver named by cfg.StorageDriver and brings its
// schema up to date.
func OpenStorage(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Database, log)
	case config.DriverSQLite:
		return openSQLite(cfg.SQLitePath, log)
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// NewMemoryStorage returns process-local storage.
func NewMemoryStorage() *Storage {
	return &Storage{
		Driver:   config.DriverMemory,
		Location: "memory",
		Profiles: profile.NewInMemoryRepository(),
		Meals:    meal.NewInMemoryRepository(),
		Fasting:  fasting.NewInMemoryRepository(),
		Flags:    featureflags.NewInMemoryRepository(),
	}
}

func openPostgres(ctx context.Context, dbConfig database.Config, log zerolog.Logger) (*Storage, error) {
	pool, err := database.Connect(ctx, dbConfig, log)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Str("database", dbConfig.Redacted()).Msg("database connected")

	return &Storage{
		Driver:   config.DriverPostgres,
		Location: dbConfig.Redacted(),
		Profiles: profile.NewPostgresRepository(pool),
		Meals:    meal.NewPostgresRepository(pool),
		Fasting:  fasting.NewPostgresRepository(pool),
		Flags:    featureflags.NewPostgresRepository(pool),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}

func openSQLite(path string, log zerolog.Logger) (*Storage, error) {
	if path == "" {
		var err error
		if path, err = sqlite.DefaultPath(); err != nil {
			return nil, err
		}
	}
	db, err := sqlite.OpenAndMigrate(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Msg("sqlite database opened")
	return newSQLiteStorage(db, path), nil
}

func newSQLiteStorage(db *sql.DB, path string) *Storage {
	return &Storage{
		Driver:   config.DriverSQLite,
		Location: path,
		Profiles: profile.NewSQLiteRepository(db),
		Meals:    meal.NewSQLiteRepository(db),
		Fasting:  fasting.NewSQLiteRepository(db),
		Flags:    featureflags.NewSQLiteRepository(db),
		ping:     db.PingContext,
		close:    func() { _ = db.Close() },
	}
}
