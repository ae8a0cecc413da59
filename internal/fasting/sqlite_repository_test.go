package fasting_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/database/sqlite"
	"github.com/smartdiet/smartdiet/internal/fasting"
)

func newSQLiteRepo(t *testing.T) *fasting.SQLiteRepository {
	t.Helper()
	db, err := sqlite.OpenAndMigrate(filepath.Join(t.TempDir(), "smartdiet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return fasting.NewSQLiteRepository(db)
}

func TestSQLiteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, fasting.ErrSessionNotFound)

	s := &fasting.Session{StartTime: time.UnixMilli(1767225600000), TargetDurationHours: 16}
	require.NoError(t, repo.Upsert(ctx, s))
	require.NotZero(t, s.ID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Active())
	assert.Equal(t, 16, latest.TargetDurationHours)

	end := s.StartTime.Add(16 * time.Hour)
	s.EndTime = &end
	require.NoError(t, repo.Update(ctx, s))

	latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest.EndTime)
	assert.True(t, latest.EndTime.Equal(end))

	missing := &fasting.Session{ID: 999, StartTime: time.Now()}
	assert.ErrorIs(t, repo.Update(ctx, missing), fasting.ErrSessionNotFound)
}

func TestSQLiteRepository_TrackerIntegration(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	clock := newFakeClock()
	tracker := fasting.NewTracker(fasting.TrackerConfig{Repository: repo, Logger: zerolog.Nop(), Clock: clock.Now})

	for i := 0; i < 3; i++ {
		_, err := tracker.Toggle(ctx)
		require.NoError(t, err)
		clock.Advance(13 * time.Hour)
		_, err = tracker.Toggle(ctx)
		require.NoError(t, err)
		clock.Advance(11 * time.Hour)
	}

	history, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, s := range history {
		require.NotNil(t, s.EndTime)
		assert.Equal(t, 13*time.Hour, s.EndTime.Sub(s.StartTime))
	}

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
	assert.Equal(t, history[0].ID, limited[0].ID)
}
