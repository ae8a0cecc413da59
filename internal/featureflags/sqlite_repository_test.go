package featureflags_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/database/sqlite"
	"github.com/smartdiet/smartdiet/internal/featureflags"
)

func TestSQLiteRepository(t *testing.T) {
	db, err := sqlite.OpenAndMigrate(filepath.Join(t.TempDir(), "flags.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	repo := featureflags.NewSQLiteRepository(db)

	_, err = repo.Get(ctx, featureflags.FlagDisableMealAnalysis)
	assert.ErrorIs(t, err, featureflags.ErrFlagNotFound)

	at := time.UnixMilli(time.Now().UnixMilli())
	require.NoError(t, repo.Set(ctx,
		&featureflags.Flag{Key: featureflags.FlagDisableMealAnalysis, Enabled: true, UpdatedAt: at},
		&featureflags.Flag{Key: featureflags.FlagDisableStageNotifications, UpdatedAt: at},
	))

	got, err := repo.Get(ctx, featureflags.FlagDisableMealAnalysis)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.True(t, at.Equal(got.UpdatedAt))

	require.NoError(t, repo.Set(ctx, &featureflags.Flag{Key: featureflags.FlagDisableMealAnalysis, UpdatedAt: at}))
	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[featureflags.FlagDisableMealAnalysis].Enabled)

	require.NoError(t, repo.Delete(ctx, featureflags.FlagDisableStageNotifications))
	_, err = repo.Get(ctx, featureflags.FlagDisableStageNotifications)
	assert.ErrorIs(t, err, featureflags.ErrFlagNotFound)
}
