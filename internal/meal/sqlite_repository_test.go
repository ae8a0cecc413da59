package meal_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/database/sqlite"
	"github.com/smartdiet/smartdiet/internal/meal"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.OpenAndMigrate(filepath.Join(t.TempDir(), "smartdiet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteRepository_RoundTripPreservesAnalysis(t *testing.T) {
	ctx := context.Background()
	repo := meal.NewSQLiteRepository(newTestDB(t))
	svc := meal.NewService(meal.ServiceConfig{Repository: repo, Logger: zerolog.Nop()})

	a := sampleAnalysis()
	image := "/photos/salmon.jpg"
	saved, err := svc.SaveAnalyzed(ctx, a, &image)
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Description, got.Description)
	assert.Equal(t, a.Calories, *got.Calories)
	assert.Equal(t, a.Protein, *got.Protein)
	assert.Equal(t, a.Carbs, *got.Carbs)
	assert.Equal(t, a.Fat, *got.Fat)
	assert.Equal(t, a.Text, *got.Analysis)
	assert.Equal(t, image, *got.ImagePath)
	assert.True(t, saved.Timestamp.Equal(got.Timestamp))
}

func TestSQLiteRepository_ManualMealHasNoAnalysis(t *testing.T) {
	ctx := context.Background()
	repo := meal.NewSQLiteRepository(newTestDB(t))

	id, err := repo.Insert(ctx, &meal.Record{Description: "apple", Timestamp: time.UnixMilli(1000)})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Analyzed())
	assert.Nil(t, got.Protein)
	assert.Nil(t, got.Analysis)
}

func TestSQLiteRepository_OrderingAndSum(t *testing.T) {
	ctx := context.Background()
	repo := meal.NewSQLiteRepository(newTestDB(t))

	base := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	for i, kcal := range []int{300, 500, 200} {
		c := kcal
		_, err := repo.Insert(ctx, &meal.Record{
			Description: "meal",
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
			Calories:    &c,
		})
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 200, *all[0].Calories)
	assert.Equal(t, 300, *all[2].Calories)

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	sum, err := repo.SumCalories(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 800, *sum)

	none, err := repo.SumCalories(ctx, base.Add(-48*time.Hour), base)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Delete(ctx, all[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, all[0].ID), meal.ErrMealNotFound)
	_, err = repo.Get(ctx, all[0].ID)
	assert.ErrorIs(t, err, meal.ErrMealNotFound)
}
