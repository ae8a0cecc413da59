package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/database/sqlite"
)

func TestApplyMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "smartdiet.db")

	db, err := sqlite.OpenAndMigrate(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, sqlite.ApplyMigrations(db))

	versions, err := sqlite.AppliedVersions(db)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, versions)

	for _, table := range []string{"user_profile", "meals", "fasting_sessions", "feature_flags"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}
