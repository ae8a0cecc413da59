package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "STORAGE_DRIVER", "ANALYSIS_TIMEOUT",
		"ANALYSIS_MAX_RETRIES", "FASTING_WATCH_INTERVAL", "NOTIFY_DESKTOP",
		"OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, config.DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, uint64(0), cfg.AnalysisMaxRetries)
	assert.Equal(t, time.Minute, cfg.FastingWatchInterval)
	assert.False(t, cfg.NotifyDesktop)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("ANALYSIS_TIMEOUT", "45s")
	t.Setenv("ANALYSIS_MAX_RETRIES", "2")
	t.Setenv("NOTIFY_DESKTOP", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 45*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, uint64(2), cfg.AnalysisMaxRetries)
	assert.True(t, cfg.NotifyDesktop)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("ANALYSIS_TIMEOUT", "-1s")
	t.Setenv("ANALYSIS_MAX_RETRIES", "many")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")

	_, err := config.FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
	assert.Contains(t, err.Error(), "ANALYSIS_TIMEOUT")
	assert.Contains(t, err.Error(), "ANALYSIS_MAX_RETRIES")
	assert.Contains(t, err.Error(), "OTEL_TRACES_SAMPLER_ARG")
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("APP_PORT", "9090")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=gemini-from-file\nAPP_PORT=7070\n"), 0o600))
	// godotenv.Load sets variables that are absent from the environment only.
	require.NoError(t, os.Unsetenv("GEMINI_MODEL"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-from-file", cfg.GeminiModel)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
