// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartdiet/smartdiet/internal/database"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the application configuration shared by all binaries.
type Config struct {
	Port        string
	Environment string
	Locale      string

	TelemetryEnabled bool
	OTLPEndpoint     string
	TraceSampleRatio float64

	StorageDriver string
	SQLitePath    string
	Database      database.Config

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	AnalysisTimeout    time.Duration
	AnalysisMaxRetries uint64

	AuthSigningKey string
	AuthIssuer     string
	AuthAudience   string

	PubSubProjectID    string
	PubSubSubscription string

	FastingWatchInterval time.Duration
	NotifyDesktop        bool
}

// Load reads the given .env files, or ./.env when none are given, and then
// builds the configuration from the process environment. Missing files are
// ignored; variables already set in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (Config, error) {
	var errs []error

	timeout, err := durationEnv("ANALYSIS_TIMEOUT", 30*time.Second)
	errs = append(errs, err)
	watch, err := durationEnv("FASTING_WATCH_INTERVAL", time.Minute)
	errs = append(errs, err)
	retries, err := strconv.ParseUint(getEnvOrDefault("ANALYSIS_MAX_RETRIES", "0"), 10, 8)
	if err != nil {
		errs = append(errs, fmt.Errorf("ANALYSIS_MAX_RETRIES: %w", err))
	}

	ratio, err := strconv.ParseFloat(getEnvOrDefault("OTEL_TRACES_SAMPLER_ARG", "1"), 64)
	if err != nil || ratio < 0 || ratio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: must be a number between 0 and 1"))
	}

	driver := strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", DriverPostgres))
	switch driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER: unsupported driver %q", driver))
	}

	cfg := Config{
		Port:        getEnvOrDefault("APP_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		Locale:      os.Getenv("APP_LOCALE"),

		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio: ratio,

		StorageDriver: driver,
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		Database:      database.ConfigFromEnv(),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),

		AnalysisTimeout:    timeout,
		AnalysisMaxRetries: retries,

		AuthSigningKey: os.Getenv("AUTH_SIGNING_KEY"),
		AuthIssuer:     getEnvOrDefault("AUTH_ISSUER", "smartdiet"),
		AuthAudience:   getEnvOrDefault("AUTH_AUDIENCE", "smartdiet-api"),

		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: getEnvOrDefault("PUBSUB_SUBSCRIPTION", "smartdiet-worker"),

		FastingWatchInterval: watch,
		NotifyDesktop:        os.Getenv("NOTIFY_DESKTOP") == "true",
	}

	return cfg, errors.Join(errs...)
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
