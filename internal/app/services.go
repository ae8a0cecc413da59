package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/analysis/gemini"
	"github.com/smartdiet/smartdiet/internal/config"
	"github.com/smartdiet/smartdiet/internal/fasting"
	"github.com/smartdiet/smartdiet/internal/featureflags"
	"github.com/smartdiet/smartdiet/internal/locale"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
	"github.com/smartdiet/smartdiet/internal/provider/resilience"
	"github.com/smartdiet/smartdiet/internal/telemetry"
)

// Services are the domain services built on one Storage.
type Services struct {
	Profiles  *profile.Service
	Meals     *meal.Service
	Fasting   *fasting.Tracker
	Flags     *featureflags.Service
	Analyzer  *analysis.Service
	Providers *resilience.Registry
	Locale    locale.Locale
}

// Options tune NewServices.
type Options struct {
	// Generator replaces the Gemini client. Used by tests.
	Generator analysis.Generator

	// Metrics is optional.
	Metrics *telemetry.ProviderMetrics

	FlagCacheTTL time.Duration
}

// NewServices wires the domain services.
func NewServices(cfg config.Config, st *Storage, log zerolog.Logger, opts Options) *Services {
	registry := resilience.NewRegistry()

	profiles := profile.NewService(profile.ServiceConfig{Repository: st.Profiles, Logger: log})
	meals := meal.NewService(meal.ServiceConfig{Repository: st.Meals, Logger: log, Targets: profiles})
	tracker := fasting.NewTracker(fasting.TrackerConfig{Repository: st.Fasting, Logger: log})
	flags := featureflags.NewService(featureflags.ServiceConfig{
		Repository: st.Flags,
		Logger:     log,
		CacheTTL:   opts.FlagCacheTTL,
	})

	gen := opts.Generator
	if gen == nil {
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is not set - meal analysis will fail")
		}
		gen = gemini.NewClient(gemini.ClientConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			Registry:   registry,
			MaxRetries: cfg.AnalysisMaxRetries,
			Logger:     log,
		})
	}

	loc := ResolveLocale(cfg.Locale)
	orchestrator := analysis.NewOrchestrator(analysis.OrchestratorConfig{
		Generator: gen,
		Locale:    loc,
		Switch:    flags,
		Timeout:   cfg.AnalysisTimeout,
		Logger:    log,
		Metrics:   opts.Metrics,
	})

	return &Services{
		Profiles: profiles,
		Meals:    meals,
		Fasting:  tracker,
		Flags:    flags,
		Analyzer: analysis.NewService(analysis.ServiceConfig{
			Orchestrator: orchestrator,
			Profiles:     profiles,
			Meals:        meals,
			Logger:       log,
		}),
		Providers: registry,
		Locale:    loc,
	}
}

// ResolveLocale parses an explicit locale setting and falls back to the
// process environment when it is empty or invalid.
func ResolveLocale(explicit string) locale.Locale {
	if explicit != "" {
		if l, err := locale.Parse(explicit); err == nil {
			return l
		}
	}
	return locale.FromEnv()
}
