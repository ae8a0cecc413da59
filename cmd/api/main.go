// Package main provides the entrypoint for the SmartDiet API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/api"
	"github.com/smartdiet/smartdiet/internal/api/middleware"
	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/auth"
	"github.com/smartdiet/smartdiet/internal/config"
	"github.com/smartdiet/smartdiet/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "smartdiet-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SmartDiet API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer storage.Close()
	log.Info().
		Str("driver", storage.Driver).
		Str("location", storage.Location).
		Msg("storage ready")

	services := app.NewServices(cfg, storage, log, app.Options{
		Metrics:      providerMetrics,
		FlagCacheTTL: time.Minute,
	})
	if _, err := services.Fasting.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to restore fasting session")
	}
	log.Info().
		Str("locale", services.Locale.String()).
		Msg("services initialized")

	routerCfg := api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		RequireTLS:  cfg.IsProduction(),
		Profiles:    services.Profiles,
		Meals:       services.Meals,
		Analyzer:    services.Analyzer,
		Fasting:     services.Fasting,
		Flags:       services.Flags,
		Storage:     storage,
		Providers:   services.Providers,
	}
	if cfg.AuthSigningKey != "" {
		routerCfg.Auth = auth.NewJWTService(auth.JWTConfig{
			SigningKey: cfg.AuthSigningKey,
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
		})
	} else {
		if cfg.IsProduction() {
			log.Fatal().Msg("AUTH_SIGNING_KEY is required in production")
		}
		log.Warn().Msg("AUTH_SIGNING_KEY not set - API is served without authentication")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AnalysisTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
