// Package main provides the entrypoint for the SmartDiet worker, which
// watches the active fast and sends stage notifications.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/config"
	"github.com/smartdiet/smartdiet/internal/notify"
	"github.com/smartdiet/smartdiet/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "smartdiet-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SmartDiet worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer storage.Close()

	services := app.NewServices(cfg, storage, log, app.Options{FlagCacheTTL: time.Minute})

	notifiers := notify.Multi{notify.NewLogNotifier(log)}
	if cfg.NotifyDesktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(""))
		log.Info().Msg("desktop notifications enabled")
	}

	watcher := worker.NewStageWatcher(worker.StageWatcherConfig{
		Config:   worker.WatchConfig{Interval: cfg.FastingWatchInterval},
		Sessions: services.Fasting,
		Notifier: notifiers,
		Flags:    services.Flags,
		Logger:   log,
	})

	// Start stage watcher
	go watcher.Run(ctx)

	// Optional Pub/Sub intake for on-demand jobs
	var pubsubHandler *worker.PubSubHandler
	if cfg.PubSubProjectID != "" {
		jobs := worker.NewJobs(watcher, map[string]worker.HealthChecker{
			"storage": storage.Ping,
		}, log)
		pubsubHandler, err = worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			Jobs:             jobs,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if err := pubsubHandler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("PUBSUB_PROJECT_ID not set - pubsub intake disabled")
	}

	// Health endpoint
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{
			"status":  "healthy",
			"version": Version,
			"watcher": watcher.MetricsSnapshot(),
		}
		if err := storage.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["storage_error"] = err.Error()
		}
		response.JSON(w, r, status, body)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
