// Package api provides the HTTP API for SmartDiet.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/api/handler"
	"github.com/smartdiet/smartdiet/internal/api/middleware"
	"github.com/smartdiet/smartdiet/internal/api/models"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	// Auth validates bearer tokens. When nil the API is served without
	// authentication, which is only meant for local use.
	Auth middleware.TokenValidator

	Profiles  handler.ProfileService
	Meals     handler.MealService
	Analyzer  handler.Analyzer
	Fasting   handler.FastingTracker
	Flags     handler.FlagService
	Storage   handler.Pinger
	Providers handler.ProviderHealthSource
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "smartdiet-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Storage:   cfg.Storage,
		Providers: cfg.Providers,
		Flags:     cfg.Flags,
		Logger:    cfg.Logger,
	})
	profileHandler := handler.NewProfileHandler(cfg.Profiles)
	mealHandler := handler.NewMealHandler(cfg.Meals)
	analysisHandler := handler.NewAnalysisHandler(cfg.Analyzer)
	fastingHandler := handler.NewFastingHandler(cfg.Fasting)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.Flags)

	authenticate := func(next http.Handler) http.Handler { return next }
	if cfg.Auth != nil {
		authenticate = middleware.Auth(cfg.Auth)
	}

	analysisRateLimit := middleware.RateLimit(middleware.AnalysisRateLimit) // 6 req/min
	adminRateLimit := middleware.RateLimit(middleware.AdminRateLimit)       // 20 req/min
	standardRateLimit := middleware.RateLimit(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authenticate).Get("/status", opsHandler.SystemStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Group(func(r chi.Router) {
				r.Use(standardRateLimit)

				r.Route("/profile", func(r chi.Router) {
					r.Get("/", profileHandler.GetProfile)
					r.Put("/", profileHandler.PutProfile)
					r.Get("/options", profileHandler.GetOptions)
				})
				r.Post("/profile:preview", profileHandler.PreviewMetrics)

				r.Route("/meals", func(r chi.Router) {
					r.Get("/", mealHandler.ListMeals)
					r.Post("/", mealHandler.CreateMeal)
					r.Get("/today", mealHandler.GetToday)
					r.Get("/{mealId}", mealHandler.GetMeal)
					r.Delete("/{mealId}", mealHandler.DeleteMeal)
				})
				r.Post("/meals:save", analysisHandler.SaveAnalysis)

				r.Route("/fasting", func(r chi.Router) {
					r.Get("/", fastingHandler.GetStatus)
					r.Get("/sessions", fastingHandler.ListSessions)
					r.Get("/stages", fastingHandler.ListStages)
				})
				r.Post("/fasting:toggle", fastingHandler.Toggle)
				r.Post("/fasting:start", fastingHandler.Start)
				r.Post("/fasting:stop", fastingHandler.Stop)
			})

			// Inference-backed, strict rate limiting
			r.With(analysisRateLimit).Post("/meals:analyze", analysisHandler.AnalyzeMeal)

			r.Route("/admin/flags", func(r chi.Router) {
				r.Use(adminRateLimit)
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
			})
			r.With(adminRateLimit).Post("/admin/flags:invalidate", featureFlagsHandler.InvalidateCache)
		})
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	models.NewNotFound(middleware.GetRequestID(r.Context()), "no route matches "+r.URL.Path).
		WithInstance(r.URL.Path).
		Write(w)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	models.NewProblem(models.ProblemTypeMethodNotAllowed, "Method Not Allowed", http.StatusMethodNotAllowed, middleware.GetRequestID(r.Context())).
		WithDetail(r.Method + " is not supported on " + r.URL.Path).
		WithInstance(r.URL.Path).
		Write(w)
}
