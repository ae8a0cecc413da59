package analysis

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
)

// ProfileSource returns the saved profile, or nil when none exists.
type ProfileSource interface {
	Current(ctx context.Context) (*profile.UserProfile, error)
}

// MealStore is the subset of the meal service used by analysis.
type MealStore interface {
	Recent(ctx context.Context, n int) ([]*meal.Record, error)
	SaveAnalyzed(ctx context.Context, a meal.Analysis, imagePath *string) (*meal.Record, error)
	Today(ctx context.Context) (*meal.DailySummary, error)
}

// ServiceConfig holds configuration for the analysis Service.
type ServiceConfig struct {
	Orchestrator *Orchestrator
	Profiles     ProfileSource
	Meals        MealStore
	Logger       zerolog.Logger
}

// Service gathers analysis context from storage and persists accepted results.
type Service struct {
	orchestrator *Orchestrator
	profiles     ProfileSource
	meals        MealStore
	logger       zerolog.Logger
}

// NewService creates a new analysis service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		orchestrator: cfg.Orchestrator,
		profiles:     cfg.Profiles,
		meals:        cfg.Meals,
		logger:       cfg.Logger,
	}
}

// Analyze loads the current profile, the most recent meals and today's
// intake and runs the orchestrator. Nothing is persisted.
func (s *Service) Analyze(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domainerr.InvalidInput("meal description is required")
	}

	p, err := s.profiles.Current(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.meals.Recent(ctx, HistoryLimit)
	if err != nil {
		return nil, err
	}

	today, err := s.meals.Today(ctx)
	if err != nil {
		return nil, err
	}

	return s.orchestrator.AnalyzeRequest(ctx, Request{
		Description: description,
		Profile:     p,
		History:     history,
		Today:       today,
	})
}

// Save persists an accepted analysis result as a meal record.
func (s *Service) Save(ctx context.Context, res *Result, imagePath *string) (*meal.Record, error) {
	if res == nil {
		return nil, domainerr.InvalidInput("analysis result is required")
	}
	rec, err := s.meals.SaveAnalyzed(ctx, res.Meal(), imagePath)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("meal_id", rec.ID).Int("calories", res.Calories).Msg("saved analyzed meal")
	return rec, nil
}
