package meal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// TargetProvider supplies the daily calorie target.
type TargetProvider interface {
	DailyTarget(ctx context.Context) (int, error)
}

// ServiceConfig holds configuration for the meal Service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Targets supplies the daily calorie target. When nil,
	// bodymetrics.DefaultCalorieTarget is used.
	Targets TargetProvider

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Service provides meal logging operations.
type Service struct {
	repo    Repository
	logger  zerolog.Logger
	targets TargetProvider
	now     func() time.Time

	mu     sync.Mutex
	lastTS time.Time
	seeded bool
}

// NewService creates a new meal service.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		targets: cfg.Targets,
		now:     clock,
	}
}

// SaveAnalyzed stores an analysis as a new meal with a fresh timestamp.
func (s *Service) SaveAnalyzed(ctx context.Context, a Analysis, imagePath *string) (*Record, error) {
	if strings.TrimSpace(a.Description) == "" {
		return nil, domainerr.InvalidInput("meal description must not be blank")
	}
	if a.Calories < 0 || a.Protein < 0 || a.Carbs < 0 || a.Fat < 0 {
		return nil, domainerr.InvalidInput("nutritional values must not be negative")
	}

	calories, protein, carbs, fat, text := a.Calories, a.Protein, a.Carbs, a.Fat, a.Text
	rec := &Record{
		Description: strings.TrimSpace(a.Description),
		ImagePath:   imagePath,
		Calories:    &calories,
		Protein:     &protein,
		Carbs:       &carbs,
		Fat:         &fat,
		Analysis:    &text,
	}
	return s.insert(ctx, rec)
}

// AddManual stores a meal without nutritional analysis.
func (s *Service) AddManual(ctx context.Context, description string) (*Record, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domainerr.InvalidInput("meal description must not be blank")
	}
	return s.insert(ctx, &Record{Description: description})
}

// Get returns a meal by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a meal.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("meal_id", id).Msg("meal deleted")
	return nil
}

// List returns every meal, newest first.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.repo.ListAll(ctx)
}

// Recent returns the n newest meals. n <= 0 uses DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, n int) ([]*Record, error) {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	return s.repo.ListRecent(ctx, n)
}

// DailySummary returns the calorie budget of the local day containing now.
func (s *Service) DailySummary(ctx context.Context, now time.Time) (*DailySummary, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	consumed := 0
	sum, err := s.repo.SumCalories(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if sum != nil {
		consumed = *sum
	}

	target := bodymetrics.DefaultCalorieTarget
	if s.targets != nil {
		target, err = s.targets.DailyTarget(ctx)
		if err != nil {
			return nil, err
		}
	}

	summary := &DailySummary{
		Date:      start,
		Consumed:  consumed,
		Target:    target,
		Remaining: target - consumed,
	}
	if target > 0 {
		summary.Progress = float64(consumed) / float64(target)
	}
	return summary, nil
}

// Today returns the summary of the current local day.
func (s *Service) Today(ctx context.Context) (*DailySummary, error) {
	return s.DailySummary(ctx, s.now())
}

func (s *Service) insert(ctx context.Context, rec *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, err := s.nextTimestampLocked(ctx)
	if err != nil {
		return nil, err
	}
	rec.Timestamp = ts

	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	s.lastTS = ts

	event := s.logger.Info().Int64("meal_id", id)
	if rec.Calories != nil {
		event = event.Int("calories", *rec.Calories)
	}
	event.Msg("meal saved")

	return rec.Clone(), nil
}

// nextTimestampLocked returns a millisecond timestamp strictly after every
// timestamp handed out before, including those already stored.
func (s *Service) nextTimestampLocked(ctx context.Context) (time.Time, error) {
	if !s.seeded {
		latest, err := s.repo.ListRecent(ctx, 1)
		if err != nil {
			return time.Time{}, err
		}
		if len(latest) > 0 {
			s.lastTS = latest[0].Timestamp
		}
		s.seeded = true
	}

	ts := time.UnixMilli(s.now().UnixMilli())
	if !s.lastTS.IsZero() && !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Millisecond)
	}
	return ts, nil
}
