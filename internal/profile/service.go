package profile

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/pkg/broadcast"
)

// ServiceConfig holds configuration for the profile Service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Service provides profile operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
	feed   *broadcast.Broadcaster[*UserProfile]
}

// NewService creates a new profile service.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    clock,
		feed:   broadcast.New[*UserProfile](),
	}
}

// Current returns the saved profile, or nil if none exists.
func (s *Service) Current(ctx context.Context) (*UserProfile, error) {
	p, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// DailyTarget returns the profile calorie target, or
// bodymetrics.DefaultCalorieTarget when no profile exists.
func (s *Service) DailyTarget(ctx context.Context) (int, error) {
	p, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	if p == nil || p.CalorieTarget <= 0 {
		return bodymetrics.DefaultCalorieTarget, nil
	}
	return p.CalorieTarget, nil
}

// Preview validates in and returns the metrics it would produce, without saving.
func (s *Service) Preview(in Input) (bodymetrics.Result, error) {
	metrics, err := validate(in)
	if err != nil {
		return bodymetrics.Result{}, err
	}
	return compute(metrics)
}

// Save validates in, recomputes the derived metrics and replaces the stored profile.
func (s *Service) Save(ctx context.Context, in Input) (*UserProfile, error) {
	metrics, err := validate(in)
	if err != nil {
		return nil, err
	}

	res, err := compute(metrics)
	if err != nil {
		return nil, err
	}
	p := &UserProfile{
		Nickname:         strings.TrimSpace(in.Nickname),
		WeightKg:         metrics.WeightKg,
		HeightCm:         metrics.HeightCm,
		Age:              metrics.Age,
		Gender:           metrics.Gender,
		Activity:         metrics.Activity,
		BMI:              res.BMI,
		CalorieTarget:    res.CalorieTarget,
		HealthConditions: NormalizeConditions(in.HealthConditions),
		UpdatedAt:        time.UnixMilli(s.now().UnixMilli()),
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().
		Float64("bmi", p.BMI).
		Int("calorie_target", p.CalorieTarget).
		Int("health_conditions", len(p.HealthConditions)).
		Msg("profile saved")

	s.feed.Publish(p.Clone())
	return p, nil
}

// Subscribe returns a feed of the profile: the current value first (nil when
// none is saved), then every subsequent save. The channel is closed when ctx is done.
func (s *Service) Subscribe(ctx context.Context) <-chan *UserProfile {
	current, err := s.Current(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("loading profile for subscription")
	}
	return s.feed.Subscribe(ctx, current)
}

// NormalizeConditions trims, de-duplicates (case-insensitively) and sorts
// health conditions, mapping curated names to their canonical spelling.
func NormalizeConditions(conditions []string) []string {
	canonical := lo.SliceToMap(bodymetrics.HealthConditions, func(c string) (string, string) {
		return strings.ToLower(c), c
	})

	cleaned := lo.FilterMap(conditions, func(c string, _ int) (string, bool) {
		c = strings.TrimSpace(c)
		if c == "" {
			return "", false
		}
		if name, ok := canonical[strings.ToLower(c)]; ok {
			return name, true
		}
		return c, true
	})

	out := lo.UniqBy(cleaned, strings.ToLower)
	sort.Strings(out)
	return out
}

func compute(in bodymetrics.Input) (bodymetrics.Result, error) {
	res, ok := bodymetrics.Compute(in)
	if !ok {
		return bodymetrics.Result{}, domainerr.InvalidInput("profile measurements are incomplete")
	}
	return res, nil
}

func validate(in Input) (bodymetrics.Input, error) {
	var fields []FieldError

	if strings.TrimSpace(in.Nickname) == "" {
		fields = append(fields, FieldError{Field: "nickname", Message: "must not be blank"})
	}
	if !bodymetrics.Measurable(in.WeightKg) {
		fields = append(fields, FieldError{Field: "weightKg", Message: "must be a finite number greater than 0"})
	}
	if !bodymetrics.Measurable(in.HeightCm) {
		fields = append(fields, FieldError{Field: "heightCm", Message: "must be a finite number greater than 0"})
	}
	if in.Age <= 0 {
		fields = append(fields, FieldError{Field: "age", Message: "must be greater than 0"})
	}

	gender, err := bodymetrics.ParseGender(in.Gender)
	if err != nil {
		fields = append(fields, FieldError{Field: "gender", Message: err.Error()})
	}
	activity, err := bodymetrics.ParseActivityLevel(in.ActivityFactor)
	if err != nil {
		fields = append(fields, FieldError{Field: "activityFactor", Message: err.Error()})
	}

	if len(fields) > 0 {
		verr := &ValidationError{Fields: fields}
		return bodymetrics.Input{}, &domainerr.Error{
			Kind:   domainerr.KindInvalidInput,
			Detail: verr.Error(),
			Err:    verr,
		}
	}

	return bodymetrics.Input{
		WeightKg: in.WeightKg,
		HeightCm: in.HeightCm,
		Age:      in.Age,
		Gender:   gender,
		Activity: activity,
	}, nil
}
