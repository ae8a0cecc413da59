package featureflags

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL bounds how long flags are served from memory. Default 1m.
	CacheTTL time.Duration

	Clock func() time.Time
}

// Service evaluates flags with a short-lived cache. Lookups never fail:
// storage errors fall back to the defaults, which are all off.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration
	now      func() time.Time

	mu          sync.RWMutex
	cache       map[string]*Flag
	cacheExpiry time.Time
}

// NewService creates a new feature flag service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: ttl,
		now:      clock,
	}
}

// IsEnabled reports whether the flag is switched on.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	if s == nil || s.repo == nil {
		return false
	}

	flags, err := s.load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("flag", key).Msg("failed to load feature flags, using defaults")
		return false
	}
	f, ok := flags[key]
	return ok && f.Enabled
}

// IsMealAnalysisDisabled reports whether meal analysis is switched off.
func (s *Service) IsMealAnalysisDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableMealAnalysis)
}

// IsStageNotificationsDisabled reports whether fasting stage notifications are switched off.
func (s *Service) IsStageNotificationsDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableStageNotifications)
}

// List returns every known flag merged over the defaults, ordered by key.
func (s *Service) List(ctx context.Context) ([]*Flag, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	merged := DefaultFlags()
	for key, f := range stored {
		if _, known := Known[key]; known {
			merged[key] = f
		}
	}

	out := make([]*Flag, 0, len(merged))
	for _, f := range merged {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Set stores the given values. Unknown keys are rejected before anything is written.
func (s *Service) Set(ctx context.Context, values map[string]bool) ([]*Flag, error) {
	if len(values) == 0 {
		return nil, domainerr.InvalidInput("no flags to update")
	}

	now := s.now()
	flags := make([]*Flag, 0, len(values))
	for key, enabled := range values {
		if _, ok := Known[key]; !ok {
			return nil, &domainerr.Error{
				Kind:   domainerr.KindInvalidInput,
				Detail: fmt.Sprintf("unknown feature flag %q", key),
				Err:    ErrUnknownFlag,
			}
		}
		flags = append(flags, &Flag{Key: key, Enabled: enabled, UpdatedAt: now})
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Key < flags[j].Key })

	if err := s.repo.Set(ctx, flags...); err != nil {
		return nil, err
	}
	s.InvalidateCache()

	for _, f := range flags {
		s.logger.Info().Str("flag", f.Key).Bool("enabled", f.Enabled).Msg("feature flag updated")
	}
	return flags, nil
}

// Reset removes the stored value of key so it falls back to its default (off).
func (s *Service) Reset(ctx context.Context, key string) error {
	if _, ok := Known[key]; !ok {
		return &domainerr.Error{
			Kind:   domainerr.KindInvalidInput,
			Detail: fmt.Sprintf("unknown feature flag %q", key),
			Err:    ErrUnknownFlag,
		}
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.InvalidateCache()
	s.logger.Info().Str("flag", key).Msg("feature flag reset")
	return nil
}

// InvalidateCache forces the next lookup to hit the repository.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.cacheExpiry = time.Time{}
}

func (s *Service) load(ctx context.Context) (map[string]*Flag, error) {
	now := s.now()

	s.mu.RLock()
	if s.cache != nil && now.Before(s.cacheExpiry) {
		cached := s.cache
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	flags, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache = flags
	s.cacheExpiry = now.Add(s.cacheTTL)
	s.mu.Unlock()

	return flags, nil
}
