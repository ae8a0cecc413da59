package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/fasting"
	"github.com/smartdiet/smartdiet/internal/notify"
)

// Notification kinds.
const (
	KindStageChange   = "stage_change"
	KindTargetReached = "target_reached"
)

// SessionSource loads the latest fasting session.
type SessionSource interface {
	Load(ctx context.Context) (*fasting.Session, error)
}

// NotificationSwitch reports whether stage notifications are turned off.
type NotificationSwitch interface {
	IsStageNotificationsDisabled(ctx context.Context) bool
}

// StageWatcher notifies when an active fast enters a new stage or reaches
// its target. The first check of a session only records its position, so a
// restarted watcher does not repeat notifications already sent.
type StageWatcher struct {
	config   WatchConfig
	sessions SessionSource
	notifier notify.Notifier
	flags    NotificationSwitch
	logger   zerolog.Logger
	now      func() time.Time

	mu             sync.Mutex
	sessionID      int64
	stage          int
	targetNotified bool

	metrics *WatchMetrics
}

// WatchMetrics tracks watcher statistics.
type WatchMetrics struct {
	mu sync.RWMutex

	Checks        int64
	FailedChecks  int64
	Notifications int64
	FailedSends   int64
	Suppressed    int64

	LastCheckAt       time.Time
	LastCheckDuration time.Duration
}

// StageWatcherConfig holds configuration for creating a StageWatcher.
type StageWatcherConfig struct {
	Config   WatchConfig
	Sessions SessionSource
	Notifier notify.Notifier
	Flags    NotificationSwitch
	Logger   zerolog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// NewStageWatcher creates a new stage watcher.
func NewStageWatcher(cfg StageWatcherConfig) *StageWatcher {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(cfg.Logger)
	}
	return &StageWatcher{
		config:   cfg.Config.withDefaults(),
		sessions: cfg.Sessions,
		notifier: notifier,
		flags:    cfg.Flags,
		logger:   cfg.Logger,
		now:      clock,
		metrics:  &WatchMetrics{},
	}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	CheckedAt  time.Time
	Snapshot   fasting.Snapshot
	Messages   []notify.Message
	Suppressed bool
}

// Check loads the latest session and notifies about any stage reached since
// the previous check.
func (w *StageWatcher) Check(ctx context.Context) (*CheckResult, error) {
	start := w.now()
	ctx, cancel := context.WithTimeout(ctx, w.config.CheckTimeout)
	defer cancel()

	session, err := w.sessions.Load(ctx)
	if err != nil {
		w.record(start, func(m *WatchMetrics) { m.FailedChecks++ })
		return nil, fmt.Errorf("loading fasting session: %w", err)
	}

	snap := fasting.SnapshotAt(session, start)
	result := &CheckResult{CheckedAt: start, Snapshot: snap, Messages: w.advance(snap)}

	if len(result.Messages) > 0 && w.flags != nil && w.flags.IsStageNotificationsDisabled(ctx) {
		result.Suppressed = true
		w.logger.Debug().Int("messages", len(result.Messages)).Msg("stage notifications disabled by feature flag")
		w.record(start, func(m *WatchMetrics) { m.Suppressed += int64(len(result.Messages)) })
		return result, nil
	}

	var sent, failed int64
	for _, msg := range result.Messages {
		if err := w.notifier.Notify(ctx, msg); err != nil {
			failed++
			w.logger.Warn().Err(err).Str("kind", msg.Kind).Msg("failed to deliver notification")
			continue
		}
		sent++
	}
	w.record(start, func(m *WatchMetrics) {
		m.Notifications += sent
		m.FailedSends += failed
	})
	return result, nil
}

// advance updates the tracked position and returns the messages due.
func (w *StageWatcher) advance(snap fasting.Snapshot) []notify.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !snap.Active() || snap.CurrentStage == nil {
		w.sessionID = 0
		return nil
	}

	reached := snap.TargetHours > fasting.OpenEnded && snap.TargetProgress >= 1
	if snap.SessionID != w.sessionID {
		w.sessionID = snap.SessionID
		w.stage = snap.CurrentStage.Index
		w.targetNotified = reached
		w.logger.Info().
			Int64("session_id", snap.SessionID).
			Str("stage", snap.CurrentStage.Title).
			Msg("watching fasting session")
		return nil
	}

	var msgs []notify.Message
	if snap.CurrentStage.Index > w.stage {
		w.stage = snap.CurrentStage.Index
		msgs = append(msgs, StageMessage(*snap.CurrentStage, snap.ElapsedString))
	}
	if reached && !w.targetNotified {
		w.targetNotified = true
		msgs = append(msgs, notify.Message{
			Title: "Fasting goal reached",
			Body:  fmt.Sprintf("You completed your %dh fast (%s).", snap.TargetHours, snap.ElapsedString),
			Kind:  KindTargetReached,
		})
	}
	return msgs
}

// StageMessage renders the notification for entering stage s.
func StageMessage(s fasting.Stage, elapsed string) notify.Message {
	return notify.Message{
		Title: s.Icon + " " + s.Title,
		Body:  fmt.Sprintf("%s fasted. %s", elapsed, s.Description),
		Kind:  KindStageChange,
	}
}

// Run checks immediately and then every interval until ctx is done.
func (w *StageWatcher) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.config.Interval).Msg("starting fasting stage watcher")

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.Check(ctx); err != nil {
			w.logger.Error().Err(err).Msg("fasting check failed")
		}
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("fasting stage watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *StageWatcher) record(start time.Time, update func(*WatchMetrics)) {
	w.metrics.mu.Lock()
	defer w.metrics.mu.Unlock()

	w.metrics.Checks++
	w.metrics.LastCheckAt = start
	w.metrics.LastCheckDuration = w.now().Sub(start)
	update(w.metrics)
}

// GetMetrics returns a copy of the current metrics.
func (w *StageWatcher) GetMetrics() WatchMetrics {
	w.metrics.mu.RLock()
	defer w.metrics.mu.RUnlock()

	return WatchMetrics{
		Checks:            w.metrics.Checks,
		FailedChecks:      w.metrics.FailedChecks,
		Notifications:     w.metrics.Notifications,
		FailedSends:       w.metrics.FailedSends,
		Suppressed:        w.metrics.Suppressed,
		LastCheckAt:       w.metrics.LastCheckAt,
		LastCheckDuration: w.metrics.LastCheckDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map.
func (w *StageWatcher) MetricsSnapshot() map[string]any {
	m := w.GetMetrics()
	return map[string]any{
		"checks":              m.Checks,
		"failed_checks":       m.FailedChecks,
		"notifications":       m.Notifications,
		"failed_sends":        m.FailedSends,
		"suppressed":          m.Suppressed,
		"last_check_at":       m.LastCheckAt,
		"last_check_duration": m.LastCheckDuration.String(),
	}
}
