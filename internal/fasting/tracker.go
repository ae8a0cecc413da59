package fasting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/pkg/broadcast"
)

// Snapshot is the state of the tracker at an instant.
type Snapshot struct {
	State               State
	SessionID           int64
	StartTime           time.Time
	TargetHours         int
	Elapsed             time.Duration
	ElapsedHours        float64
	ElapsedString       string
	CurrentStage        *Stage
	NextStage           *Stage
	StageProgress       float64
	HoursUntilNextStage float64
	TargetProgress      float64
}

// Active reports whether the snapshot was taken during an active session.
func (s Snapshot) Active() bool {
	return s.State == StateActive
}

// SnapshotAt computes the snapshot of session at now. A nil or ended session
// yields an idle snapshot. Elapsed time is clamped to zero when now precedes
// the session start.
func SnapshotAt(session *Session, now time.Time) Snapshot {
	if !session.Active() {
		return Snapshot{State: StateIdle, ElapsedString: FormatElapsed(0)}
	}

	elapsed := now.Sub(session.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := float64(elapsed.Milliseconds()) / float64(time.Hour/time.Millisecond)

	snap := Snapshot{
		State:         StateActive,
		SessionID:     session.ID,
		StartTime:     session.StartTime,
		TargetHours:   session.TargetDurationHours,
		Elapsed:       elapsed,
		ElapsedHours:  hours,
		ElapsedString: FormatElapsed(elapsed),
		StageProgress: StageProgress(hours),
	}

	if cur, ok := CurrentStage(hours); ok {
		snap.CurrentStage = &cur
	}
	if next, ok := NextStage(hours); ok {
		snap.NextStage = &next
		snap.HoursUntilNextStage, _ = HoursUntilNextStage(hours)
	}
	if session.HasTarget() {
		snap.TargetProgress = clamp01(hours / float64(session.TargetDurationHours))
	}

	return snap
}

// FormatElapsed renders d as zero-padded HH:MM:SS. Hours are not capped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// TrackerConfig holds configuration for the Tracker.
type TrackerConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Tracker drives the fasting session lifecycle: Idle <-> Active.
//
// Every state change re-reads the latest session from the repository before
// deciding, so a tracker started after a process restart sees the open
// session left by its predecessor.
type Tracker struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	session *Session
	feed    *broadcast.Broadcaster[*Session]
}

// NewTracker creates a new fasting tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    clock,
		feed:   broadcast.New[*Session](),
	}
}

// Load reads the latest session from the repository and makes it current.
// Returns nil when no session was ever recorded.
func (t *Tracker) Load(ctx context.Context) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest, err := t.latestLocked(ctx)
	if err != nil {
		return nil, err
	}
	t.setLocked(latest)
	return latest.Clone(), nil
}

// State returns the state of the currently loaded session.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.Active() {
		return StateActive
	}
	return StateIdle
}

// Current returns a copy of the currently loaded session, or nil.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Clone()
}

// Start opens a new session. targetHours of OpenEnded means no goal.
// When a session is already active it is returned unchanged.
func (t *Tracker) Start(ctx context.Context, targetHours int) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest, err := t.latestLocked(ctx)
	if err != nil {
		return nil, err
	}
	t.setLocked(latest)
	return t.startLocked(ctx, latest, targetHours)
}

// Stop closes the active session.
// Returns ErrNotFasting if no session is active.
func (t *Tracker) Stop(ctx context.Context) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest, err := t.latestLocked(ctx)
	if err != nil {
		return nil, err
	}
	t.setLocked(latest)
	return t.stopLocked(ctx, latest)
}

// Toggle stops the active session, or starts an open-ended one when idle.
func (t *Tracker) Toggle(ctx context.Context) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest, err := t.latestLocked(ctx)
	if err != nil {
		return nil, err
	}
	t.setLocked(latest)

	if latest.Active() {
		return t.stopLocked(ctx, latest)
	}
	return t.startLocked(ctx, latest, OpenEnded)
}

// Tick computes the snapshot of the loaded session at now.
func (t *Tracker) Tick(now time.Time) Snapshot {
	t.mu.Lock()
	session := t.session
	t.mu.Unlock()
	return SnapshotAt(session, now)
}

// Now computes the snapshot of the loaded session at the tracker clock.
func (t *Tracker) Now() Snapshot {
	return t.Tick(t.now())
}

// Run calls fn with a fresh snapshot immediately and then every interval
// until ctx is done. It blocks; no timer outlives the call.
func (t *Tracker) Run(ctx context.Context, interval time.Duration, fn func(Snapshot)) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(t.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(t.Now())
		}
	}
}

// Subscribe returns a feed of the latest session. The current session (which
// may be nil) is delivered first, then every change made through the tracker.
// The channel is closed when ctx is done.
func (t *Tracker) Subscribe(ctx context.Context) <-chan *Session {
	return t.feed.Subscribe(ctx, t.Current())
}

// History returns up to limit sessions, most recent first.
func (t *Tracker) History(ctx context.Context, limit int) ([]*Session, error) {
	return t.repo.List(ctx, limit)
}

func (t *Tracker) startLocked(ctx context.Context, latest *Session, targetHours int) (*Session, error) {
	if targetHours < 0 {
		return nil, domainerr.InvalidInput("target duration must not be negative")
	}
	if latest.Active() {
		t.logger.Debug().Int64("session_id", latest.ID).Msg("fasting session already active")
		return latest.Clone(), nil
	}

	session := &Session{
		StartTime:           t.nowMillis(),
		TargetDurationHours: targetHours,
	}
	if err := t.repo.Upsert(ctx, session); err != nil {
		return nil, err
	}

	t.logger.Info().
		Int64("session_id", session.ID).
		Int("target_hours", targetHours).
		Msg("fasting session started")

	t.setLocked(session)
	return session.Clone(), nil
}

func (t *Tracker) stopLocked(ctx context.Context, latest *Session) (*Session, error) {
	if !latest.Active() {
		return nil, ErrNotFasting
	}

	end := t.nowMillis()
	if end.Before(latest.StartTime) {
		end = latest.StartTime
	}

	session := latest.Clone()
	session.EndTime = &end
	if err := t.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	t.logger.Info().
		Int64("session_id", session.ID).
		Dur("duration", end.Sub(session.StartTime)).
		Msg("fasting session stopped")

	t.setLocked(session)
	return session.Clone(), nil
}

func (t *Tracker) latestLocked(ctx context.Context) (*Session, error) {
	latest, err := t.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return latest, nil
}

// setLocked makes s current and publishes it when it differs from the
// previously loaded session.
func (t *Tracker) setLocked(s *Session) {
	if sameSession(t.session, s) {
		return
	}
	t.session = s.Clone()
	t.feed.Publish(s.Clone())
}

func sameSession(a, b *Session) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID != b.ID || !a.StartTime.Equal(b.StartTime) || a.TargetDurationHours != b.TargetDurationHours {
		return false
	}
	if a.EndTime == nil || b.EndTime == nil {
		return a.EndTime == nil && b.EndTime == nil
	}
	return a.EndTime.Equal(*b.EndTime)
}

// nowMillis truncates the clock to the millisecond precision used by storage.
func (t *Tracker) nowMillis() time.Time {
	return time.UnixMilli(t.now().UnixMilli())
}
