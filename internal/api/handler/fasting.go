package handler

import (
	"context"
	"net/http"

	"github.com/samber/lo"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/fasting"
)

const (
	defaultSessionLimit = 30
	maxSessionLimit     = 365
)

// FastingTracker is the fasting behaviour the handler needs.
type FastingTracker interface {
	Load(ctx context.Context) (*fasting.Session, error)
	Now() fasting.Snapshot
	Start(ctx context.Context, targetHours int) (*fasting.Session, error)
	Stop(ctx context.Context) (*fasting.Session, error)
	Toggle(ctx context.Context) (*fasting.Session, error)
	History(ctx context.Context, limit int) ([]*fasting.Session, error)
}

// FastingHandler handles the fasting endpoints.
type FastingHandler struct {
	tracker FastingTracker
}

// NewFastingHandler creates a new FastingHandler.
func NewFastingHandler(tracker FastingTracker) *FastingHandler {
	return &FastingHandler{tracker: tracker}
}

// GetStatus handles GET /v1/fasting. The latest session is reloaded so that
// sessions started by another process are visible.
func (h *FastingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tracker.Load(r.Context()); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toFastingStatus(h.tracker.Now()))
}

// Toggle handles POST /v1/fasting:toggle.
func (h *FastingHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tracker.Toggle)
}

// Start handles POST /v1/fasting:start. An empty body uses the default target.
func (h *FastingHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartFastRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	target := fasting.DefaultTargetHours
	if req.TargetHours != nil {
		target = *req.TargetHours
	}

	h.transition(w, r, func(ctx context.Context) (*fasting.Session, error) {
		return h.tracker.Start(ctx, target)
	})
}

// Stop handles POST /v1/fasting:stop.
func (h *FastingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tracker.Stop)
}

// ListSessions handles GET /v1/fasting/sessions.
func (h *FastingHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r, defaultSessionLimit, maxSessionLimit)
	if !ok {
		return
	}

	sessions, err := h.tracker.History(r.Context(), limit)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.List[models.FastingSession]{
		Items: lo.Map(sessions, func(s *fasting.Session, _ int) models.FastingSession { return toFastingSession(s) }),
	})
}

// ListStages handles GET /v1/fasting/stages.
func (h *FastingHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.List[models.FastingStage]{
		Items: lo.Map(fasting.Stages(), func(s fasting.Stage, _ int) models.FastingStage { return *toFastingStage(&s) }),
	})
}

func (h *FastingHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context) (*fasting.Session, error)) {
	if _, err := fn(r.Context()); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toFastingStatus(h.tracker.Now()))
}

func toFastingStatus(s fasting.Snapshot) models.FastingStatus {
	status := models.FastingStatus{
		State:          string(s.State),
		TargetHours:    s.TargetHours,
		ElapsedSeconds: int64(s.Elapsed.Seconds()),
		Elapsed:        s.ElapsedString,
		ElapsedHours:   s.ElapsedHours,
		CurrentStage:   toFastingStage(s.CurrentStage),
		NextStage:      toFastingStage(s.NextStage),
		StageProgress:  s.StageProgress,
	}
	if !s.Active() {
		return status
	}

	status.SessionID = lo.ToPtr(s.SessionID)
	status.StartTime = models.NewTimestamp(&s.StartTime)
	if s.NextStage != nil {
		status.HoursUntilNextStage = lo.ToPtr(s.HoursUntilNextStage)
	}
	if s.TargetHours > fasting.OpenEnded {
		status.TargetProgress = lo.ToPtr(s.TargetProgress)
	}
	return status
}

func toFastingStage(s *fasting.Stage) *models.FastingStage {
	if s == nil {
		return nil
	}
	out := &models.FastingStage{
		Index:       s.Index,
		StartHour:   s.StartHour,
		Title:       s.Title,
		Description: s.Description,
		Icon:        s.Icon,
	}
	if !s.Final() {
		out.EndHour = lo.ToPtr(s.EndHour)
	}
	return out
}

func toFastingSession(s *fasting.Session) models.FastingSession {
	out := models.FastingSession{
		ID:          s.ID,
		StartTime:   models.Timestamp(s.StartTime),
		EndTime:     models.NewTimestamp(s.EndTime),
		TargetHours: s.TargetDurationHours,
	}
	if s.EndTime != nil {
		out.DurationSeconds = lo.ToPtr(int64(s.EndTime.Sub(s.StartTime).Seconds()))
	}
	return out
}
