package handler

import (
	"context"
	"net/http"

	"github.com/samber/lo"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/featureflags"
)

// FlagService manages runtime feature flags.
type FlagService interface {
	List(ctx context.Context) ([]*featureflags.Flag, error)
	Set(ctx context.Context, values map[string]bool) ([]*featureflags.Flag, error)
	InvalidateCache()
}

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service FlagService
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service FlagService) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// ListFeatureFlags handles GET /v1/admin/flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.List(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.List[models.FeatureFlag]{
		Items: lo.Map(flags, func(f *featureflags.Flag, _ int) models.FeatureFlag { return toFeatureFlag(f) }),
	})
}

// UpsertFeatureFlags handles PUT /v1/admin/flags - update feature flags.
// The response lists every flag after the update.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req models.FeatureFlagUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.service.Set(r.Context(), req.Flags); err != nil {
		response.FromError(w, r, err)
		return
	}
	h.ListFeatureFlags(w, r)
}

// InvalidateCache handles POST /v1/admin/flags:invalidate - invalidate flag cache.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}

func toFeatureFlag(f *featureflags.Flag) models.FeatureFlag {
	out := models.FeatureFlag{
		Key:         f.Key,
		Enabled:     f.Enabled,
		Description: featureflags.Known[f.Key],
	}
	if !f.UpdatedAt.IsZero() {
		out.UpdatedAt = models.NewTimestamp(&f.UpdatedAt)
	}
	return out
}
