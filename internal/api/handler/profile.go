package handler

import (
	"context"
	"net/http"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/profile"
)

// ProfileService is the profile behaviour the handler needs.
type ProfileService interface {
	Current(ctx context.Context) (*profile.UserProfile, error)
	Save(ctx context.Context, in profile.Input) (*profile.UserProfile, error)
	Preview(in profile.Input) (bodymetrics.Result, error)
}

// ProfileHandler handles the user profile endpoints.
type ProfileHandler struct {
	service ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /v1/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Current(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if p == nil {
		response.FromError(w, r, profile.ErrProfileNotFound)
		return
	}
	response.JSON(w, r, http.StatusOK, toProfile(p))
}

// PutProfile handles PUT /v1/profile. The profile is replaced as a whole.
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Save(r.Context(), toProfileInput(req))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toProfile(p))
}

// PreviewMetrics handles POST /v1/profile:preview. Nothing is stored.
func (h *ProfileHandler) PreviewMetrics(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Preview(toProfileInput(req))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.MetricsPreview{
		BMI:           res.BMI,
		BMR:           res.BMR,
		TDEE:          res.TDEE,
		CalorieTarget: res.CalorieTarget,
	})
}

// GetOptions handles GET /v1/profile/options.
func (h *ProfileHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	levels := make([]models.ActivityLevel, len(bodymetrics.ActivityLevels))
	for i, lvl := range bodymetrics.ActivityLevels {
		levels[i] = models.ActivityLevel{Factor: float64(lvl), Label: lvl.Label()}
	}
	response.JSON(w, r, http.StatusOK, models.ProfileOptions{
		ActivityLevels:   levels,
		HealthConditions: bodymetrics.HealthConditions,
		Genders:          []string{string(bodymetrics.GenderMale), string(bodymetrics.GenderFemale)},
	})
}

func toProfileInput(req models.ProfileRequest) profile.Input {
	return profile.Input{
		Nickname:         req.Nickname,
		WeightKg:         req.WeightKg,
		HeightCm:         req.HeightCm,
		Age:              req.Age,
		Gender:           req.Gender,
		ActivityFactor:   req.ActivityFactor,
		HealthConditions: req.HealthConditions,
	}
}

func toProfile(p *profile.UserProfile) models.Profile {
	conditions := p.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}
	return models.Profile{
		Nickname:         p.Nickname,
		WeightKg:         p.WeightKg,
		HeightCm:         p.HeightCm,
		Age:              p.Age,
		Gender:           string(p.Gender),
		ActivityFactor:   float64(p.Activity),
		ActivityLabel:    p.Activity.Label(),
		BMI:              p.BMI,
		CalorieTarget:    p.CalorieTarget,
		HealthConditions: conditions,
		UpdatedAt:        models.Timestamp(p.UpdatedAt),
	}
}
