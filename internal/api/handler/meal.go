package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/meal"
)

// maxMealListLimit caps ?limit on the meal list.
const maxMealListLimit = 500

// MealService is the meal log behaviour the handler needs.
type MealService interface {
	AddManual(ctx context.Context, description string) (*meal.Record, error)
	Get(ctx context.Context, id int64) (*meal.Record, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*meal.Record, error)
	Recent(ctx context.Context, n int) ([]*meal.Record, error)
	Today(ctx context.Context) (*meal.DailySummary, error)
}

// MealHandler handles the meal log endpoints.
type MealHandler struct {
	service MealService
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(service MealService) *MealHandler {
	return &MealHandler{service: service}
}

// ListMeals handles GET /v1/meals. An optional limit returns only the newest meals.
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	var (
		records []*meal.Record
		err     error
	)
	if r.URL.Query().Has("limit") {
		n, ok := queryLimit(w, r, meal.DefaultRecentLimit, maxMealListLimit)
		if !ok {
			return
		}
		records, err = h.service.Recent(r.Context(), n)
	} else {
		records, err = h.service.List(r.Context())
	}
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.List[models.Meal]{
		Items: lo.Map(records, func(rec *meal.Record, _ int) models.Meal { return toMeal(rec) }),
	})
}

// CreateMeal handles POST /v1/meals. The meal is logged without nutrition values.
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req models.MealRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.service.AddManual(r.Context(), req.Description)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, r, mealLocation(rec.ID), toMeal(rec))
}

// GetMeal handles GET /v1/meals/{mealId}.
func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "mealId")
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toMeal(rec))
}

// DeleteMeal handles DELETE /v1/meals/{mealId}.
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "mealId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// GetToday handles GET /v1/meals/today.
func (h *MealHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Today(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.DailySummary{
		Date:      s.Date.Format("2006-01-02"),
		Consumed:  s.Consumed,
		Target:    s.Target,
		Remaining: s.Remaining,
		Progress:  s.Progress,
	})
}

func mealLocation(id int64) string {
	return "/v1/meals/" + strconv.FormatInt(id, 10)
}

func toMeal(rec *meal.Record) models.Meal {
	return models.Meal{
		ID:          rec.ID,
		Description: rec.Description,
		Timestamp:   models.Timestamp(rec.Timestamp),
		ImagePath:   rec.ImagePath,
		Calories:    rec.Calories,
		Protein:     rec.Protein,
		Carbs:       rec.Carbs,
		Fat:         rec.Fat,
		Analysis:    rec.Analysis,
		Analyzed:    rec.Analyzed(),
	}
}
