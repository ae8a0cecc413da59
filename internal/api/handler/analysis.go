package handler

import (
	"context"
	"net/http"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/meal"
)

// Analyzer runs meal analyses and saves accepted results.
type Analyzer interface {
	Analyze(ctx context.Context, description string) (*analysis.Result, error)
	Save(ctx context.Context, res *analysis.Result, imagePath *string) (*meal.Record, error)
}

// AnalysisHandler handles the meal analysis endpoints. Analysing and saving
// are separate calls so the user can review a result before it is logged.
type AnalysisHandler struct {
	analyzer Analyzer
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analyzer Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// AnalyzeMeal handles POST /v1/meals:analyze.
func (h *AnalysisHandler) AnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeMealRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), req.Description)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.MealAnalysis{
		Description: res.Description,
		Calories:    res.Calories,
		Protein:     res.Protein,
		Carbs:       res.Carbs,
		Fat:         res.Fat,
		Analysis:    res.Analysis,
	})
}

// SaveAnalysis handles POST /v1/meals:save.
func (h *AnalysisHandler) SaveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.SaveMealAnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.analyzer.Save(r.Context(), &analysis.Result{
		Description: req.Description,
		Calories:    req.Calories,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fat:         req.Fat,
		Analysis:    req.Analysis,
	}, req.ImagePath)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, r, mealLocation(rec.ID), toMeal(rec))
}
