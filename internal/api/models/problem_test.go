package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/api/models"
)

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeValidation, "Validation error", http.StatusBadRequest, "req_1").
		WithDetail("weightKg must be positive").
		WithInstance("/v1/profile").
		WithErrors([]models.FieldError{{Field: "weightKg", Message: "must be positive", Code: "OUT_OF_RANGE"}})

	assert.Equal(t, "weightKg must be positive", p.Detail)
	assert.Equal(t, "/v1/profile", p.Instance)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "OUT_OF_RANGE", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "description", Message: "required"},
	})
	p.Instance = "/v1/meals"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "invalid input", result.Detail)
	assert.Equal(t, "/v1/meals", result.Instance)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "description", result.Errors[0].Field)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		problem *models.Problem
		typ     string
		status  int
	}{
		{"unauthorized", models.NewUnauthorized("r", "d"), models.ProblemTypeUnauthorized, http.StatusUnauthorized},
		{"not found", models.NewNotFound("r", "d"), models.ProblemTypeNotFound, http.StatusNotFound},
		{"conflict", models.NewConflict("r", "d"), models.ProblemTypeConflict, http.StatusConflict},
		{"too many", models.NewTooManyRequests("r", "d"), models.ProblemTypeTooManyRequests, http.StatusTooManyRequests},
		{"internal", models.NewInternalError("r", "d"), models.ProblemTypeInternal, http.StatusInternalServerError},
		{"analysis", models.NewAnalysisFailed("r", "d"), models.ProblemTypeAnalysisFailed, http.StatusBadGateway},
		{"unavailable", models.NewServiceUnavailable("r", "d"), models.ProblemTypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.problem.Type)
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, "d", tt.problem.Detail)
			assert.Equal(t, "r", tt.problem.TraceID)
			assert.NotEmpty(t, tt.problem.Title)
		})
	}
}
