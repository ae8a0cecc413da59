package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/api/middleware"
	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/internal/fasting"
	"github.com/smartdiet/smartdiet/internal/featureflags"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
)

// requestWithID returns a request whose context carries a request ID.
func requestWithID(t *testing.T, method, path string) *http.Request {
	t.Helper()
	var processed *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processed = r
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, http.NoBody))
	return processed
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	var p models.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	return p
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req := requestWithID(t, http.MethodGet, "/v1/profile")
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-Id"); got != middleware.GetRequestID(req.Context()) {
		t.Errorf("expected X-Request-Id %q, got %q", middleware.GetRequestID(req.Context()), got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
}

func TestJSON_NilData(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody), http.StatusOK, nil)

	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") != "" {
		t.Error("expected no X-Request-Id without middleware")
	}
}

func TestCreated_SetsLocation(t *testing.T) {
	req := requestWithID(t, http.MethodPost, "/v1/meals")
	rec := httptest.NewRecorder()

	response.Created(rec, req, "/v1/meals/12", map[string]int{"id": 12})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/meals/12" {
		t.Errorf("expected Location /v1/meals/12, got %q", loc)
	}
}

func TestNoContent(t *testing.T) {
	req := requestWithID(t, http.MethodDelete, "/v1/meals/12")
	rec := httptest.NewRecorder()

	response.NoContent(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}

func TestTooManyRequests_RetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	response.TooManyRequests(rec, requestWithID(t, http.MethodPost, "/v1/meals:analyze"), "slow down", "30")

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if ra := rec.Header().Get("Retry-After"); ra != "30" {
		t.Errorf("expected Retry-After 30, got %q", ra)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "invalid input",
			err:        domainerr.InvalidInput("meal description must not be blank"),
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
			wantDetail: "meal description must not be blank",
		},
		{
			name:       "unknown flag",
			err:        &domainerr.Error{Kind: domainerr.KindInvalidInput, Detail: `unknown feature flag "x"`, Err: featureflags.ErrUnknownFlag},
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
			wantDetail: `unknown feature flag "x"`,
		},
		{
			name:       "analysis failed hides cause",
			err:        domainerr.AnalysisFailed("inference request failed", errors.New("dial tcp 10.0.0.1:443: refused")),
			wantStatus: http.StatusBadGateway,
			wantType:   models.ProblemTypeAnalysisFailed,
			wantDetail: "inference request failed",
		},
		{
			name:       "persistence unavailable",
			err:        domainerr.PersistenceUnavailable("list meals", errors.New("disk I/O error")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   models.ProblemTypeUnavailable,
			wantDetail: "storage is temporarily unavailable",
		},
		{
			name:       "meal not found",
			err:        fmt.Errorf("get meal 9: %w", meal.ErrMealNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name:       "profile not found",
			err:        profile.ErrProfileNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name:       "not fasting",
			err:        fasting.ErrNotFasting,
			wantStatus: http.StatusConflict,
			wantType:   models.ProblemTypeConflict,
		},
		{
			name:       "analysis in progress",
			err:        analysis.ErrAnalysisInProgress,
			wantStatus: http.StatusTooManyRequests,
			wantType:   models.ProblemTypeTooManyRequests,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   models.ProblemTypeInternal,
			wantDetail: "an unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithID(t, http.MethodGet, "/v1/test")
			rec := httptest.NewRecorder()

			response.FromError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			p := decodeProblem(t, rec)
			if p.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, p.Type)
			}
			if tt.wantDetail != "" && p.Detail != tt.wantDetail {
				t.Errorf("expected detail %q, got %q", tt.wantDetail, p.Detail)
			}
			if p.Instance != "/v1/test" {
				t.Errorf("expected instance /v1/test, got %q", p.Instance)
			}
			if p.TraceID == "" {
				t.Error("expected trace ID")
			}
		})
	}
}

func TestFromError_ValidationFields(t *testing.T) {
	_, err := profile.NewService(profile.ServiceConfig{Repository: profile.NewInMemoryRepository()}).
		Preview(profile.Input{Nickname: "Sam", WeightKg: 0, HeightCm: 180, Age: 30, Gender: "male", ActivityFactor: 1.2})
	if err == nil {
		t.Fatal("expected validation error")
	}

	rec := httptest.NewRecorder()
	response.FromError(rec, requestWithID(t, http.MethodPut, "/v1/profile"), err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if len(p.Errors) != 1 || p.Errors[0].Field != "weightKg" {
		t.Errorf("expected a weightKg field error, got %+v", p.Errors)
	}
}
