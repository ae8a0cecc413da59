// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/api/middleware"
	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/internal/fasting"
	"github.com/smartdiet/smartdiet/internal/featureflags"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.RequestIDHeader, requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 response with an optional Location header.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, data)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.RequestIDHeader, requestID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.WithInstance(r.URL.Path).Write(w)
}

func traceID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(traceID(r), detail, errors))
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(traceID(r), detail))
}

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewConflict(traceID(r), detail))
}

// TooManyRequests writes a 429 response. retryAfter is omitted when empty.
func TooManyRequests(w http.ResponseWriter, r *http.Request, detail, retryAfter string) {
	if retryAfter != "" {
		w.Header().Set("Retry-After", retryAfter)
	}
	Error(w, r, models.NewTooManyRequests(traceID(r), detail))
}

// InternalError writes a 500 response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(traceID(r), detail))
}

// ServiceUnavailable writes a 503 response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewServiceUnavailable(traceID(r), detail))
}

// analysisRetryAfter is a hint for clients racing an in-flight analysis.
const analysisRetryAfter = "5"

// FromError maps a service error to its problem response. Sentinel errors
// are checked before error kinds since some sentinels travel inside a kind.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *profile.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]models.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = models.FieldError{Field: f.Field, Message: f.Message}
		}
		BadRequest(w, r, "the profile contains invalid fields", fields)

	case errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, meal.ErrMealNotFound),
		errors.Is(err, fasting.ErrSessionNotFound),
		errors.Is(err, featureflags.ErrFlagNotFound):
		NotFound(w, r, err.Error())

	case errors.Is(err, fasting.ErrNotFasting):
		Conflict(w, r, err.Error())

	case errors.Is(err, analysis.ErrAnalysisInProgress):
		TooManyRequests(w, r, err.Error(), analysisRetryAfter)

	case errors.Is(err, domainerr.ErrInvalidInput):
		BadRequest(w, r, detailOf(err), nil)

	case errors.Is(err, domainerr.ErrAnalysisFailed):
		Error(w, r, models.NewAnalysisFailed(traceID(r), detailOf(err)))

	case errors.Is(err, domainerr.ErrPersistenceUnavailable):
		ServiceUnavailable(w, r, "storage is temporarily unavailable")

	default:
		InternalError(w, r, "an unexpected error occurred")
	}
}

// detailOf returns the domain detail without the wrapped cause, which may
// carry provider internals.
func detailOf(err error) string {
	var e *domainerr.Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}
