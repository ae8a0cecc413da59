// Package handler provides HTTP handlers for the SmartDiet API.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
)

// maxBodyBytes bounds request bodies. Meal descriptions are short.
const maxBodyBytes = 64 << 10

// decodeJSON decodes a single JSON object from the request body into dst.
// It writes a 400 problem and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decode(w, r, http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
}

// decodeOptionalJSON is decodeJSON that leaves dst untouched when the body
// is empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeDecodeError(w, r, err)
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	return decode(w, r, bytes.NewReader(body), dst)
}

func decode(w http.ResponseWriter, r *http.Request, body io.Reader, dst any) bool {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeDecodeError(w, r, err)
		return false
	}
	if dec.More() {
		response.BadRequest(w, r, "request body must contain a single JSON object", nil)
		return false
	}
	return true
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		response.BadRequest(w, r, "request body must not be empty", nil)
	case errors.As(err, &maxErr):
		response.BadRequest(w, r, fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit), nil)
	default:
		response.BadRequest(w, r, "request body is not valid JSON: "+err.Error(), nil)
	}
}

// pathID parses a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "invalid "+name, []models.FieldError{
			{Field: name, Message: "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

// queryLimit parses the optional limit query parameter, bounded by max.
func queryLimit(w http.ResponseWriter, r *http.Request, def, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		response.BadRequest(w, r, "invalid limit", []models.FieldError{
			{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", max)},
		})
		return 0, false
	}
	return n, true
}
