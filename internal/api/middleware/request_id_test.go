package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartdiet/smartdiet/internal/api/middleware"
)

func requestIDOf(t *testing.T, header string) (ctxID, respID string) {
	t.Helper()
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if header != "" {
		req.Header.Set(middleware.RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(middleware.RequestIDHeader)
}

func TestRequestID_Generates(t *testing.T) {
	ctxID, respID := requestIDOf(t, "")
	assert.True(t, strings.HasPrefix(ctxID, "req_"))
	assert.Equal(t, ctxID, respID)
}

func TestRequestID_PreservesClientID(t *testing.T) {
	ctxID, respID := requestIDOf(t, "client-abc_123.4")
	assert.Equal(t, "client-abc_123.4", ctxID)
	assert.Equal(t, "client-abc_123.4", respID)
}

func TestRequestID_ReplacesUnsafeClientID(t *testing.T) {
	for _, id := range []string{"has space", "new\nline", strings.Repeat("a", 65)} {
		ctxID, _ := requestIDOf(t, id)
		assert.NotEqual(t, id, ctxID)
		assert.True(t, strings.HasPrefix(ctxID, "req_"))
	}
}

func TestRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _ := requestIDOf(t, "")
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}
