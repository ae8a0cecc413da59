package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 3, WindowLength: 90 * time.Second}
	handler := middleware.RateLimitByIP(cfg)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/meals", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/meals", http.NoBody)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "urn:smartdiet:problem:too-many-requests")
	assert.Contains(t, rec.Body.String(), "3 requests per 1m30s")
}

func TestRateLimitByIP_SeparateClients(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute}
	handler := middleware.RateLimitByIP(cfg)(okHandler())

	for _, addr := range []string{"10.0.0.2:1", "10.0.0.3:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
	}
}

func TestRateLimit_KeysBySubject(t *testing.T) {
	svc := newJWTService(nil)
	tokenA, _, err := svc.Issue("alice", time.Hour)
	require.NoError(t, err)
	tokenB, _, err := svc.Issue("bob", time.Hour)
	require.NoError(t, err)

	cfg := middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute}
	handler := middleware.Auth(svc)(middleware.RateLimit(cfg)(okHandler()))

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/meals:analyze", http.NoBody)
		req.RemoteAddr = "10.0.0.9:1"
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(tokenA))
	assert.Equal(t, http.StatusOK, do(tokenB), "same IP, different subject")
	assert.Equal(t, http.StatusTooManyRequests, do(tokenA))
}

func TestRateLimitPresets(t *testing.T) {
	assert.Less(t, middleware.AnalysisRateLimit.RequestLimit, middleware.AdminRateLimit.RequestLimit)
	assert.Less(t, middleware.AdminRateLimit.RequestLimit, middleware.StandardRateLimit.RequestLimit)
}
