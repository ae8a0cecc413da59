package resilience_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/provider/resilience"
)

func get(url string) resilience.RequestFunc {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	}
}

func fastConfig(name string, retries uint64) resilience.ClientConfig {
	return resilience.ClientConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      retries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		Breaker: resilience.BreakerConfig{
			MinRequests: 100,
		},
	}
}

func TestClient_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := fastConfig("ok", 0)
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	resp, err := client.Do(context.Background(), get(server.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	h := registry.Health("ok")
	require.NotNil(t, h)
	assert.NotNil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)
}

func TestClient_NoRetriesByDefault(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("no-retry", 0))

	resp, err := client.Do(context.Background(), get(server.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RetryReplaysBody(t *testing.T) {
	var (
		attempts atomic.Int32
		mu       sync.Mutex
		bodies   []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("retry", 5))

	resp, err := client.Do(context.Background(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, server.URL, strings.NewReader("payload"))
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"payload", "payload", "payload"}, bodies)
}

func TestClient_4xxNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("4xx", 3))

	resp, err := client.Do(context.Background(), get(server.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_CircuitBreakerTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := fastConfig("trip", 0)
	cfg.Breaker = resilience.BreakerConfig{MinRequests: 3, FailureRatio: 0.5, OpenTimeout: time.Minute}
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	for range 3 {
		resp, err := client.Do(context.Background(), get(server.URL))
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.Do(context.Background(), get(server.URL))
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)

	h := registry.Health("trip")
	require.NotNil(t, h)
	assert.Equal(t, resilience.StatusUnhealthy, h.Status())
	assert.Contains(t, h.LastError, "circuit breaker is open")
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("cancel", 3))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Do(ctx, get(server.URL))
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTripAfter(t *testing.T) {
	trip := resilience.TripAfter(5, 0.5)

	assert.False(t, trip(gobreaker.Counts{}))
	assert.False(t, trip(gobreaker.Counts{Requests: 4, TotalFailures: 4}))
	assert.False(t, trip(gobreaker.Counts{Requests: 10, TotalFailures: 4}))
	assert.True(t, trip(gobreaker.Counts{Requests: 5, TotalFailures: 3}))
	assert.True(t, trip(gobreaker.Counts{Requests: 10, TotalFailures: 5}))
}

func TestStatusError(t *testing.T) {
	err := &resilience.StatusError{StatusCode: http.StatusServiceUnavailable}
	assert.Equal(t, "provider returned Service Unavailable", err.Error())
}
