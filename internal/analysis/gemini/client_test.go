package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/analysis/gemini"
	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/internal/provider/resilience"
)

func newClient(t *testing.T, url string) *gemini.Client {
	t.Helper()
	return gemini.NewClient(gemini.ClientConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: url,
		HTTPClient: resilience.NewClient(resilience.ClientConfig{
			Name:    "gemini-test",
			Timeout: 2 * time.Second,
		}),
		Logger: zerolog.Nop(),
	})
}

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}

		contents := body["contents"].([]any)
		parts := contents[0].(map[string]any)["parts"].([]any)
		assert.Equal(t, "describe my lunch", parts[0].(map[string]any)["text"])

		cfg := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		schema := cfg["responseSchema"].(map[string]any)
		assert.Equal(t, "OBJECT", schema["type"])
		assert.Len(t, schema["required"], 6)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "{\"description\": \"Salad\","}, {"text": " \"calories\": 220}"}]},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer server.Close()

	text, err := newClient(t, server.URL).Generate(context.Background(), "describe my lunch", analysis.ResponseSchema())
	require.NoError(t, err)
	assert.Equal(t, `{"description": "Salad", "calories": 220}`, text)
}

func TestClient_TransportErrorOmitsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := newClient(t, baseURL).Generate(context.Background(), "describe my lunch", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate content")
	assert.NotContains(t, err.Error(), "test-key")
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"plain status", http.StatusForbidden, `nope`, "status 403"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"bad json", http.StatusOK, `<html>`, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL).Generate(context.Background(), "x", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := gemini.NewClient(gemini.ClientConfig{Logger: zerolog.Nop()})

	_, err := client.Generate(context.Background(), "x", nil)
	assert.ErrorIs(t, err, gemini.ErrMissingAPIKey)
	assert.Equal(t, gemini.DefaultModel, client.Model())
}

func TestClient_WithOrchestrator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{
					"text": "```json\n{\"description\":\"Lentil soup\",\"calories\":310,\"protein\":18,\"carbs\":45.5,\"fat\":6,\"analysis\":\"High in fibre.\"}\n```",
				}}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := analysis.NewOrchestrator(analysis.OrchestratorConfig{
		Generator: newClient(t, server.URL),
		Logger:    zerolog.Nop(),
	})

	res, err := o.Analyze(context.Background(), "lentil soup", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 310, res.Calories)
	assert.Equal(t, 45.5, res.Carbs)
}

func TestClient_ServerErrorMapsToAnalysisFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	o := analysis.NewOrchestrator(analysis.OrchestratorConfig{
		Generator: newClient(t, server.URL),
		Logger:    zerolog.Nop(),
	})

	_, err := o.Analyze(context.Background(), "lentil soup", nil, nil)
	assert.ErrorIs(t, err, domainerr.ErrAnalysisFailed)
}
