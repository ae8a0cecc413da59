// Package gemini implements analysis.Generator on top of the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.0-flash"

	// ProviderName identifies this provider.
	ProviderName = "gemini"

	maxErrorBody = 4 << 10
)

// ErrMissingAPIKey is returned by Generate when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini API key is not configured")

// Doer executes a request built per attempt.
type Doer interface {
	Do(ctx context.Context, newReq resilience.RequestFunc) (*http.Response, error)
}

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// HTTPClient defaults to a resilient client without retries.
	HTTPClient Doer

	// Registry receives the default client for health reporting.
	Registry *resilience.Registry

	// MaxRetries applies to the default client only.
	MaxRetries uint64

	Logger zerolog.Logger
}

// Client is a Gemini API client.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    Doer
	logger  zerolog.Logger
}

// NewClient creates a new Gemini client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimPrefix(cfg.Model, "models/")
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         analysis.DefaultTimeout,
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Breaker:         resilience.DefaultBreakerConfig(),
			Registry:        cfg.Registry,
		})
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		logger:  cfg.Logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// API request and response types.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string           `json:"responseMimeType,omitempty"`
	ResponseSchema   *analysis.Schema `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends a single generateContent request and returns the text of
// the first candidate. When schema is set, JSON output is requested.
func (c *Client) Generate(ctx context.Context, prompt string, schema *analysis.Schema) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if schema != nil {
		reqBody.GenerationConfig = generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode generateContent response: %w", err)
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	cand := result.Candidates[0]
	var text strings.Builder
	for _, p := range cand.Content.Parts {
		text.WriteString(p.Text)
	}

	c.logger.Debug().
		Str("model", c.model).
		Str("finish_reason", cand.FinishReason).
		Int("response_bytes", text.Len()).
		Msg("gemini response received")

	return text.String(), nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini returned %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
	}
	return fmt.Errorf("gemini returned status %d", resp.StatusCode)
}
