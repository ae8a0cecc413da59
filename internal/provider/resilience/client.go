package resilience

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider in the registry and in breaker callbacks.
	Name string

	// Timeout bounds each HTTP attempt. Default 10s.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first one.
	// Zero disables retries.
	MaxRetries uint64

	// Backoff bounds between retries. Defaults 100ms and 5s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	Breaker BreakerConfig

	// Registry, when set, receives the client and its outcomes.
	Registry *Registry

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// RequestFunc builds a fresh request for every attempt so that request
// bodies can be replayed.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Client is an HTTP client guarded by a circuit breaker.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	cfg      ClientConfig
	registry *Registry
}

// NewClient creates a new resilient client and registers it when a registry is configured.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	c := &Client{
		name: cfg.Name,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		breaker:  newBreaker[*http.Response](cfg.Name, cfg.Breaker), //nolint:bodyclose // type param, not response
		cfg:      cfg,
		registry: cfg.Registry,
	}
	if c.registry != nil {
		c.registry.Register(c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// State returns the current breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters for the current generation.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// Do sends the request built by newReq. Network errors, 429 and 5xx responses
// are retried up to MaxRetries times with exponential backoff. When retries
// are exhausted on an HTTP error status, the last response is returned with a
// nil error and the caller owns its body.
func (c *Client) Do(ctx context.Context, newReq RequestFunc) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	var last *http.Response
	attempt := func() error {
		if last != nil {
			drain(last)
			last = nil
		}

		req, err := newReq(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // returned to caller
			r, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &StatusError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(ErrCircuitOpen)
		case err != nil:
			last = resp
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		case resp.StatusCode == http.StatusTooManyRequests:
			last = resp
			return &StatusError{StatusCode: resp.StatusCode}
		}
		last = resp
		return nil
	}

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx))
	if err != nil {
		var se *StatusError
		if last != nil && errors.As(err, &se) {
			c.record(se)
			return last, nil
		}
		if last != nil {
			drain(last)
		}
		c.record(err)
		return nil, err
	}

	c.record(nil)
	return last, nil
}

func (c *Client) record(err error) {
	if c.registry == nil {
		return
	}
	if err != nil {
		c.registry.RecordFailure(c.name, err)
		return
	}
	c.registry.RecordSuccess(c.name)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// StatusError is a retryable HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "provider returned " + http.StatusText(e.StatusCode)
}
