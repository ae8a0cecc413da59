package middleware

import (
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/smartdiet/smartdiet/internal/api/middleware"

// durationBuckets extend to a minute so meal analysis calls, which wait on
// the inference provider, do not all land in the overflow bucket.
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60}

// Metrics records per-route HTTP server metrics.
type Metrics struct {
	duration     metric.Float64Histogram
	total        metric.Int64Counter
	active       metric.Int64UpDownCounter
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	var m Metrics
	var err, errs error

	m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	errs = errors.Join(errs, err)

	m.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Number of HTTP server requests"),
		metric.WithUnit("{request}"))
	errs = errors.Join(errs, err)

	m.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of requests being served"),
		metric.WithUnit("{request}"))
	errs = errors.Join(errs, err)

	m.requestSize, err = meter.Int64Histogram("http.server.request.body.size",
		metric.WithDescription("Size of request bodies"),
		metric.WithUnit("By"))
	errs = errors.Join(errs, err)

	m.responseSize, err = meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Size of response bodies"),
		metric.WithUnit("By"))
	errs = errors.Join(errs, err)

	if errs != nil {
		return nil, errs
	}
	return &m, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
// Series are keyed by route pattern, so IDs in the path do not add cardinality.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			method := metric.WithAttributes(attribute.String("http.request.method", r.Method))
			m.active.Add(ctx, 1, method)
			defer m.active.Add(ctx, -1, method)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.Int("http.response.status_code", rec.status),
			}
			if rec.status >= http.StatusBadRequest {
				attrs = append(attrs, attribute.Bool("error", true))
			}
			opts := metric.WithAttributes(attrs...)

			m.duration.Record(ctx, time.Since(start).Seconds(), opts)
			m.total.Add(ctx, 1, opts)
			if r.ContentLength > 0 {
				m.requestSize.Record(ctx, r.ContentLength, opts)
			}
			m.responseSize.Record(ctx, rec.written, opts)
		})
	}
}
