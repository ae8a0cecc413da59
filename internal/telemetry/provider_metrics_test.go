package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/smartdiet/smartdiet/internal/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestProviderMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)

	m.RecordRequest("gemini", "generate", 120*time.Millisecond, nil)
	m.RecordRequest("gemini", "generate", 2*time.Second, errors.New("timeout"))
	m.RecordRejected("gemini", "disabled")

	metrics := collect(t, reader)

	total, ok := metrics["provider.request.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var requests int64
	for _, dp := range total.DataPoints {
		requests += dp.Value
	}
	assert.Equal(t, int64(2), requests)
	assert.Len(t, total.DataPoints, 2, "failed calls are a separate series")

	rejected, ok := metrics["provider.request.rejected"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejected.DataPoints, 1)
	reason, _ := rejected.DataPoints[0].Attributes.Value("reason")
	assert.Equal(t, "disabled", reason.AsString())
}

func TestProviderMetrics_NilIsSafe(t *testing.T) {
	var m *telemetry.ProviderMetrics
	assert.NotPanics(t, func() {
		m.RecordRequest("gemini", "generate", time.Second, nil)
		m.RecordRejected("gemini", "busy")
	})
}
