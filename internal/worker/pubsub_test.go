package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/fasting"
)

func newTestJobs(checks map[string]HealthChecker) *Jobs {
	tracker := fasting.NewTracker(fasting.TrackerConfig{Repository: fasting.NewInMemoryRepository(), Logger: zerolog.Nop()})
	watcher := NewStageWatcher(StageWatcherConfig{Sessions: tracker, Logger: zerolog.Nop()})
	return NewJobs(watcher, checks, zerolog.Nop())
}

func TestJobs_Dispatch(t *testing.T) {
	jobs := newTestJobs(nil)

	jobType, err := jobs.Dispatch(context.Background(), []byte(`{"job_type":"fasting_check"}`))
	require.NoError(t, err)
	assert.Equal(t, JobFastingCheck, jobType)

	jobType, err = jobs.Dispatch(context.Background(), []byte(`{"job_type":"health_check"}`))
	require.NoError(t, err)
	assert.Equal(t, JobHealthCheck, jobType)
}

func TestJobs_Dispatch_Unknown(t *testing.T) {
	_, err := newTestJobs(nil).Dispatch(context.Background(), []byte(`{"job_type":"provider_refresh"}`))
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestJobs_HealthCheckFailure(t *testing.T) {
	jobs := newTestJobs(map[string]HealthChecker{
		"storage": func(context.Context) error { return errors.New("connection refused") },
		"flags":   func(context.Context) error { return nil },
	})

	_, err := jobs.Dispatch(context.Background(), []byte(`{"job_type":"health_check"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage: connection refused")
}

func TestPubSubHandler_AckDecisions(t *testing.T) {
	failing := newTestJobs(map[string]HealthChecker{
		"storage": func(context.Context) error { return errors.New("down") },
	})
	h := &PubSubHandler{jobs: failing, logger: zerolog.Nop()}
	ctx := context.Background()

	assert.True(t, h.handle(ctx, "1", []byte(`{"job_type":"fasting_check"}`)))
	assert.True(t, h.handle(ctx, "2", []byte(`{"job_type":"nope"}`)), "unknown jobs are dropped")
	assert.True(t, h.handle(ctx, "3", []byte(`not json`)), "malformed messages are dropped")
	assert.False(t, h.handle(ctx, "4", []byte(`{"job_type":"health_check"}`)), "failed jobs are retried")
}
