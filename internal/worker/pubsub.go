package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the subscription.
const (
	JobFastingCheck = "fasting_check"
	JobHealthCheck  = "health_check"
)

// ErrUnknownJob is returned by Dispatch for an unrecognised job type.
var ErrUnknownJob = errors.New("unknown job type")

// JobMessage is the payload of a worker job message.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// HealthChecker verifies a dependency.
type HealthChecker func(ctx context.Context) error

// Jobs dispatches job messages to the watcher and health checks.
type Jobs struct {
	watcher *StageWatcher
	checks  map[string]HealthChecker
	logger  zerolog.Logger
}

// NewJobs creates a job dispatcher. checks maps a dependency name to its probe.
func NewJobs(watcher *StageWatcher, checks map[string]HealthChecker, logger zerolog.Logger) *Jobs {
	return &Jobs{watcher: watcher, checks: checks, logger: logger}
}

// Dispatch decodes data and runs the job it names.
func (j *Jobs) Dispatch(ctx context.Context, data []byte) (string, error) {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", fmt.Errorf("decoding job message: %w", err)
	}

	switch msg.JobType {
	case JobFastingCheck:
		res, err := j.watcher.Check(ctx)
		if err != nil {
			return msg.JobType, err
		}
		j.logger.Info().
			Str("state", string(res.Snapshot.State)).
			Int("notifications", len(res.Messages)).
			Bool("suppressed", res.Suppressed).
			Msg("fasting check completed")
		return msg.JobType, nil
	case JobHealthCheck:
		return msg.JobType, j.healthCheck(ctx)
	default:
		return msg.JobType, fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

func (j *Jobs) healthCheck(ctx context.Context) error {
	var errs []error
	for name, check := range j.checks {
		if err := check(ctx); err != nil {
			j.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// PubSubHandler receives job messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	jobs             *Jobs
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Jobs             *Jobs
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	// Jobs are cheap; a small window keeps checks from piling up.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 4
	subscriber.ReceiveSettings.MaxExtension = 2 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		jobs:             cfg.Jobs,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if h.handle(ctx, msg.ID, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handle runs one message and reports whether it should be acked. Malformed
// and unknown messages are acked so they are not redelivered.
func (h *PubSubHandler) handle(ctx context.Context, id string, data []byte) bool {
	start := time.Now()
	logger := h.logger.With().Str("message_id", id).Logger()

	jobType, err := h.jobs.Dispatch(ctx, data)
	switch {
	case err == nil:
		logger.Info().Str("job_type", jobType).Dur("duration", time.Since(start)).Msg("job completed")
		return true
	case errors.Is(err, ErrUnknownJob), jobType == "" && isDecodeError(err):
		logger.Warn().Err(err).Msg("dropping message")
		return true
	default:
		logger.Error().Err(err).Str("job_type", jobType).Msg("job failed")
		return false
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
