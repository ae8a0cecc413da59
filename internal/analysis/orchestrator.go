package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartdiet/smartdiet/internal/domainerr"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
	"github.com/smartdiet/smartdiet/internal/telemetry"
)

// DefaultTimeout bounds a single inference request.
const DefaultTimeout = 30 * time.Second

const (
	tracerName   = "github.com/smartdiet/smartdiet/internal/analysis"
	providerName = "inference"
	opAnalyze    = "analyze_meal"
)

// OrchestratorConfig holds configuration for the Orchestrator.
type OrchestratorConfig struct {
	Generator Generator
	Locale    LocaleProvider

	// Switch is optional. When it reports analysis as disabled, Analyze fails
	// without contacting the generator.
	Switch Switch

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	Logger  zerolog.Logger
	Metrics *telemetry.ProviderMetrics
}

// Orchestrator runs one analysis at a time.
type Orchestrator struct {
	generator Generator
	locale    LocaleProvider
	sw        Switch
	timeout   time.Duration
	logger    zerolog.Logger
	metrics   *telemetry.ProviderMetrics
	tracer    trace.Tracer

	inFlight atomic.Bool
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		generator: cfg.Generator,
		locale:    cfg.Locale,
		sw:        cfg.Switch,
		timeout:   timeout,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer(tracerName),
	}
}

// Busy reports whether an analysis is currently running.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

// Analyze builds the prompt from description, the optional profile and the
// recent history, sends it to the generator and validates the response.
//
// A blank description fails with InvalidInput. A second call while one is
// running fails with ErrAnalysisInProgress. Transport errors, timeouts and
// malformed responses fail with AnalysisFailed.
func (o *Orchestrator) Analyze(ctx context.Context, description string, p *profile.UserProfile, history []*meal.Record) (*Result, error) {
	return o.AnalyzeRequest(ctx, Request{Description: description, Profile: p, History: history})
}

// AnalyzeRequest is Analyze with the full prompt context, including today's
// intake. req.Language is ignored in favour of the configured locale.
func (o *Orchestrator) AnalyzeRequest(ctx context.Context, req Request) (*Result, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domainerr.InvalidInput("meal description is required")
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		o.metrics.RecordRejected(providerName, "in_progress")
		return nil, ErrAnalysisInProgress
	}
	defer o.inFlight.Store(false)

	if o.sw != nil && o.sw.IsMealAnalysisDisabled(ctx) {
		o.metrics.RecordRejected(providerName, "disabled")
		return nil, domainerr.AnalysisFailed("meal analysis is disabled", nil)
	}

	ctx, span := o.tracer.Start(ctx, "analysis.Analyze",
		trace.WithAttributes(
			attribute.Bool("analysis.has_profile", req.Profile != nil),
			attribute.Int("analysis.history_size", min(len(req.History), HistoryLimit)),
		),
	)
	defer span.End()

	req.Description = description
	req.Language = ""
	if o.locale != nil {
		req.Language = o.locale.DisplayLanguage()
	}
	prompt := BuildPrompt(req)

	result, err := o.generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn().Err(err).Msg("meal analysis failed")
		return nil, err
	}

	if strings.TrimSpace(result.Description) == "" {
		result.Description = description
	}

	span.SetAttributes(attribute.Int("analysis.calories", result.Calories))
	o.logger.Info().
		Int("calories", result.Calories).
		Float64("protein", result.Protein).
		Msg("meal analysis completed")

	return result, nil
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	raw, err := o.generator.Generate(ctx, prompt, ResponseSchema())
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	o.metrics.RecordRequest(providerName, opAnalyze, time.Since(start), err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domainerr.AnalysisFailed(fmt.Sprintf("inference timed out after %s", o.timeout), err)
		}
		if errors.Is(err, domainerr.ErrAnalysisFailed) {
			return nil, err
		}
		return nil, domainerr.AnalysisFailed("inference request failed", err)
	}

	return ParseResponse(raw)
}
