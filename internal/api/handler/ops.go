package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/api/response"
	"github.com/smartdiet/smartdiet/internal/featureflags"
	"github.com/smartdiet/smartdiet/internal/provider/resilience"
)

// pingTimeout bounds each dependency check.
const pingTimeout = 2 * time.Second

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ProviderHealthSource reports the health of outbound providers.
type ProviderHealthSource interface {
	All() []*resilience.Health
}

// FlagLister lists runtime feature flags.
type FlagLister interface {
	List(ctx context.Context) ([]*featureflags.Flag, error)
}

// OpsConfig holds the dependencies of the operational endpoints. Nil fields
// are skipped.
type OpsConfig struct {
	Version   string
	BuildTime string
	Storage   Pinger
	Providers ProviderHealthSource
	Flags     FlagLister
	Logger    zerolog.Logger
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The service is ready when its
// storage answers a ping.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	storage := h.storageStatus(r.Context())
	health := models.Health{
		Status: storage.Status,
		Time:   models.Timestamp(time.Now()),
	}
	if storage.Status != models.HealthStatusOK {
		health.Details = map[string]any{"storage": *storage.Detail}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - storage, provider and flag status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Version:    h.cfg.Version,
		Time:       models.Timestamp(time.Now()),
		Components: []models.ComponentStatus{h.storageStatus(r.Context())},
		Providers:  []models.ProviderStatus{},
	}

	if h.cfg.Providers != nil {
		for _, p := range h.cfg.Providers.All() {
			status.Providers = append(status.Providers, toProviderStatus(p))
		}
	}

	if h.cfg.Flags != nil {
		flags, err := h.cfg.Flags.List(r.Context())
		if err != nil {
			h.cfg.Logger.Warn().Err(err).Msg("failed to list feature flags for status")
		}
		for _, f := range flags {
			if f.Enabled {
				status.DisabledFeatures = append(status.DisabledFeatures, f.Key)
			}
		}
	}

	for _, c := range status.Components {
		status.Status = worse(status.Status, c.Status)
	}
	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			status.Status = worse(status.Status, models.HealthStatusDegraded)
		}
	}
	if len(status.DisabledFeatures) > 0 {
		status.Status = worse(status.Status, models.HealthStatusDegraded)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) storageStatus(ctx context.Context) models.ComponentStatus {
	s := models.ComponentStatus{Name: "storage", Status: models.HealthStatusOK}
	if h.cfg.Storage == nil {
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	start := time.Now()
	err := h.cfg.Storage.Ping(ctx)
	s.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		h.cfg.Logger.Warn().Err(err).Msg("storage ping failed")
		detail := "storage is unreachable"
		s.Status = models.HealthStatusFail
		s.Detail = &detail
	}
	return s
}

func toProviderStatus(h *resilience.Health) models.ProviderStatus {
	out := models.ProviderStatus{
		Provider:            h.Name,
		ConsecutiveFailures: h.Counts.ConsecutiveFailures,
		LastSuccessAt:       models.NewTimestamp(h.LastSuccessAt),
		LastFailureAt:       models.NewTimestamp(h.LastFailureAt),
	}
	switch h.Status() {
	case resilience.StatusUnhealthy:
		out.Status = models.HealthStatusFail
	case resilience.StatusDegraded:
		out.Status = models.HealthStatusDegraded
	default:
		out.Status = models.HealthStatusOK
	}
	if h.LastError != "" {
		msg := h.LastError
		out.Message = &msg
	}
	return out
}

var healthRank = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

func worse(a, b models.HealthStatus) models.HealthStatus {
	if healthRank[b] > healthRank[a] {
		return b
	}
	return a
}
