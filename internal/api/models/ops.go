package models

// Health is the body of the liveness and readiness probes.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    Timestamp      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// SystemStatus aggregates storage, inference provider and kill switch state.
// Status is the worst of its parts; an unhealthy provider or a disabled
// feature only degrades it, since meals can still be logged by hand.
type SystemStatus struct {
	Status           HealthStatus      `json:"status"`
	Version          string            `json:"version,omitempty"`
	Time             Timestamp         `json:"time"`
	Components       []ComponentStatus `json:"components"`
	Providers        []ProviderStatus  `json:"providers"`
	DisabledFeatures []string          `json:"disabledFeatures,omitempty"`
}

// ComponentStatus is the result of probing one local dependency.
type ComponentStatus struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	LatencyMS int64        `json:"latencyMs"`
	Detail    *string      `json:"detail,omitempty"`
}

// ProviderStatus reports the circuit breaker view of an inference provider.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}

// FeatureFlag is a runtime switch as exposed by the admin API.
type FeatureFlag struct {
	Key         string     `json:"key"`
	Enabled     bool       `json:"enabled"`
	Description string     `json:"description,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
}

// FeatureFlagUpdateRequest sets one or more flags.
type FeatureFlagUpdateRequest struct {
	Flags map[string]bool `json:"flags"`
}
