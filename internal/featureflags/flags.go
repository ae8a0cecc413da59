// Package featureflags provides runtime switches that operators can flip
// without a redeploy.
package featureflags

import (
	"errors"
	"time"
)

var (
	// ErrFlagNotFound is returned when a flag has never been stored.
	ErrFlagNotFound = errors.New("feature flag not found")

	// ErrUnknownFlag is returned when setting a key that is not in Known.
	ErrUnknownFlag = errors.New("unknown feature flag")
)

// Well-known feature flag keys.
const (
	// FlagDisableMealAnalysis rejects analysis requests before the inference call.
	FlagDisableMealAnalysis = "disable_meal_analysis"

	// FlagDisableStageNotifications silences fasting stage notifications.
	FlagDisableStageNotifications = "disable_stage_notifications"
)

// Known lists every supported flag with its description.
var Known = map[string]string{
	FlagDisableMealAnalysis:       "Reject meal analysis requests without contacting the inference provider",
	FlagDisableStageNotifications: "Stop notifying when a fast enters a new metabolic stage",
}

// Flag is a boolean switch.
type Flag struct {
	Key       string
	Enabled   bool
	UpdatedAt time.Time
}

// DefaultFlags returns every known flag switched off.
func DefaultFlags() map[string]*Flag {
	flags := make(map[string]*Flag, len(Known))
	for key := range Known {
		flags[key] = &Flag{Key: key}
	}
	return flags
}
