package fasting

import "math"

// FinalStageNominalEnd is the end hour used for progress arithmetic in the
// last stage, which otherwise has no upper bound.
const FinalStageNominalEnd = 1000

// Stage is a physiological phase covering the half-open hour interval
// [StartHour, EndHour). The final stage matches every hour from its start.
type Stage struct {
	Index       int
	StartHour   int
	EndHour     int
	Title       string
	Description string
	Icon        string
}

// Final reports whether s is the last stage of the timeline.
func (s Stage) Final() bool {
	return s.Index == len(timeline)-1
}

// Contains reports whether elapsed hours h fall within s.
func (s Stage) Contains(h float64) bool {
	if h < float64(s.StartHour) {
		return false
	}
	return s.Final() || h < float64(s.EndHour)
}

var timeline = []Stage{
	{0, 0, 4, "Blood Sugar Rising", "Your body is digesting your last meal. Insulin levels are high.", "😋"},
	{1, 4, 8, "Blood Sugar Falling", "Insulin starts to drop. Your body is getting ready to burn fat.", "📉"},
	{2, 8, 12, "Reset", "Your stomach is empty. Growth hormone secretion begins.", "😌"},
	{3, 12, 18, "Ketosis (Mild)", "Your body starts burning fat for energy instead of glucose.", "🔥"},
	{4, 18, 24, "Autophagy (Onset)", "Cellular cleanup. Your body recycles old cells.", "♻️"},
	{5, 24, 48, "Autophagy (Peak)", "Peak cellular renewal and rising growth hormone.", "🚀"},
	{6, 48, 72, "Immune Regeneration", "Deep renewal of the immune system.", "🛡️"},
	{7, 72, FinalStageNominalEnd, "Extended Fast", "Caution: consult a doctor before fasting longer than 72 hours.", "⚠️"},
}

// Stages returns the ordered stage table.
func Stages() []Stage {
	out := make([]Stage, len(timeline))
	copy(out, timeline)
	return out
}

// CurrentStage returns the stage containing h. It reports false only for
// negative (or NaN) h.
func CurrentStage(h float64) (Stage, bool) {
	if h < 0 || math.IsNaN(h) {
		return Stage{}, false
	}
	for _, s := range timeline {
		if s.Contains(h) {
			return s, true
		}
	}
	return Stage{}, false
}

// NextStage returns the first stage starting after h. It reports false once h
// is within the final stage.
func NextStage(h float64) (Stage, bool) {
	if math.IsNaN(h) {
		return Stage{}, false
	}
	for _, s := range timeline {
		if float64(s.StartHour) > h {
			return s, true
		}
	}
	return Stage{}, false
}

// StageProgress returns the fraction of the current stage elapsed at h,
// clamped to [0, 1].
func StageProgress(h float64) float64 {
	s, ok := CurrentStage(h)
	if !ok {
		return 0
	}
	p := (h - float64(s.StartHour)) / float64(s.EndHour-s.StartHour)
	return clamp01(p)
}

// HoursUntilNextStage returns the hours remaining before the next stage begins.
func HoursUntilNextStage(h float64) (float64, bool) {
	next, ok := NextStage(h)
	if !ok {
		return 0, false
	}
	return float64(next.StartHour) - math.Max(h, 0), true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0, math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
