// Package bodymetrics derives BMI and daily energy targets from body measurements.
//
// All functions are pure. Compute reports ok=false instead of an error when an
// input is missing or non-positive: the caller keeps whatever it had computed
// before.
package bodymetrics

import (
	"fmt"
	"math"
	"strings"
)

// Policy constants for the calorie target.
const (
	// DailyDeficitKcal is subtracted from TDEE to produce a weight-loss target.
	DailyDeficitKcal = 500

	// MinCalorieTarget is the safety floor for any computed target.
	MinCalorieTarget = 1200

	// DefaultCalorieTarget is used when no profile exists.
	DefaultCalorieTarget = 2000
)

// Gender selects the sex-specific BMR constant.
type Gender string

// Gender values.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Valid reports whether g is a supported gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParseGender parses a gender case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("unknown gender %q (expected Male or Female)", s)
	}
}

// ActivityLevel is a TDEE multiplier.
type ActivityLevel float64

// Supported activity levels.
const (
	ActivitySedentary        ActivityLevel = 1.2
	ActivityLightlyActive    ActivityLevel = 1.375
	ActivityModeratelyActive ActivityLevel = 1.55
	ActivityVeryActive       ActivityLevel = 1.725
)

// ActivityLevels lists the supported levels in ascending order.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLightlyActive,
	ActivityModeratelyActive,
	ActivityVeryActive,
}

var activityLabels = map[ActivityLevel]string{
	ActivitySedentary:        "Sedentary",
	ActivityLightlyActive:    "Lightly active",
	ActivityModeratelyActive: "Moderately active",
	ActivityVeryActive:       "Very active",
}

// Label returns the display label of the level, or the numeric factor if the
// level is not one of the supported values.
func (a ActivityLevel) Label() string {
	if l, ok := activityLabels[a]; ok {
		return l
	}
	return fmt.Sprintf("%g", float64(a))
}

// Valid reports whether a is one of the supported levels.
func (a ActivityLevel) Valid() bool {
	_, ok := activityLabels[a]
	return ok
}

// ParseActivityLevel maps a factor to a supported level.
func ParseActivityLevel(f float64) (ActivityLevel, error) {
	for _, lvl := range ActivityLevels {
		if math.Abs(float64(lvl)-f) < 1e-9 {
			return lvl, nil
		}
	}
	return 0, fmt.Errorf("unsupported activity factor %g (expected one of 1.2, 1.375, 1.55, 1.725)", f)
}

// HealthConditions is the curated list offered to users. Free-form conditions
// are accepted alongside these.
var HealthConditions = []string{
	"Diabetes",
	"High Cholesterol",
	"Hypertension",
	"Celiac",
	"Lactose Intolerance",
	"Vegan",
	"Vegetarian",
}

// Input holds the base measurements.
type Input struct {
	WeightKg float64
	HeightCm float64
	Age      int
	Gender   Gender
	Activity ActivityLevel
}

// Complete reports whether every input is present, finite and positive.
func (in Input) Complete() bool {
	return Measurable(in.WeightKg) && Measurable(in.HeightCm) && in.Age > 0 &&
		in.Gender.Valid() && in.Activity > 0
}

// Measurable reports whether v is a finite value greater than zero.
func Measurable(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Result holds the derived metrics.
type Result struct {
	BMI           float64
	BMR           float64
	TDEE          float64
	CalorieTarget int
}

// Compute derives all metrics from in. It returns ok=false when in is not Complete.
func Compute(in Input) (Result, bool) {
	if !in.Complete() {
		return Result{}, false
	}

	bmr := BMR(in.WeightKg, in.HeightCm, in.Age, in.Gender)
	tdee := TDEE(bmr, in.Activity)

	return Result{
		BMI:           BMI(in.WeightKg, in.HeightCm),
		BMR:           bmr,
		TDEE:          tdee,
		CalorieTarget: CalorieTarget(tdee),
	}, true
}

// BMI returns weight / (height in metres)².
func BMI(weightKg, heightCm float64) float64 {
	m := heightCm / 100
	return weightKg / (m * m)
}

// BMR returns the Mifflin-St Jeor basal metabolic rate.
func BMR(weightKg, heightCm float64, age int, g Gender) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if g == GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE scales bmr by the activity factor.
func TDEE(bmr float64, a ActivityLevel) float64 {
	return bmr * float64(a)
}

// CalorieTarget applies the daily deficit and the safety floor to tdee.
func CalorieTarget(tdee float64) int {
	target := int(math.Round(tdee - DailyDeficitKcal))
	if target < MinCalorieTarget {
		return MinCalorieTarget
	}
	return target
}
