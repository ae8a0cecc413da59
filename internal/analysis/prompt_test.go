package analysis_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleProfile() *profile.UserProfile {
	return &profile.UserProfile{
		Nickname:         "Sam",
		WeightKg:         80,
		HeightCm:         180,
		Age:              30,
		Gender:           bodymetrics.GenderMale,
		Activity:         bodymetrics.ActivityModeratelyActive,
		BMI:              24.69,
		CalorieTarget:    2056,
		HealthConditions: []string{"Diabetes Type 2"},
	}
}

func TestBuildPrompt_NoContext(t *testing.T) {
	prompt := analysis.BuildPrompt(analysis.Request{Description: "two boiled eggs"})

	assert.Contains(t, prompt, analysis.ProfileNotSet)
	assert.Contains(t, prompt, analysis.HistoryNotFound)
	assert.Contains(t, prompt, `"two boiled eggs"`)
	assert.Contains(t, prompt, "MUST be written in English")
	assert.NotContains(t, prompt, "Today's Intake")
}

func TestBuildPrompt_TodayIntake(t *testing.T) {
	prompt := analysis.BuildPrompt(analysis.Request{
		Description: "pasta",
		Profile:     sampleProfile(),
		Today:       &meal.DailySummary{Consumed: 1300, Target: 2056, Remaining: 756},
	})

	assert.Contains(t, prompt, "Today's Intake: 1300 kcal consumed of a 2056 kcal daily target (756 kcal remaining before this meal).")
	assert.Less(t, strings.Index(prompt, "Today's Intake"), strings.Index(prompt, "CURRENT MEAL TO ANALYZE"))
}

func TestBuildPrompt_WithProfile(t *testing.T) {
	prompt := analysis.BuildPrompt(analysis.Request{
		Description: "pasta",
		Profile:     sampleProfile(),
		Language:    "Deutsch",
	})

	assert.NotContains(t, prompt, analysis.ProfileNotSet)
	assert.Contains(t, prompt, "- Name: Sam")
	assert.Contains(t, prompt, "- Age: 30")
	assert.Contains(t, prompt, "2056 kcal")
	assert.Contains(t, prompt, "Diabetes Type 2")
	assert.Contains(t, prompt, "MUST be written in Deutsch")
}

func TestBuildPrompt_HistoryIsCapped(t *testing.T) {
	history := make([]*meal.Record, 0, 30)
	for i := range 30 {
		history = append(history, &meal.Record{
			ID:          int64(i + 1),
			Description: fmt.Sprintf("meal-%02d", i),
			Timestamp:   time.Unix(int64(i), 0),
			Calories:    intPtr(100 + i),
			Protein:     floatPtr(5),
		})
	}

	prompt := analysis.BuildPrompt(analysis.Request{Description: "soup", History: history})

	assert.NotContains(t, prompt, analysis.HistoryNotFound)
	assert.Contains(t, prompt, "last 20 meals")
	assert.Contains(t, prompt, "- meal-00 (100 kcal, 5g protein)")
	assert.Contains(t, prompt, "meal-19")
	assert.NotContains(t, prompt, "meal-20")
	assert.Equal(t, analysis.HistoryLimit, strings.Count(prompt, " kcal, "))
}

func TestBuildPrompt_ManualEntryInHistory(t *testing.T) {
	prompt := analysis.BuildPrompt(analysis.Request{
		Description: "soup",
		History:     []*meal.Record{{ID: 1, Description: "apple"}},
	})

	assert.Contains(t, prompt, "- apple (unknown kcal, unknown protein)")
}
