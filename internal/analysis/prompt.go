package analysis

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/smartdiet/smartdiet/internal/meal"
	"github.com/smartdiet/smartdiet/internal/profile"
)

// HistoryLimit is the number of recent meals included in the prompt.
const HistoryLimit = meal.DefaultRecentLimit

// Prompt markers used when context is absent.
const (
	ProfileNotSet   = "User Profile: Not set."
	HistoryNotFound = "Recent Meal History: No recorded meals yet."
)

// Request bundles everything the prompt is built from.
type Request struct {
	Description string
	Profile     *profile.UserProfile
	History     []*meal.Record
	Language    string

	// Today is the intake so far today. When nil the prompt carries no
	// remaining-budget figure.
	Today *meal.DailySummary
}

// BuildPrompt renders the analysis prompt for req. At most HistoryLimit
// history entries are included.
func BuildPrompt(req Request) string {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "English"
	}

	var b strings.Builder
	b.WriteString("You are an Expert Clinical Nutritionist. Your goal is to help the user lose weight safely and improve their overall health.\n\n")
	b.WriteString(profileContext(req.Profile))
	b.WriteString("\n\n")
	b.WriteString(historyContext(req.History))
	b.WriteString("\n\n")
	if req.Today != nil {
		b.WriteString(intakeContext(req.Today))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "CURRENT MEAL TO ANALYZE: %q\n\n", strings.TrimSpace(req.Description))
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Analyze the current meal for calories and macros.\n")
	b.WriteString("2. Provide a sophisticated, professional, yet easy-to-understand analysis.\n")
	b.WriteString("3. Contextual advice: combine the current meal analysis with the user's profile and recent history.\n")
	b.WriteString("   - If they have a health condition (e.g. Diabetes), tailor the advice to it (e.g. warn about sugar and carbs).\n")
	b.WriteString("   - If they have not eaten a nutrient group recently (based on the history), advise them to include it in their next meal.\n")
	b.WriteString("   - State whether this meal fits within their remaining daily calorie target.\n")
	fmt.Fprintf(&b, "4. CRITICAL: The \"description\" and \"analysis\" text MUST be written in %s.\n\n", language)
	b.WriteString("Return the response as a single JSON object of this form:\n")
	b.WriteString(`{"description": "Refined name of the meal", "calories": 500, "protein": 30.5, "carbs": 40.0, "fat": 15.0, "analysis": "Your professional analysis here..."}`)
	b.WriteString("\n")
	return b.String()
}

func profileContext(p *profile.UserProfile) string {
	if p == nil {
		return ProfileNotSet
	}

	conditions := "None"
	if len(p.HealthConditions) > 0 {
		conditions = strings.Join(p.HealthConditions, ", ")
	}

	lines := []string{
		"User Profile:",
		"- Name: " + p.Nickname,
		fmt.Sprintf("- Age: %d", p.Age),
		"- Gender: " + string(p.Gender),
		fmt.Sprintf("- Activity Level: %s (factor %g)", p.Activity.Label(), float64(p.Activity)),
		fmt.Sprintf("- BMI: %.1f", p.BMI),
		fmt.Sprintf("- Daily Calorie Target (Weight Loss): %d kcal", p.CalorieTarget),
		"- Health Conditions: " + conditions,
	}
	return strings.Join(lines, "\n")
}

func intakeContext(s *meal.DailySummary) string {
	return fmt.Sprintf("Today's Intake: %d kcal consumed of a %d kcal daily target (%d kcal remaining before this meal).",
		s.Consumed, s.Target, s.Remaining)
}

func historyContext(history []*meal.Record) string {
	if len(history) == 0 {
		return HistoryNotFound
	}
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}

	entries := lo.Map(history, func(m *meal.Record, _ int) string {
		return "- " + historyLine(m)
	})

	return fmt.Sprintf("Recent Meal History (last %d meals):\n%s\n\n"+
		"IMPORTANT: Analyze this history to identify NUTRITIONAL GAPS. "+
		"For example, if the user hasn't eaten fish recently, mention the lack of Omega-3. "+
		"If they lack vegetables, mention fiber and vitamins.",
		len(history), strings.Join(entries, "\n"))
}

func historyLine(m *meal.Record) string {
	calories := "unknown kcal"
	if m.Calories != nil {
		calories = fmt.Sprintf("%d kcal", *m.Calories)
	}
	protein := "unknown protein"
	if m.Protein != nil {
		protein = fmt.Sprintf("%gg protein", *m.Protein)
	}
	return fmt.Sprintf("%s (%s, %s)", m.Description, calories, protein)
}
