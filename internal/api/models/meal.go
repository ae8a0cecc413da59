package models

// Meal is a logged meal. Nutrition fields are absent for manual entries.
type Meal struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Timestamp   Timestamp `json:"timestamp"`
	ImagePath   *string   `json:"imagePath,omitempty"`
	Calories    *int      `json:"calories,omitempty"`
	Protein     *float64  `json:"protein,omitempty"`
	Carbs       *float64  `json:"carbs,omitempty"`
	Fat         *float64  `json:"fat,omitempty"`
	Analysis    *string   `json:"analysis,omitempty"`
	Analyzed    bool      `json:"analyzed"`
}

// MealRequest logs a meal by description only.
type MealRequest struct {
	Description string `json:"description"`
}

// AnalyzeMealRequest asks for an analysis of a described meal.
type AnalyzeMealRequest struct {
	Description string `json:"description"`
}

// MealAnalysis is a validated analysis result. It is not saved until posted
// back to /v1/meals:save.
type MealAnalysis struct {
	Description string  `json:"description"`
	Calories    int     `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Analysis    string  `json:"analysis"`
}

// SaveMealAnalysisRequest saves an accepted analysis.
type SaveMealAnalysisRequest struct {
	MealAnalysis
	ImagePath *string `json:"imagePath,omitempty"`
}

// DailySummary is today's calorie intake against the target.
type DailySummary struct {
	Date      string  `json:"date"`
	Consumed  int     `json:"consumed"`
	Target    int     `json:"target"`
	Remaining int     `json:"remaining"`
	Progress  float64 `json:"progress"`
}
