package models

// ProfileRequest creates or replaces the user profile.
type ProfileRequest struct {
	Nickname         string   `json:"nickname"`
	WeightKg         float64  `json:"weightKg"`
	HeightCm         float64  `json:"heightCm"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	ActivityFactor   float64  `json:"activityFactor"`
	HealthConditions []string `json:"healthConditions,omitempty"`
}

// Profile is the saved user profile with its derived targets.
type Profile struct {
	Nickname         string    `json:"nickname"`
	WeightKg         float64   `json:"weightKg"`
	HeightCm         float64   `json:"heightCm"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	ActivityFactor   float64   `json:"activityFactor"`
	ActivityLabel    string    `json:"activityLabel"`
	BMI              float64   `json:"bmi"`
	CalorieTarget    int       `json:"calorieTarget"`
	HealthConditions []string  `json:"healthConditions"`
	UpdatedAt        Timestamp `json:"updatedAt"`
}

// MetricsPreview is the result of computing body metrics without saving.
type MetricsPreview struct {
	BMI           float64 `json:"bmi"`
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	CalorieTarget int     `json:"calorieTarget"`
}

// ActivityLevel is one selectable activity multiplier.
type ActivityLevel struct {
	Factor float64 `json:"factor"`
	Label  string  `json:"label"`
}

// ProfileOptions lists the values a profile form offers.
type ProfileOptions struct {
	ActivityLevels   []ActivityLevel `json:"activityLevels"`
	HealthConditions []string        `json:"healthConditions"`
	Genders          []string        `json:"genders"`
}
