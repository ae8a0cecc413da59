package analysis

// Schema is the subset of the OpenAPI schema object understood by structured
// output inference APIs.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Schema types.
const (
	TypeObject  = "OBJECT"
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
	TypeNumber  = "NUMBER"
)

// Response field names.
const (
	FieldDescription = "description"
	FieldCalories    = "calories"
	FieldProtein     = "protein"
	FieldCarbs       = "carbs"
	FieldFat         = "fat"
	FieldAnalysis    = "analysis"
)

// ResponseSchema returns the fixed schema requested for every analysis.
func ResponseSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			FieldDescription: {Type: TypeString, Description: "Refined name of the meal"},
			FieldCalories:    {Type: TypeInteger, Description: "Total energy in kcal, integer >= 0"},
			FieldProtein:     {Type: TypeNumber, Description: "Protein in grams, >= 0"},
			FieldCarbs:       {Type: TypeNumber, Description: "Carbohydrates in grams, >= 0"},
			FieldFat:         {Type: TypeNumber, Description: "Fat in grams, >= 0"},
			FieldAnalysis:    {Type: TypeString, Description: "Professional analysis and advice"},
		},
		Required: []string{FieldDescription, FieldCalories, FieldProtein, FieldCarbs, FieldFat, FieldAnalysis},
	}
}
