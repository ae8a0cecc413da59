package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

type wireResponse struct {
	Description *string      `json:"description"`
	Calories    *json.Number `json:"calories"`
	Protein     *json.Number `json:"protein"`
	Carbs       *json.Number `json:"carbs"`
	Fat         *json.Number `json:"fat"`
	Analysis    *string      `json:"analysis"`
}

// ParseResponse validates raw inference output field by field. Every failure
// is an AnalysisFailed error carrying the cause.
func ParseResponse(raw string) (*Result, error) {
	body := cleanResponse(raw)
	if body == "" {
		return nil, domainerr.AnalysisFailed("empty response body", nil)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var w wireResponse
	if err := dec.Decode(&w); err != nil {
		return nil, domainerr.AnalysisFailed("response is not valid JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domainerr.AnalysisFailed("response has trailing data after the JSON object", err)
	}

	var missing []string
	if w.Description == nil {
		missing = append(missing, FieldDescription)
	}
	if w.Calories == nil {
		missing = append(missing, FieldCalories)
	}
	if w.Protein == nil {
		missing = append(missing, FieldProtein)
	}
	if w.Carbs == nil {
		missing = append(missing, FieldCarbs)
	}
	if w.Fat == nil {
		missing = append(missing, FieldFat)
	}
	if w.Analysis == nil {
		missing = append(missing, FieldAnalysis)
	}
	if len(missing) > 0 {
		return nil, domainerr.AnalysisFailed(
			fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")), nil)
	}

	calories, err := nonNegativeInt(FieldCalories, *w.Calories)
	if err != nil {
		return nil, err
	}
	protein, err := nonNegativeFloat(FieldProtein, *w.Protein)
	if err != nil {
		return nil, err
	}
	carbs, err := nonNegativeFloat(FieldCarbs, *w.Carbs)
	if err != nil {
		return nil, err
	}
	fat, err := nonNegativeFloat(FieldFat, *w.Fat)
	if err != nil {
		return nil, err
	}

	return &Result{
		Description: *w.Description,
		Calories:    calories,
		Protein:     protein,
		Carbs:       carbs,
		Fat:         fat,
		Analysis:    *w.Analysis,
	}, nil
}

// cleanResponse strips surrounding whitespace and a markdown code fence.
func cleanResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag line, e.g. ```json.
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nonNegativeFloat(field string, n json.Number) (float64, error) {
	v, err := n.Float64()
	if err != nil {
		return 0, domainerr.AnalysisFailed(fmt.Sprintf("field %q is not a number", field), err)
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, domainerr.AnalysisFailed(fmt.Sprintf("field %q must be a finite number >= 0, got %s", field, n), nil)
	}
	return v, nil
}

func nonNegativeInt(field string, n json.Number) (int, error) {
	v, err := nonNegativeFloat(field, n)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, domainerr.AnalysisFailed(fmt.Sprintf("field %q must be an integer, got %s", field, n), nil)
	}
	return int(v), nil
}
