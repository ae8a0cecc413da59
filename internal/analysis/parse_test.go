package analysis_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/domainerr"
)

const validResponse = `{"description": "Oatmeal with berries", "calories": 350, "protein": 10.5, "carbs": 60.0, "fat": 6.25, "analysis": "A fibre-rich breakfast."}`

func TestParseResponse_Valid(t *testing.T) {
	res, err := analysis.ParseResponse(validResponse)
	require.NoError(t, err)

	assert.Equal(t, "Oatmeal with berries", res.Description)
	assert.Equal(t, 350, res.Calories)
	assert.Equal(t, 10.5, res.Protein)
	assert.Equal(t, 60.0, res.Carbs)
	assert.Equal(t, 6.25, res.Fat)
	assert.Equal(t, "A fibre-rich breakfast.", res.Analysis)
}

func TestParseResponse_KeepsTextVerbatim(t *testing.T) {
	res, err := analysis.ParseResponse(`{"description":" Greek salad ","calories":220,"protein":6,"carbs":12,"fat":16,"analysis":"  Good fats.\n\n- Add bread for carbs.\n"}`)
	require.NoError(t, err)
	assert.Equal(t, " Greek salad ", res.Description)
	assert.Equal(t, "  Good fats.\n\n- Add bread for carbs.\n", res.Analysis)
	assert.Equal(t, res.Analysis, res.Meal().Text)
}

func TestParseResponse_StripsCodeFence(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + validResponse + "\n```",
		"```\n" + validResponse + "\n```",
		"  \n" + validResponse + "\n\n",
	} {
		res, err := analysis.ParseResponse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 350, res.Calories)
	}
}

func TestParseResponse_AcceptsIntegralFloatCalories(t *testing.T) {
	res, err := analysis.ParseResponse(`{"description":"x","calories":500.0,"protein":0,"carbs":0,"fat":0,"analysis":""}`)
	require.NoError(t, err)
	assert.Equal(t, 500, res.Calories)
}

func TestParseResponse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   \n"},
		{"not json", "Sorry, I cannot help with that."},
		{"truncated", `{"description": "x", "calories": 10`},
		{"missing calories", `{"description":"x","protein":1,"carbs":1,"fat":1,"analysis":"a"}`},
		{"missing analysis", `{"description":"x","calories":1,"protein":1,"carbs":1,"fat":1}`},
		{"negative fat", `{"description":"x","calories":1,"protein":1,"carbs":1,"fat":-0.5,"analysis":"a"}`},
		{"negative calories", `{"description":"x","calories":-10,"protein":1,"carbs":1,"fat":1,"analysis":"a"}`},
		{"fractional calories", `{"description":"x","calories":12.5,"protein":1,"carbs":1,"fat":1,"analysis":"a"}`},
		{"string protein", `{"description":"x","calories":1,"protein":"ten","carbs":1,"fat":1,"analysis":"a"}`},
		{"trailing data", validResponse + ` {"extra": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := analysis.ParseResponse(tt.raw)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, domainerr.ErrAnalysisFailed), "got %v", err)
		})
	}
}

func TestParseResponse_MissingFieldsAreNamed(t *testing.T) {
	_, err := analysis.ParseResponse(`{"description":"x","calories":1,"analysis":"a"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protein")
	assert.Contains(t, err.Error(), "carbs")
	assert.Contains(t, err.Error(), "fat")
}
