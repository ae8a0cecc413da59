package fasting_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/fasting"
)

func TestStages_Table(t *testing.T) {
	stages := fasting.Stages()
	require.Len(t, stages, 8)

	bounds := [][2]int{{0, 4}, {4, 8}, {8, 12}, {12, 18}, {18, 24}, {24, 48}, {48, 72}, {72, fasting.FinalStageNominalEnd}}
	for i, s := range stages {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, bounds[i][0], s.StartHour)
		assert.Equal(t, bounds[i][1], s.EndHour)
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Icon)
		if i > 0 {
			assert.Equal(t, stages[i-1].EndHour, s.StartHour, "stages must be contiguous")
		}
	}
	assert.True(t, stages[7].Final())
	assert.False(t, stages[6].Final())
}

func TestStages_ReturnsCopy(t *testing.T) {
	stages := fasting.Stages()
	stages[0].Title = "changed"
	assert.NotEqual(t, "changed", fasting.Stages()[0].Title)
}

func TestCurrentStage_HalfOpenBoundaries(t *testing.T) {
	tests := []struct {
		hours    float64
		expected int
	}{
		{0, 0},
		{3.9, 0},
		{4.0, 1},
		{7.999, 1},
		{8, 2},
		{12, 3},
		{17.5, 3},
		{18, 4},
		{24, 5},
		{47.9, 5},
		{48, 6},
		{72, 7},
		{500, 7},
		{5000, 7},
	}

	for _, tt := range tests {
		s, ok := fasting.CurrentStage(tt.hours)
		require.True(t, ok, "hours=%v", tt.hours)
		assert.Equal(t, tt.expected, s.Index, "hours=%v", tt.hours)
	}
}

func TestCurrentStage_Negative(t *testing.T) {
	_, ok := fasting.CurrentStage(-0.01)
	assert.False(t, ok)

	_, ok = fasting.CurrentStage(math.NaN())
	assert.False(t, ok)
}

func TestNextStage(t *testing.T) {
	next, ok := fasting.NextStage(0)
	require.True(t, ok)
	assert.Equal(t, 4, next.StartHour)

	next, ok = fasting.NextStage(4)
	require.True(t, ok)
	assert.Equal(t, 8, next.StartHour)

	next, ok = fasting.NextStage(71.9)
	require.True(t, ok)
	assert.Equal(t, 72, next.StartHour)

	_, ok = fasting.NextStage(72)
	assert.False(t, ok)

	_, ok = fasting.NextStage(1500)
	assert.False(t, ok)
}

func TestStageProgress(t *testing.T) {
	assert.Equal(t, 0.5, fasting.StageProgress(6.0))
	assert.Equal(t, 0.0, fasting.StageProgress(4.0))
	assert.Equal(t, 0.25, fasting.StageProgress(1.0))
	assert.InDelta(t, 0.5, fasting.StageProgress(36), 1e-12)
	assert.Equal(t, 0.0, fasting.StageProgress(-3))
	assert.Equal(t, 1.0, fasting.StageProgress(2000))

	for h := 0.0; h < 1200; h += 0.7 {
		p := fasting.StageProgress(h)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestHoursUntilNextStage(t *testing.T) {
	h, ok := fasting.HoursUntilNextStage(5.5)
	require.True(t, ok)
	assert.Equal(t, 2.5, h)

	_, ok = fasting.HoursUntilNextStage(80)
	assert.False(t, ok)
}
