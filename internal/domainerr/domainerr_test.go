package domainerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := domainerr.InvalidInput("description is blank")

	assert.True(t, errors.Is(err, domainerr.ErrInvalidInput))
	assert.False(t, errors.Is(err, domainerr.ErrAnalysisFailed))
	assert.Equal(t, domainerr.KindInvalidInput, domainerr.KindOf(err))
}

func TestError_WrappedStillMatches(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("loading profile: %w", domainerr.PersistenceUnavailable("load profile", cause))

	assert.True(t, errors.Is(err, domainerr.ErrPersistenceUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, domainerr.KindPersistenceUnavailable, domainerr.KindOf(err))
}

func TestError_Message(t *testing.T) {
	err := domainerr.AnalysisFailed("empty response", nil)
	assert.Equal(t, "analysis_failed: empty response", err.Error())

	err = domainerr.AnalysisFailed("decode", errors.New("boom"))
	assert.Equal(t, "analysis_failed: decode: boom", err.Error())
}

func TestKindOf_NonDomainError(t *testing.T) {
	assert.Equal(t, domainerr.Kind(""), domainerr.KindOf(errors.New("plain")))
	assert.Equal(t, domainerr.Kind(""), domainerr.KindOf(nil))
}
