package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/auth"
)

func newService(key string, clock func() time.Time) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: key,
		Issuer:     "smartdiet",
		Audience:   "smartdiet-api",
		Clock:      clock,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", nil)

	token, expiresAt, err := svc.Issue("owner", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", subject)
}

func TestJWTService_DefaultTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newService("key", func() time.Time { return now })

	_, expiresAt, err := svc.Issue("owner", 0)
	require.NoError(t, err)
	assert.Equal(t, now.Add(auth.DefaultTokenTTL), expiresAt)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", nil)

	for _, token := range []string{"", "not.a.valid.jwt", "xxx.yyy.zzz"} {
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, token)
	}
}

func TestJWTService_WrongSigningKey(t *testing.T) {
	token, _, err := newService("key-one", nil).Issue("owner", time.Hour)
	require.NoError(t, err)

	_, err = newService("key-two", nil).Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_WrongAudience(t *testing.T) {
	token, _, err := newService("key", nil).Issue("owner", time.Hour)
	require.NoError(t, err)

	other := auth.NewJWTService(auth.JWTConfig{SigningKey: "key", Issuer: "smartdiet", Audience: "another-api"})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_Expired(t *testing.T) {
	now := time.Now()
	issuer := newService("key", func() time.Time { return now.Add(-2 * time.Hour) })
	token, _, err := issuer.Issue("owner", time.Hour)
	require.NoError(t, err)

	_, err = newService("key", func() time.Time { return now }).Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWTService_NoSigningKey(t *testing.T) {
	svc := newService("", nil)

	_, _, err := svc.Issue("owner", time.Hour)
	assert.ErrorIs(t, err, auth.ErrNoSigningKey)

	_, err = svc.Validate("anything")
	assert.ErrorIs(t, err, auth.ErrNoSigningKey)
}
