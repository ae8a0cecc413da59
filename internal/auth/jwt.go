// Package auth issues and validates the bearer tokens that protect the HTTP
// API. The service has a single owner, so a token carries no user record:
// the subject is informational.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of tokens issued without an explicit TTL.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Token errors.
var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")
	ErrNoSigningKey = errors.New("signing key is not configured")
)

// Claims are the claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTConfig holds configuration for the JWT service.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg JWTConfig) *JWTService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        clock,
	}
}

// Issue creates a token for subject that expires after ttl. A non-positive
// ttl means DefaultTokenTTL.
func (s *JWTService) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if len(s.signingKey) == 0 {
		return "", time.Time{}, ErrNoSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies the token and returns its subject.
func (s *JWTService) Validate(token string) (string, error) {
	if len(s.signingKey) == 0 {
		return "", ErrNoSigningKey
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
