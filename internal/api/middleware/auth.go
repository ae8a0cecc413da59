package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/smartdiet/smartdiet/internal/api/models"
	"github.com/smartdiet/smartdiet/internal/auth"
)

type subjectKey struct{}

// TokenValidator resolves a bearer token to the subject it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth creates authentication middleware that validates JWT bearer tokens.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, detail := bearerToken(r.Header.Get("Authorization"))
			if detail != "" {
				writeUnauthorized(w, r, detail)
				return
			}

			subject, err := validator.Validate(token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header. A non-empty
// detail describes why the header was rejected.
func bearerToken(header string) (token, detail string) {
	if header == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "invalid authorization header format"
	}
	token = strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

// writeUnauthorized is kept local to avoid an import cycle with response.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="smartdiet"`)
	models.NewUnauthorized(GetRequestID(r.Context()), detail).
		WithInstance(r.URL.Path).
		Write(w)
}

// GetSubject returns the authenticated token subject, or "" when the request
// did not pass through Auth.
func GetSubject(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey{}).(string); ok {
		return s
	}
	return ""
}
