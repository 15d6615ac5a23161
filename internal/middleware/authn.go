// Package middleware provides the request authentication pipeline: bearer
// token extraction and validation, followed by optional role gating. Both
// stages short-circuit with the external error envelope; a protected handler
// only ever runs with validated claims on its context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/auth"
)

const bearerPrefix = "Bearer "

// TokenValidator is the subset of the token codec the middleware needs.
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// NewAuthnMiddleware returns a chi-compatible middleware that authenticates
// requests via the Authorization header. It must be mounted after the
// request-id middleware so rejected requests still carry a correlation id,
// and before any RequireRole gate.
func NewAuthnMiddleware(codec TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				apperr.WriteJSON(w, r, apperr.Unauthorized("missing credential"))
				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				apperr.WriteJSON(w, r, apperr.Unauthorized("malformed credential"))
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			claims, err := codec.Validate(token)
			if err != nil {
				apperr.WriteJSON(w, r, err)
				return
			}

			ctx := auth.SetClaimsContext(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
