package middleware

import (
	"fmt"
	"net/http"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/auth"
)

// RequireRole returns a middleware that rejects requests whose authenticated
// claims lack the named role. It must be composed after NewAuthnMiddleware;
// reaching it without claims on the context is an authentication failure,
// not a crash.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				apperr.WriteJSON(w, r, apperr.Unauthorized("authentication required"))
				return
			}

			if !claims.HasRole(role) {
				apperr.WriteJSON(w, r, apperr.Forbidden(fmt.Sprintf("missing role %q", role)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
