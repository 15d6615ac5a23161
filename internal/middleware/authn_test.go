package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/config"
	"github.com/keyfort/keyfort/internal/db/models"
)

func testCodec() *auth.TokenCodec {
	return auth.NewTokenCodec(config.JWTConfig{Secret: "middleware-secret", ExpirationHours: 1})
}

func issueToken(t *testing.T, codec *auth.TokenCodec, roles []string) (string, *models.User) {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Email: "alice@example.com"}
	pair, err := codec.Issue(user, roles)
	require.NoError(t, err)
	return pair.AccessToken, user
}

// echoClaims records whether the handler ran and with which subject.
func echoClaims(invoked *bool, subject *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*invoked = true
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			*subject = claims.Subject
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	codec := testCodec()
	token, user := issueToken(t, codec, []string{"user"})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantRun    bool
	}{
		{"valid bearer token", "Bearer " + token, http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, false},
		{"bare token without prefix", token, http.StatusUnauthorized, false},
		{"tampered token", "Bearer " + token + "x", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var invoked bool
			var subject string
			handler := NewAuthnMiddleware(codec)(echoClaims(&invoked, &subject))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRun, invoked, "handler invocation")
			if tt.wantRun {
				assert.Equal(t, user.ID, subject)
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	codec := testCodec()

	t.Run("role present", func(t *testing.T) {
		token, _ := issueToken(t, codec, []string{"user", "admin"})
		var invoked bool
		var subject string
		handler := NewAuthnMiddleware(codec)(RequireRole("admin")(echoClaims(&invoked, &subject)))

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, invoked)
	})

	t.Run("role absent", func(t *testing.T) {
		token, _ := issueToken(t, codec, []string{"user"})
		var invoked bool
		var subject string
		handler := NewAuthnMiddleware(codec)(RequireRole("admin")(echoClaims(&invoked, &subject)))

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing role")
		assert.False(t, invoked)
	})

	t.Run("no claims on context is unauthorized", func(t *testing.T) {
		var invoked bool
		var subject string
		handler := RequireRole("admin")(echoClaims(&invoked, &subject))

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, invoked)
	})
}
