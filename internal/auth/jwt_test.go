package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/config"
	"github.com/keyfort/keyfort/internal/db/models"
)

func testCodec() *TokenCodec {
	return NewTokenCodec(config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.NewString(),
		Email: "alice@example.com",
	}
}

func TestIssueThenValidate(t *testing.T) {
	codec := testCodec()
	user := testUser()

	pair, err := codec.Issue(user, []string{"user"})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := codec.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, []string{"user"}, claims.Roles)
	assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
}

func TestValidateExpiredToken(t *testing.T) {
	codec := testCodec()
	codec.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := codec.Issue(testUser(), []string{"user"})
	require.NoError(t, err)

	codec.now = time.Now
	_, err = codec.Validate(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestValidateWrongSecret(t *testing.T) {
	pair, err := testCodec().Issue(testUser(), []string{"user"})
	require.NoError(t, err)

	other := NewTokenCodec(config.JWTConfig{Secret: "other-secret", ExpirationHours: 1})
	_, err = other.Validate(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestValidateTamperedToken(t *testing.T) {
	codec := testCodec()
	pair, err := codec.Issue(testUser(), []string{"user"})
	require.NoError(t, err)

	token := pair.AccessToken
	for _, pos := range []int{len(token) / 2, len(token) - 2} {
		mutated := []byte(token)
		if mutated[pos] == 'A' {
			mutated[pos] = 'B'
		} else {
			mutated[pos] = 'A'
		}

		_, err := codec.Validate(string(mutated))
		require.Error(t, err, "tampering at byte %d must invalidate the token", pos)
		assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	}
}

func TestValidateGarbage(t *testing.T) {
	codec := testCodec()
	for _, tok := range []string{"", "not.a.jwt", "a.b", "...."} {
		_, err := codec.Validate(tok)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	}
}

// Expired and tampered tokens must be externally indistinguishable.
func TestRejectionReasonsAreUniform(t *testing.T) {
	codec := testCodec()

	codec.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := codec.Issue(testUser(), []string{"user"})
	require.NoError(t, err)
	codec.now = time.Now

	_, expiredErr := codec.Validate(expired.AccessToken)
	_, tamperedErr := codec.Validate(expired.AccessToken + "x")

	require.Error(t, expiredErr)
	require.Error(t, tamperedErr)
	assert.Equal(t, apperr.Message(expiredErr), apperr.Message(tamperedErr))
}

func TestClaimsHasRole(t *testing.T) {
	claims := &Claims{Roles: []string{"user", "admin"}}
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("auditor"))
}
