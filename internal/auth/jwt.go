package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/config"
	"github.com/keyfort/keyfort/internal/db/models"
)

// TokenType is the fixed credential type tag returned with every token.
const TokenType = "Bearer"

// Claims is the signed token payload: subject (user id), email, granted
// roles, and the standard iat/exp timestamps. Claims are built once at issue
// time and never mutated.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the claims carry the named role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenPair is the issued credential: the encoded token, its type tag, and
// the remaining lifetime in seconds. It is returned once at login and never
// stored server-side.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenCodec signs and verifies HS256 tokens with a process-wide symmetric
// secret. The secret and lifetime are fixed at startup; rotating the secret
// invalidates all outstanding tokens.
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenCodec creates a codec from the loaded JWT configuration.
func NewTokenCodec(cfg config.JWTConfig) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime(),
		now:      time.Now,
	}
}

// Issue builds and signs claims for the user with the given roles. Role
// assignment is an explicit input rather than a hidden default so the
// caller decides what a token is allowed to do.
func (c *TokenCodec) Issue(user *models.User, roles []string) (*TokenPair, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
		Email: user.Email,
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return nil, apperr.Internal("sign token", fmt.Errorf("sign token: %w", err))
	}

	return &TokenPair{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   int64(c.lifetime / time.Second),
	}, nil
}

// Validate decodes the token, verifies the HS256 signature, and checks
// expiry. Malformed structure, bad signature, and expiry all collapse into
// the same unauthorized kind so callers cannot probe why a token was
// rejected.
func (c *TokenCodec) Validate(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	return claims, nil
}
