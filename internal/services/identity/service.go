// Package identity orchestrates registration and login over the user store,
// the credential hasher, and the token codec. It owns the anti-enumeration
// policy: a missing user and a wrong password are indistinguishable to
// callers.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/db/models"
	"github.com/keyfort/keyfort/internal/repository"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// CredentialHasher is the one-way hashing capability the service depends on.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenIssuer mints signed credentials for an authenticated user.
type TokenIssuer interface {
	Issue(user *models.User, roles []string) (*auth.TokenPair, error)
}

// Service implements the authentication use cases. All dependencies are
// injected; any implementation satisfying the contracts works, in-memory or
// persistent.
type Service struct {
	users  repository.UserRepository
	hasher CredentialHasher
	tokens TokenIssuer
}

// NewService creates the authentication service.
func NewService(users repository.UserRepository, hasher CredentialHasher, tokens TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register validates input, hashes the password, and persists a new user
// with the default role. The plaintext password never outlives this call and
// is never logged.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" {
		return nil, apperr.Validation("username cannot be empty")
	}
	if email == "" {
		return nil, apperr.Validation("email cannot be empty")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	// Pre-check for a friendly message; the unique index remains the
	// authority when two registrations race.
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("email already registered")
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, apperr.Internal("check existing user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        models.RoleList{models.DefaultRole},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, apperr.Internal("create user", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a token carrying the user's
// stored roles. A missing account and a failed verification produce the
// same error so the endpoint cannot be used as a user-existence oracle.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal("lookup user", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// Corrupt stored hash; an operator problem, not a caller one.
		return nil, apperr.Internal("verify credentials", err)
	}
	if !ok {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	roles := []string(user.Roles)
	if len(roles) == 0 {
		roles = []string{models.DefaultRole}
	}

	pair, err := s.tokens.Issue(user, roles)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("get user", err)
	}
	return user, nil
}

// ListUsers returns one page of users plus the total count. page is
// 1-based; perPage is clamped to [1,100].
func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.users.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, apperr.Internal("list users", err)
	}
	return users, total, nil
}
