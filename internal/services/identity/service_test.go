package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/keyfort/internal/apperr"
	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/config"
	"github.com/keyfort/keyfort/internal/db/models"
)

// memoryUserRepository is an in-memory UserRepository for unit tests. It
// honors the same error kinds as the bun implementation.
type memoryUserRepository struct {
	byEmail map[string]*models.User
	failAll error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byEmail: make(map[string]*models.User)}
}

func (m *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	if m.failAll != nil {
		return m.failAll
	}
	if _, exists := m.byEmail[user.Email]; exists {
		return apperr.Conflict("email already registered")
	}
	clone := *user
	m.byEmail[user.Email] = &clone
	return nil
}

func (m *memoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	for _, u := range m.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	clone := *u
	return &clone, nil
}

func (m *memoryUserRepository) Update(_ context.Context, user *models.User) error {
	if _, ok := m.byEmail[user.Email]; !ok {
		return apperr.NotFound("user not found")
	}
	clone := *user
	m.byEmail[user.Email] = &clone
	return nil
}

func (m *memoryUserRepository) List(_ context.Context, offset, limit int) ([]models.User, int, error) {
	var users []models.User
	for _, u := range m.byEmail {
		users = append(users, *u)
	}
	total := len(users)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return users[offset:end], total, nil
}

func newTestService(repo *memoryUserRepository) *Service {
	hasher := auth.NewPasswordHasher(auth.Argon2Params{MemoryKiB: 16 * 1024, Iterations: 1, Parallelism: 1})
	codec := auth.NewTokenCodec(config.JWTConfig{Secret: "service-secret", ExpirationHours: 1})
	return NewService(repo, hasher, codec)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryUserRepository())
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@x.com", "longpassword1"},
		{"empty email", "alice", "", "longpassword1"},
		{"short password", "alice", "a@x.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), "alice", "alice@x.com", "longpassword1")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, models.RoleList{"user"}, user.Roles)
	// Stored hash is argon2id, never the plaintext.
	assert.NotEqual(t, "longpassword1", user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$argon2id$")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "longpassword1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "other", "alice@x.com", "longpassword2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Len(t, repo.byEmail, 1)
}

func TestLoginIssuesValidToken(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@x.com", "longpassword1")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice@x.com", "longpassword1")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Greater(t, pair.ExpiresIn, int64(0))

	codec := auth.NewTokenCodec(config.JWTConfig{Secret: "service-secret", ExpirationHours: 1})
	claims, err := codec.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.Subject)
	assert.Equal(t, []string{"user"}, claims.Roles)
}

// Unknown email and wrong password must be externally indistinguishable.
func TestLoginFailuresAreUniform(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "longpassword1")
	require.NoError(t, err)

	_, missingErr := svc.Login(ctx, "nobody@x.com", "longpassword1")
	_, wrongErr := svc.Login(ctx, "alice@x.com", "wrongpassword1")

	require.Error(t, missingErr)
	require.Error(t, wrongErr)
	assert.True(t, errors.Is(missingErr, apperr.ErrUnauthorized))
	assert.True(t, errors.Is(wrongErr, apperr.ErrUnauthorized))
	assert.Equal(t, apperr.Message(missingErr), apperr.Message(wrongErr))
	assert.Equal(t, apperr.Code(missingErr), apperr.Code(wrongErr))
}

func TestLoginCorruptHashIsInternal(t *testing.T) {
	repo := newMemoryUserRepository()
	repo.byEmail["broken@x.com"] = &models.User{
		ID:           "u1",
		Email:        "broken@x.com",
		PasswordHash: "not-a-phc-string",
	}
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "broken@x.com", "whatever12345")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInternal))
}

func TestStoreFailureSurfacesAsInternal(t *testing.T) {
	repo := newMemoryUserRepository()
	repo.failAll = errors.New("pq: connection refused")
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "alice@x.com", "longpassword1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInternal))

	_, err = svc.Register(context.Background(), "alice", "alice@x.com", "longpassword1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInternal))
}

func TestListUsersClampsPaging(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := svc.Register(ctx, "u", email, "longpassword1")
		require.NoError(t, err)
	}

	users, total, err := svc.ListUsers(ctx, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 3)
}
