package repository

import (
	"context"

	"github.com/keyfort/keyfort/internal/db/models"
)

// UserRepository exposes persistence operations for authentication
// principals. Implementations translate store-level failures into the
// apperr kinds (not-found, conflict) so callers never sniff driver errors.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]models.User, int, error)
}
