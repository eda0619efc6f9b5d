package repositories

import (
	"context"

	"storefront/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Upsert inserts the user unless one with the same email exists, in which case
	// the stored row is loaded into user.
	Upsert(ctx context.Context, user *models.User) error
}
