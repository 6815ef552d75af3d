package repositories

import (
	"context"

	"productapi/internal/models"
)

// UserRepository defines the interface for user data access. Lookups return nil
// and no error when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
