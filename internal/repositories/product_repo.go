package repositories

import (
	"context"

	"productapi/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Create assigns the ID, timestamps and initial version, stores the product and
	// returns the stored copy.
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	// FindByID returns nil and no error when no product has the given ID.
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// FindAll returns every product, newest first.
	FindAll(ctx context.Context) ([]models.Product, error)
	// Update persists the full state of an existing product. The product's Version
	// must match the stored one.
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	// Delete reports whether a product was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
