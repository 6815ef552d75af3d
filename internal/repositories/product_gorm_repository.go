package repositories

import (
	"context"
	"errors"
	"fmt"

	"productapi/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts a new product and returns it with its ID and timestamps set.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	rec := newProductRecord(product)
	rec.ID = id
	rec.Version = 1
	rec.CreatedAt = now()
	rec.UpdatedAt = rec.CreatedAt

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return rec.toModel(), nil
}

// FindByID retrieves a single product by its ID. A miss yields nil, nil.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return rec.toModel(), nil
}

// FindAll retrieves all products, newest first.
func (r *GORMProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	var recs []productRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	products := make([]models.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, *rec.toModel())
	}
	return products, nil
}

// Update writes every mutable column of the product. The write only applies when
// the stored version still equals product.Version.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("%w: product ID is required for update", models.ErrInvalidArgument)
	}

	rec := newProductRecord(product)
	rec.Version = product.Version + 1
	rec.UpdatedAt = now()

	// Save would fall back to an upsert on a missing row, so update explicitly.
	// A map is used so zero values are written too.
	res := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]any{
			"name":        rec.Name,
			"description": rec.Description,
			"price":       rec.Price,
			"stock":       rec.Stock,
			"version":     rec.Version,
			"updated_at":  rec.UpdatedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.staleOrMissing(ctx, product.ID)
	}
	return rec.toModel(), nil
}

// Delete removes a product by its ID and reports whether a row was removed.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete product: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// staleOrMissing explains why an update matched no row.
func (r *GORMProductRepository) staleOrMissing(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product %s after update: %w", id, err)
	}
	if count == 0 {
		return &models.NotFoundError{Resource: "product", ID: id}
	}
	return fmt.Errorf("%w: product with ID %s was modified concurrently", models.ErrConflict, id)
}
