package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"productapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	stored := *product
	stored.ID = id
	stored.Version = 1
	stored.CreatedAt = now()
	stored.UpdatedAt = stored.CreatedAt

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[id] = stored
	return &stored, nil
}

// FindByID returns a copy of the product, or nil if there is none.
func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// FindAll returns all products, newest first.
func (r *MemoryProductRepository) FindAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		a, b := productList[i], productList[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return productList, nil
}

// Update replaces an existing product when its version matches.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("%w: product ID is required for update", models.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "product", ID: product.ID}
	}
	if current.Version != product.Version {
		return nil, fmt.Errorf("%w: product with ID %s was modified concurrently", models.ErrConflict, product.ID)
	}

	stored := *product
	stored.CreatedAt = current.CreatedAt
	stored.Version = current.Version + 1
	stored.UpdatedAt = now()
	r.products[product.ID] = stored
	return &stored, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}
