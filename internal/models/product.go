package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxProductNameLength is the maximum number of characters in a product name.
const MaxProductNameLength = 255

// Product represents a product in the store.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Version     int64           `json:"version"` // Bumped by the repository on every update
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductUpdate carries the fields of a partial update. Only the fields that are
// set are merged into the stored product.
type ProductUpdate struct {
	Name        Optional[string]
	Description Optional[string]
	Price       Optional[decimal.Decimal]
	Stock       Optional[int]
}

// NewProduct builds a product that has not been persisted yet. It does not
// validate; call Validate before handing the product to a repository.
func NewProduct(name, description string, price decimal.Decimal, stock int) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	}
}

// Validate checks the product's field constraints and returns the first violation.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "name required")
	}
	if utf8.RuneCountInString(p.Name) > MaxProductNameLength {
		return NewValidationError("name", "name too long")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "price must be non-negative")
	}
	if p.Stock < 0 {
		return NewValidationError("stock", "stock must be non-negative integer")
	}
	return nil
}

// Apply overwrites every field that is set in u and leaves the rest untouched.
func (p *Product) Apply(u ProductUpdate) {
	if v, ok := u.Name.Get(); ok {
		p.Name = v
	}
	if v, ok := u.Description.Get(); ok {
		p.Description = v
	}
	if v, ok := u.Price.Get(); ok {
		p.Price = v
	}
	if v, ok := u.Stock.Get(); ok {
		p.Stock = v
	}
}

// IsEmpty reports whether the update carries no fields at all.
func (u ProductUpdate) IsEmpty() bool {
	return !u.Name.IsSet() && !u.Description.IsSet() && !u.Price.IsSet() && !u.Stock.IsSet()
}
