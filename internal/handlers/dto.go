package handlers

import (
	"encoding/json"
	"time"

	"productapi/internal/models"

	"github.com/shopspring/decimal"
)

// CreateProductRequest represents the request body for creating a product.
// Pointer fields let "required" tell a missing key from an explicit zero. Stock
// is bounded to int32 so the float64 decode is exact and the int conversion
// cannot overflow.
type CreateProductRequest struct {
	Name        *string          `json:"name" validate:"required,notblank,max=255"`
	Description *string          `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock       *float64         `json:"stock" validate:"required,gte=0,lte=2147483647,wholenumber"`
}

// UpdateProductRequest represents a partial update. Absent or null keys are left
// untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Stock       *float64         `json:"stock" validate:"omitempty,gte=0,lte=2147483647,wholenumber"`
}

// ToProductUpdate converts the request into the service's partial update.
func (r UpdateProductRequest) ToProductUpdate() models.ProductUpdate {
	update := models.ProductUpdate{
		Name:        models.FromPtr(r.Name),
		Description: models.FromPtr(r.Description),
		Price:       models.FromPtr(r.Price),
	}
	if r.Stock != nil {
		update.Stock = models.Some(int(*r.Stock))
	}
	return update
}

// ProductResponse represents the product returned by the API.
type ProductResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"` // Exact decimal rendered as a JSON number
	Stock       int         `json:"stock"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse.
func ToProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Stock:       p.Stock,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponseList converts a list of domain Products.
func ToProductResponseList(products []models.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
