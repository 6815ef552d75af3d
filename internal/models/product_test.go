package models_test

import (
	"errors"
	"strings"
	"testing"

	"productapi/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	p := models.NewProduct("Laptop", "Gaming laptop", decimal.RequireFromString("1299.99"), 5)

	assert.Empty(t, p.ID)
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, "Gaming laptop", p.Description)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1299.99")))
	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.CreatedAt.IsZero())
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name    string
		product *models.Product
		field   string
		message string
	}{
		{"valid", models.NewProduct("Mouse", "", decimal.Zero, 0), "", ""},
		{"max length name", models.NewProduct(strings.Repeat("é", 255), "d", decimal.NewFromInt(1), 1), "", ""},
		{"empty name", models.NewProduct("", "d", decimal.NewFromInt(1), 1), "name", "name required"},
		{"whitespace name", models.NewProduct(" \t\n", "d", decimal.NewFromInt(1), 1), "name", "name required"},
		{"long name", models.NewProduct(strings.Repeat("a", 256), "d", decimal.NewFromInt(1), 1), "name", "name too long"},
		{"negative price", models.NewProduct("Mouse", "d", decimal.RequireFromString("-0.01"), 1), "price", "price must be non-negative"},
		{"negative stock", models.NewProduct("Mouse", "d", decimal.NewFromInt(1), -1), "stock", "stock must be non-negative integer"},
		{"first violation wins", models.NewProduct("", "d", decimal.NewFromInt(-1), -1), "name", "name required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))

			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.message, vErr.Error())
		})
	}
}

func TestProduct_Apply(t *testing.T) {
	p := models.NewProduct("Laptop", "Gaming laptop", decimal.RequireFromString("1299.99"), 5)

	p.Apply(models.ProductUpdate{
		Name:  models.Some("Gaming Laptop"),
		Price: models.Some(decimal.RequireFromString("1499.99")),
	})

	assert.Equal(t, "Gaming Laptop", p.Name)
	assert.Equal(t, "Gaming laptop", p.Description)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1499.99")))
	assert.Equal(t, 5, p.Stock)

	// Zero values are explicit values, not omissions.
	p.Apply(models.ProductUpdate{
		Description: models.Some(""),
		Stock:       models.Some(0),
	})
	assert.Equal(t, "", p.Description)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, "Gaming Laptop", p.Name)
}

func TestOptional(t *testing.T) {
	var unset models.Optional[int]
	assert.False(t, unset.IsSet())

	zero := models.Some(0)
	v, ok := zero.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	assert.False(t, models.FromPtr[string](nil).IsSet())
	s := ""
	assert.True(t, models.FromPtr(&s).IsSet())

	assert.True(t, models.ProductUpdate{}.IsEmpty())
	assert.False(t, models.ProductUpdate{Stock: models.Some(0)}.IsEmpty())
}

func TestErrors(t *testing.T) {
	nf := &models.NotFoundError{Resource: "product", ID: "42"}
	assert.Equal(t, "product with ID 42 not found", nf.Error())
	assert.True(t, errors.Is(nf, models.ErrNotFound))
	assert.False(t, errors.Is(nf, models.ErrOperationFailed))

	of := &models.OperationFailedError{Op: "delete", Resource: "product", ID: "42"}
	assert.Equal(t, "failed to delete product with ID 42", of.Error())
	assert.True(t, errors.Is(of, models.ErrOperationFailed))
}
