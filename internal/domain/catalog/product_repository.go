package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateAveragePrices persists only the derived average prices
	UpdateAveragePrices(ctx context.Context, product *Product) error
}
