package inventory

import (
	"context"

	"github.com/google/uuid"
)

// PoolRepository defines the interface for inventory pool persistence
type PoolRepository interface {
	// FindByID finds a pool by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Pool, error)

	// FindByIDs finds multiple pools in one round trip; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Pool, error)

	// FindByIDsForUpdate finds pools and row-locks them until the surrounding
	// transaction ends. Rows are locked in ascending id order.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Pool, error)

	// FindActiveByProduct finds all ACTIVE pools of a product
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]Pool, error)

	// Save creates or updates a pool
	Save(ctx context.Context, pool *Pool) error

	// UpdateQuantity persists CurrentQuantity with an optimistic version check
	UpdateQuantity(ctx context.Context, pool *Pool) error
}

// MovementRepository defines the interface for the append-only movement ledger
type MovementRepository interface {
	// Create appends a ledger entry
	Create(ctx context.Context, movement *Movement) error

	// FindByPool lists a pool's ledger in creation order
	FindByPool(ctx context.Context, poolID uuid.UUID) ([]Movement, error)

	// FindByReference lists entries linked to a sale or return reference code
	FindByReference(ctx context.Context, referenceCode string) ([]Movement, error)
}

// ProductTransactionRepository defines the interface for product-level history
type ProductTransactionRepository interface {
	// Create appends a history entry
	Create(ctx context.Context, tx *ProductTransaction) error

	// FindByProduct lists a product's history in creation order
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductTransaction, error)
}
