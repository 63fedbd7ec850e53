package inventory

import (
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductTransactionType represents the direction of a product-level history entry
type ProductTransactionType string

const (
	ProductTransactionQuantityOut ProductTransactionType = "QUANTITY_OUT"
	ProductTransactionQuantityIn  ProductTransactionType = "QUANTITY_IN"
)

// String returns the string representation of ProductTransactionType
func (t ProductTransactionType) String() string {
	return string(t)
}

// ProductTransaction is an append-only, product-level history entry
type ProductTransaction struct {
	shared.BaseEntity
	ProductID       uuid.UUID
	PoolID          uuid.UUID
	TransactionType ProductTransactionType
	Quantity        int64 // always positive, direction determined by type
	UnitPrice       decimal.Decimal
	TotalAmount     decimal.Decimal
	ReferenceCode   string
	SourceID        uuid.UUID
	Notes           string
	ActorID         uuid.UUID
}

// NewProductTransaction creates a product history entry valued at unitPrice
func NewProductTransaction(
	productID, poolID uuid.UUID,
	txType ProductTransactionType,
	quantity int64,
	unitPrice decimal.Decimal,
	referenceCode string,
	sourceID uuid.UUID,
	actorID uuid.UUID,
) (*ProductTransaction, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if txType != ProductTransactionQuantityOut && txType != ProductTransactionQuantityIn {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_TYPE", "Invalid product transaction type")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &ProductTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		PoolID:          poolID,
		TransactionType: txType,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		TotalAmount:     unitPrice.Mul(decimal.NewFromInt(quantity)),
		ReferenceCode:   referenceCode,
		SourceID:        sourceID,
		ActorID:         actorID,
	}, nil
}

// WithNotes sets free-text notes on the entry
func (t *ProductTransaction) WithNotes(notes string) *ProductTransaction {
	t.Notes = notes
	return t
}
