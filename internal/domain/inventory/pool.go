package inventory

import (
	"fmt"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PoolStatus represents the status of an inventory pool
type PoolStatus string

const (
	PoolStatusActive   PoolStatus = "ACTIVE"
	PoolStatusExpired  PoolStatus = "EXPIRED"
	PoolStatusDamaged  PoolStatus = "DAMAGED"
	PoolStatusReturned PoolStatus = "RETURNED"
)

// String returns the string representation of PoolStatus
func (s PoolStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid PoolStatus value
func (s PoolStatus) IsValid() bool {
	switch s {
	case PoolStatusActive, PoolStatusExpired, PoolStatusDamaged, PoolStatusReturned:
		return true
	}
	return false
}

// Pool is a depletable stock unit tied to one product batch.
// Invariant: 0 <= CurrentQuantity <= InitialQuantity.
type Pool struct {
	shared.BaseAggregateRoot
	ProductID       uuid.UUID
	ProductName     string // joined from the product, read only
	SupplierName    string // joined from the product, read only
	BatchID         uuid.UUID
	BatchNumber     string
	InitialQuantity int64
	CurrentQuantity int64
	CostPrice       decimal.Decimal
	RetailPrice     decimal.Decimal
	Status          PoolStatus
	ExpiryDate      *time.Time
}

// NewPool creates a new active inventory pool holding its full initial quantity
func NewPool(
	productID uuid.UUID,
	batchNumber string,
	initialQuantity int64,
	costPrice, retailPrice decimal.Decimal,
	expiryDate *time.Time,
) (*Pool, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewValidationError("INVALID_BATCH", "Batch number cannot be empty")
	}
	if initialQuantity < 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}
	if costPrice.IsNegative() || retailPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Prices cannot be negative")
	}

	return &Pool{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		BatchID:           uuid.New(),
		BatchNumber:       batchNumber,
		InitialQuantity:   initialQuantity,
		CurrentQuantity:   initialQuantity,
		CostPrice:         costPrice,
		RetailPrice:       retailPrice,
		Status:            PoolStatusActive,
		ExpiryDate:        expiryDate,
	}, nil
}

// IsActive returns true if the pool may be sold from
func (p *Pool) IsActive() bool {
	return p.Status == PoolStatusActive
}

// IsExpired returns true if the batch expiry date lies before the day of now.
// A batch is still sellable on its expiry date.
func (p *Pool) IsExpired(now time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return p.ExpiryDate.Before(today)
}

// CheckSupply verifies the pool can satisfy demand units at time now
func (p *Pool) CheckSupply(demand int64, now time.Time) error {
	if !p.IsActive() {
		return shared.NewReferenceNotFoundError("POOL_INACTIVE",
			fmt.Sprintf("Inventory pool %s (batch %s) is %s", p.ID, p.BatchNumber, p.Status))
	}
	if p.IsExpired(now) {
		return shared.NewInsufficientStockError("BATCH_EXPIRED",
			fmt.Sprintf("Batch %s expired on %s", p.BatchNumber, p.ExpiryDate.Format("2006-01-02")))
	}
	if demand > p.CurrentQuantity {
		return shared.NewInsufficientStockError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock in batch %s: requested %d, available %d",
				p.BatchNumber, demand, p.CurrentQuantity))
	}
	return nil
}

// Deduct decrements the current quantity and returns the previous and new quantities
func (p *Pool) Deduct(quantity int64) (int64, int64, error) {
	if quantity <= 0 {
		return 0, 0, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > p.CurrentQuantity {
		return 0, 0, shared.NewInsufficientStockError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock in batch %s: requested %d, available %d",
				p.BatchNumber, quantity, p.CurrentQuantity))
	}

	previous := p.CurrentQuantity
	p.CurrentQuantity -= quantity
	p.Touch()
	p.IncrementVersion()
	return previous, p.CurrentQuantity, nil
}

// Restock increments the current quantity and returns the previous and new quantities
func (p *Pool) Restock(quantity int64) (int64, int64, error) {
	if quantity <= 0 {
		return 0, 0, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.CurrentQuantity+quantity > p.InitialQuantity {
		return 0, 0, shared.NewInvariantViolationError("POOL_OVERFLOW",
			fmt.Sprintf("Restocking %d units would exceed the initial quantity %d of batch %s",
				quantity, p.InitialQuantity, p.BatchNumber))
	}

	previous := p.CurrentQuantity
	p.CurrentQuantity += quantity
	p.Touch()
	p.IncrementVersion()
	return previous, p.CurrentQuantity, nil
}

// ChangeStatus moves the pool to another status
func (p *Pool) ChangeStatus(status PoolStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Invalid pool status: %s", status))
	}
	p.Status = status
	p.Touch()
	p.IncrementVersion()
	return nil
}
