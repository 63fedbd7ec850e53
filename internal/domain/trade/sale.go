package trade

import (
	"fmt"
	"time"

	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the return state of a sale
type SaleStatus string

const (
	SaleStatusActive            SaleStatus = "ACTIVE"
	SaleStatusPartiallyReturned SaleStatus = "PARTIALLY_RETURNED"
	SaleStatusReturned          SaleStatus = "RETURNED"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusActive, SaleStatusPartiallyReturned, SaleStatusReturned:
		return true
	}
	return false
}

// SaleRecord is the persisted result of one sale line.
// Everything except Status is an immutable snapshot taken at sale time.
type SaleRecord struct {
	shared.AuditedAggregateRoot
	ReferenceCode string

	PoolID       uuid.UUID
	ProductID    uuid.UUID
	BatchID      uuid.UUID
	ProductName  string
	BatchNumber  string
	SupplierName string

	CustomerID    uuid.UUID
	CustomerName  string
	DistrictID    uuid.UUID
	SalespersonID uuid.UUID

	Quantity            int64
	UnitCostPrice       decimal.Decimal
	UnitRetailPrice     decimal.Decimal
	TotalBeforeDiscount decimal.Decimal
	Discount            decimal.Decimal
	FinalPrice          decimal.Decimal
	AmountPaid          decimal.Decimal
	Balance             decimal.Decimal
	PaymentTerms        PaymentTerms
	PaymentMethod       PaymentMethod
	DueDate             *time.Time

	InvoiceNumber  string
	DocumentType   string
	Notes          string
	Classification string
	AreaCode       string

	Status SaleStatus
	// Fingerprint is the idempotency fingerprint of the request
	Fingerprint string
	// IdempotencyKey is Fingerprint suffixed with its occurrence number; unique in storage
	IdempotencyKey string
}

// NewSaleRecord snapshots the pool and priced request into a new ACTIVE sale
func NewSaleRecord(
	referenceCode string,
	req SaleRequest,
	pool *inventory.Pool,
	customerID uuid.UUID,
	customerName string,
	pricing PricingResult,
	fingerprint string,
	occurrence int64,
	actorID uuid.UUID,
) (*SaleRecord, error) {
	if referenceCode == "" {
		return nil, shared.NewValidationError("INVALID_REFERENCE", "Reference code cannot be empty")
	}
	if pool == nil {
		return nil, shared.NewReferenceNotFoundError("POOL_NOT_FOUND", "Inventory pool cannot be nil")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewReferenceNotFoundError("CUSTOMER_NOT_FOUND", "Customer must be resolved before recording a sale")
	}
	if fingerprint == "" {
		return nil, shared.NewValidationError("INVALID_FINGERPRINT", "Fingerprint cannot be empty")
	}

	return &SaleRecord{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		ReferenceCode:        referenceCode,
		PoolID:               pool.ID,
		ProductID:            pool.ProductID,
		BatchID:              pool.BatchID,
		ProductName:          pool.ProductName,
		BatchNumber:          pool.BatchNumber,
		SupplierName:         pool.SupplierName,
		CustomerID:           customerID,
		CustomerName:         customerName,
		DistrictID:           req.DistrictID,
		SalespersonID:        req.SalespersonID,
		Quantity:             req.Quantity,
		UnitCostPrice:        pool.CostPrice,
		UnitRetailPrice:      pool.RetailPrice,
		TotalBeforeDiscount:  pricing.TotalBeforeDiscount,
		Discount:             pricing.Discount,
		FinalPrice:           pricing.FinalPrice,
		AmountPaid:           pricing.AmountPaid,
		Balance:              pricing.Balance,
		PaymentTerms:         req.PaymentTerms,
		PaymentMethod:        req.PaymentMethod,
		DueDate:              pricing.DueDate,
		InvoiceNumber:        req.InvoiceNumber,
		DocumentType:         req.DocumentType,
		Notes:                req.Notes,
		Classification:       req.Classification,
		AreaCode:             req.AreaCode,
		Status:               SaleStatusActive,
		Fingerprint:          fingerprint,
		IdempotencyKey:       IdempotencyKey(fingerprint, occurrence),
	}, nil
}

// IdempotencyKey derives the unique storage key of the n-th sale with a fingerprint.
// Racing identical submissions compute the same key and collide.
func IdempotencyKey(fingerprint string, occurrence int64) string {
	return fmt.Sprintf("%s:%d", fingerprint, occurrence)
}

// ApplyReturnedQuantity sets Status from the total quantity processed as returned.
// Returns true if the status changed.
func (s *SaleRecord) ApplyReturnedQuantity(returned int64) (bool, error) {
	if returned < 0 || returned > s.Quantity {
		return false, shared.NewInvariantViolationError("RETURN_EXCEEDS_SALE",
			fmt.Sprintf("Returned quantity %d is outside 0..%d for sale %s", returned, s.Quantity, s.ReferenceCode))
	}

	next := SaleStatusActive
	switch {
	case returned == s.Quantity:
		next = SaleStatusReturned
	case returned > 0:
		next = SaleStatusPartiallyReturned
	}

	if next == s.Status {
		return false, nil
	}
	s.Status = next
	s.Touch()
	s.IncrementVersion()
	return true, nil
}
