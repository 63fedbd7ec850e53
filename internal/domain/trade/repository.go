package trade

import (
	"context"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale record persistence
type SaleRepository interface {
	// FindByID finds a sale by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SaleRecord, error)

	// FindByIDForUpdate finds a sale and row-locks it until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SaleRecord, error)

	// FindLatestByFingerprint finds the most recent sale with the fingerprint
	FindLatestByFingerprint(ctx context.Context, fingerprint string) (*SaleRecord, error)

	// CountByFingerprint counts sales carrying the fingerprint
	CountByFingerprint(ctx context.Context, fingerprint string) (int64, error)

	// Create inserts a sale. A storage uniqueness collision returns a Conflict error.
	Create(ctx context.Context, sale *SaleRecord) error

	// UpdateStatus persists Status with an optimistic version check
	UpdateStatus(ctx context.Context, sale *SaleRecord) error
}

// SaleReturnRepository defines the interface for sale return persistence
type SaleReturnRepository interface {
	// FindByID finds a return by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SaleReturn, error)

	// FindByIDForUpdate finds a return and row-locks it until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SaleReturn, error)

	// FindBySale lists a sale's returns, newest first
	FindBySale(ctx context.Context, saleID uuid.UUID, filter shared.Filter) ([]SaleReturn, int64, error)

	// SumReservedQuantity sums return quantities of a sale that are neither REJECTED nor CANCELLED
	SumReservedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error)

	// SumProcessedQuantity sums return quantities of a sale that are PROCESSED
	SumProcessedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error)

	// Create inserts a return
	Create(ctx context.Context, ret *SaleReturn) error

	// UpdateStatus persists the status fields with an optimistic version check
	UpdateStatus(ctx context.Context, ret *SaleReturn) error
}

// Reference code prefixes
const (
	SaleReferencePrefix   = "SALE"
	ReturnReferencePrefix = "RET"
)

// ReferenceCodeGenerator issues globally unique, fixed-length, prefixed codes such as SALE-000123
type ReferenceCodeGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}
