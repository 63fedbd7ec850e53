package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the status of a sale return
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"   // Filed, waiting for approval
	ReturnStatusApproved  ReturnStatus = "APPROVED"  // Approved, ready for processing
	ReturnStatusProcessed ReturnStatus = "PROCESSED" // Inventory and sale status updated
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusCancelled ReturnStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusProcessed,
		ReturnStatusRejected, ReturnStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is permitted
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusProcessed || s == ReturnStatusRejected || s == ReturnStatusCancelled
}

// CountsTowardsReturned returns true if the return's quantity is reserved against the sale
func (s ReturnStatus) CountsTowardsReturned() bool {
	return s != ReturnStatusRejected && s != ReturnStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return target == ReturnStatusApproved || target == ReturnStatusRejected || target == ReturnStatusCancelled
	case ReturnStatusApproved:
		return target == ReturnStatusProcessed || target == ReturnStatusRejected || target == ReturnStatusCancelled
	case ReturnStatusProcessed, ReturnStatusRejected, ReturnStatusCancelled:
		return false // Terminal states
	}
	return false
}

// SaleReturn is a request to reverse part or all of a sale
type SaleReturn struct {
	shared.AuditedAggregateRoot
	ReferenceCode     string
	SaleID            uuid.UUID
	SaleReferenceCode string
	PoolID            uuid.UUID
	ProductID         uuid.UUID
	ReturnQuantity    int64
	ReturnPrice       decimal.Decimal // always the sale's unit retail price
	RefundAmount      decimal.Decimal // ReturnQuantity * ReturnPrice
	Reason            string
	Notes             string
	Restockable       bool
	Status            ReturnStatus
	StatusNotes       string
	StatusChangedBy   *uuid.UUID
	ApprovedAt        *time.Time
	ProcessedAt       *time.Time
	RejectedAt        *time.Time
	CancelledAt       *time.Time
}

// NewSaleReturn files a PENDING return against sale.
// reserved is the quantity of the sale's returns that are neither REJECTED nor CANCELLED.
func NewSaleReturn(
	referenceCode string,
	sale *SaleRecord,
	returnQuantity int64,
	reserved int64,
	reason, notes string,
	restockable bool,
	actorID uuid.UUID,
) (*SaleReturn, error) {
	if referenceCode == "" {
		return nil, shared.NewValidationError("INVALID_REFERENCE", "Reference code cannot be empty")
	}
	if sale == nil {
		return nil, shared.NewReferenceNotFoundError("SALE_NOT_FOUND", "Sale cannot be nil")
	}
	if returnQuantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Return quantity must be positive").WithField("return_quantity")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("INVALID_REASON", "Return reason is required").WithField("reason")
	}
	if len(reason) > 255 {
		return nil, shared.NewValidationError("INVALID_REASON", "Return reason cannot exceed 255 characters").WithField("reason")
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > 500 {
		return nil, shared.NewValidationError("INVALID_NOTES", "Notes cannot exceed 500 characters").WithField("notes")
	}

	remaining := sale.Quantity - reserved
	if returnQuantity > remaining {
		return nil, shared.NewInvariantViolationError("RETURN_EXCEEDS_REMAINING",
			fmt.Sprintf("Return quantity %d exceeds the returnable quantity %d of sale %s",
				returnQuantity, remaining, sale.ReferenceCode)).WithField("return_quantity")
	}

	return &SaleReturn{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		ReferenceCode:        referenceCode,
		SaleID:               sale.ID,
		SaleReferenceCode:    sale.ReferenceCode,
		PoolID:               sale.PoolID,
		ProductID:            sale.ProductID,
		ReturnQuantity:       returnQuantity,
		ReturnPrice:          sale.UnitRetailPrice,
		RefundAmount:         sale.UnitRetailPrice.Mul(decimal.NewFromInt(returnQuantity)),
		Reason:               reason,
		Notes:                notes,
		Restockable:          restockable,
		Status:               ReturnStatusPending,
	}, nil
}

// TransitionTo moves the return to target, stamping who did it and when
// A terminal return refuses every target, known or not.
func (r *SaleReturn) TransitionTo(target ReturnStatus, actorID uuid.UUID, notes string) error {
	if r.Status.IsTerminal() {
		return shared.NewStateTransitionError("INVALID_STATE",
			fmt.Sprintf("Return %s is already %s", r.ReferenceCode, r.Status))
	}
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Invalid return status: %s", target))
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.NewStateTransitionError("INVALID_STATE",
			fmt.Sprintf("Cannot move return %s from %s to %s", r.ReferenceCode, r.Status, target))
	}

	now := time.Now()
	switch target {
	case ReturnStatusApproved:
		r.ApprovedAt = &now
	case ReturnStatusProcessed:
		r.ProcessedAt = &now
	case ReturnStatusRejected:
		r.RejectedAt = &now
	case ReturnStatusCancelled:
		r.CancelledAt = &now
	}

	r.Status = target
	r.StatusNotes = strings.TrimSpace(notes)
	r.StatusChangedBy = &actorID
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// IsTerminal returns true if the return is in a terminal state
func (r *SaleReturn) IsTerminal() bool {
	return r.Status.IsTerminal()
}
