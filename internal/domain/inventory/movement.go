package inventory

import (
	"fmt"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType represents the kind of quantity change recorded in the ledger
type MovementType string

const (
	// MovementTypeSaleOut is stock leaving a pool for a sale
	MovementTypeSaleOut MovementType = "SALE_OUT"
	// MovementTypeReturnIn is stock coming back into a pool from a restockable return
	MovementTypeReturnIn MovementType = "RETURN_IN"
	// MovementTypeReturnLoss documents a non-restockable return without changing quantity
	MovementTypeReturnLoss MovementType = "RETURN_LOSS"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSaleOut, MovementTypeReturnIn, MovementTypeReturnLoss:
		return true
	}
	return false
}

// validDelta reports whether a signed delta matches the direction of the type
func (t MovementType) validDelta(delta int64) bool {
	switch t {
	case MovementTypeSaleOut:
		return delta < 0
	case MovementTypeReturnIn:
		return delta > 0
	case MovementTypeReturnLoss:
		return delta == 0
	}
	return false
}

// Movement is an append-only ledger entry for one inventory quantity change.
// Once created it is never updated or deleted; corrections are new entries.
type Movement struct {
	shared.BaseEntity
	PoolID           uuid.UUID
	ProductID        uuid.UUID
	MovementType     MovementType
	Quantity         int64 // signed delta, negative for outbound
	PreviousQuantity int64
	NewQuantity      int64
	ReferenceCode    string // links the entry to the sale or return that caused it
	SourceID         uuid.UUID
	Reason           string
	ActorID          uuid.UUID
}

// NewMovement creates a new ledger entry. PreviousQuantity + Quantity must equal NewQuantity.
func NewMovement(
	poolID uuid.UUID,
	productID uuid.UUID,
	movementType MovementType,
	delta int64,
	previousQuantity int64,
	newQuantity int64,
	referenceCode string,
	sourceID uuid.UUID,
) (*Movement, error) {
	if poolID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_POOL", "Pool ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if !movementType.validDelta(delta) {
		return nil, shared.NewInvariantViolationError("INVALID_MOVEMENT_DELTA",
			fmt.Sprintf("Quantity delta %d does not match movement type %s", delta, movementType))
	}
	if previousQuantity+delta != newQuantity {
		return nil, shared.NewInvariantViolationError("LEDGER_MISMATCH",
			fmt.Sprintf("Ledger entry does not balance: %d %+d != %d", previousQuantity, delta, newQuantity))
	}
	if newQuantity < 0 {
		return nil, shared.NewInvariantViolationError("NEGATIVE_STOCK", "Pool quantity cannot become negative")
	}
	if referenceCode == "" {
		return nil, shared.NewValidationError("INVALID_REFERENCE", "Reference code cannot be empty")
	}

	return &Movement{
		BaseEntity:       shared.NewBaseEntity(),
		PoolID:           poolID,
		ProductID:        productID,
		MovementType:     movementType,
		Quantity:         delta,
		PreviousQuantity: previousQuantity,
		NewQuantity:      newQuantity,
		ReferenceCode:    referenceCode,
		SourceID:         sourceID,
	}, nil
}

// WithReason sets the reason for the movement
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = reason
	return m
}

// WithActor sets the user who caused the movement
func (m *Movement) WithActor(actorID uuid.UUID) *Movement {
	m.ActorID = actorID
	return m
}

// IsOutbound returns true if the movement removed stock
func (m *Movement) IsOutbound() bool {
	return m.Quantity < 0
}

// IsDocumentary returns true if the movement carries no quantity effect
func (m *Movement) IsDocumentary() bool {
	return m.Quantity == 0
}
