package trade

import (
	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
)

// ActionContext identifies who performs an operation and from where
type ActionContext struct {
	ActorID   uuid.UUID
	IPAddress string
	UserAgent string
	RequestID string
}

// Validate ensures an actor is present
func (a ActionContext) Validate() error {
	if a.ActorID == uuid.Nil {
		return shared.NewValidationError("MISSING_ACTOR", "Actor ID is required").WithField("actor_id")
	}
	return nil
}

// auditEntry builds an audit entry carrying the context's actor and network metadata
func (a ActionContext) auditEntry(model string, recordID uuid.UUID, action audit.Action, description string) (*audit.Entry, error) {
	e, err := audit.NewEntry(a.ActorID, model, recordID, action, description)
	if err != nil {
		return nil, err
	}
	return e.WithNetwork(a.IPAddress, a.UserAgent), nil
}
