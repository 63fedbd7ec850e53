package audit

import (
	"context"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is what happened to the audited record
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionAutoCreate   Action = "AUTO_CREATE"
	ActionStatusChange Action = "STATUS_CHANGE"
	ActionRestock      Action = "RESTOCK"
)

// Entry is one append-only audit log record
type Entry struct {
	ID          uuid.UUID
	ActorID     uuid.UUID
	Model       string // audited record type, e.g. "sale"
	RecordID    uuid.UUID
	Action      Action
	Description string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}

// NewEntry creates an audit entry stamped with the current time
func NewEntry(actorID uuid.UUID, model string, recordID uuid.UUID, action Action, description string) (*Entry, error) {
	if model == "" || recordID == uuid.Nil || action == "" {
		return nil, shared.NewValidationError("INVALID_AUDIT_ENTRY", "Audit entry requires model, record id and action")
	}
	return &Entry{
		ID:          uuid.New(),
		ActorID:     actorID,
		Model:       model,
		RecordID:    recordID,
		Action:      action,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// WithNetwork attaches the caller's network metadata
func (e *Entry) WithNetwork(ipAddress, userAgent string) *Entry {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

// Repository is the append-only audit log sink
type Repository interface {
	// Append writes an entry; entries are never updated or deleted
	Append(ctx context.Context, entry *Entry) error

	// FindByRecord lists the entries of one record in creation order
	FindByRecord(ctx context.Context, model string, recordID uuid.UUID) ([]Entry, error)
}
