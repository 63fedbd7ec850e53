package models

import (
	"time"

	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditEntryModel is the persistence model for the append-only audit log.
type AuditEntryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ActorID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Model       string    `gorm:"type:varchar(50);not null;index:idx_audit_record,priority:1"`
	RecordID    uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_record,priority:2"`
	Action      string    `gorm:"type:varchar(30);not null"`
	Description string    `gorm:"type:text"`
	IPAddress   string    `gorm:"type:varchar(45)"`
	UserAgent   string    `gorm:"type:varchar(255)"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditEntryModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:          m.ID,
		ActorID:     m.ActorID,
		Model:       m.Model,
		RecordID:    m.RecordID,
		Action:      audit.Action(m.Action),
		Description: m.Description,
		IPAddress:   m.IPAddress,
		UserAgent:   m.UserAgent,
		CreatedAt:   m.CreatedAt,
	}
}

// AuditEntryModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditEntryModelFromDomain(e *audit.Entry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:          e.ID,
		ActorID:     e.ActorID,
		Model:       e.Model,
		RecordID:    e.RecordID,
		Action:      string(e.Action),
		Description: e.Description,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		CreatedAt:   e.CreatedAt,
	}
}

// ReferenceSequenceModel holds the last issued number of one reference code prefix.
type ReferenceSequenceModel struct {
	Prefix    string    `gorm:"type:varchar(10);primary_key"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReferenceSequenceModel) TableName() string {
	return "reference_sequences"
}
