package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM.
// Like the movement ledger it only ever inserts.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes an audit entry
func (r *GormAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(models.AuditEntryModelFromDomain(entry)).Error
}

// FindByRecord lists the entries of one record in creation order
func (r *GormAuditRepository) FindByRecord(ctx context.Context, model string, recordID uuid.UUID) ([]audit.Entry, error) {
	var rows []models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("model = ? AND record_id = ?", model, recordID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]audit.Entry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

var _ audit.Repository = (*GormAuditRepository)(nil)
