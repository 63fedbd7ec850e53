package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SaleRecord, error) {
	var model models.SaleRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a sale and row-locks it until the transaction ends
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SaleRecord, error) {
	var model models.SaleRecordModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindLatestByFingerprint finds the most recent sale with the fingerprint
func (r *GormSaleRepository) FindLatestByFingerprint(ctx context.Context, fingerprint string) (*trade.SaleRecord, error) {
	var model models.SaleRecordModel
	if err := r.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// CountByFingerprint counts sales carrying the fingerprint
func (r *GormSaleRepository) CountByFingerprint(ctx context.Context, fingerprint string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleRecordModel{}).
		Where("fingerprint = ?", fingerprint).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a sale. A collision on the idempotency key or reference code
// returns shared.ErrAlreadyExists wrapping the driver error.
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.SaleRecord) error {
	return translateWriteError(r.db.WithContext(ctx).Create(models.SaleRecordModelFromDomain(sale)).Error)
}

// UpdateStatus persists Status with an optimistic version check
func (r *GormSaleRepository) UpdateStatus(ctx context.Context, sale *trade.SaleRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleRecordModel{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]interface{}{
			"status":     string(sale.Status),
			"version":    sale.Version,
			"updated_at": sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConcurrentModification
	}
	return nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
