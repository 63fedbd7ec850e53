package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleReturnRepository implements SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

// FindByID finds a sale return by its ID
func (r *GormSaleReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SaleReturn, error) {
	var model models.SaleReturnModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a sale return and row-locks it until the transaction ends
func (r *GormSaleReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SaleReturn, error) {
	var model models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySale lists a sale's returns with pagination, newest first by default
func (r *GormSaleReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID, filter shared.Filter) ([]trade.SaleReturn, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Where("sale_id = ?", saleID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleReturnModel
	if err := r.applyFilter(query, filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	returns := make([]trade.SaleReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, total, nil
}

// SumReservedQuantity sums return quantities of a sale that are neither REJECTED nor CANCELLED
func (r *GormSaleReturnRepository) SumReservedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error) {
	return r.sumQuantity(ctx, r.db.WithContext(ctx).
		Where("sale_id = ? AND status NOT IN ?", saleID, []string{
			string(trade.ReturnStatusRejected),
			string(trade.ReturnStatusCancelled),
		}))
}

// SumProcessedQuantity sums return quantities of a sale that are PROCESSED
func (r *GormSaleReturnRepository) SumProcessedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error) {
	return r.sumQuantity(ctx, r.db.WithContext(ctx).
		Where("sale_id = ? AND status = ?", saleID, string(trade.ReturnStatusProcessed)))
}

func (r *GormSaleReturnRepository) sumQuantity(_ context.Context, query *gorm.DB) (int64, error) {
	var sum int64
	if err := query.
		Model(&models.SaleReturnModel{}).
		Select("COALESCE(SUM(return_quantity), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// Create inserts a return
func (r *GormSaleReturnRepository) Create(ctx context.Context, ret *trade.SaleReturn) error {
	return translateWriteError(r.db.WithContext(ctx).Create(models.SaleReturnModelFromDomain(ret)).Error)
}

// UpdateStatus persists the status fields with an optimistic version check
func (r *GormSaleReturnRepository) UpdateStatus(ctx context.Context, ret *trade.SaleReturn) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Where("id = ? AND version = ?", ret.ID, ret.Version-1).
		Updates(map[string]interface{}{
			"status":            string(ret.Status),
			"status_notes":      ret.StatusNotes,
			"status_changed_by": ret.StatusChangedBy,
			"approved_at":       ret.ApprovedAt,
			"processed_at":      ret.ProcessedAt,
			"rejected_at":       ret.RejectedAt,
			"cancelled_at":      ret.CancelledAt,
			"version":           ret.Version,
			"updated_at":        ret.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConcurrentModification
	}
	return nil
}

// applyFilter applies ordering and pagination
func (r *GormSaleReturnRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, SaleReturnSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.
		Order(sortField + " " + sortOrder).
		Order("id " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

// Ensure GormSaleReturnRepository implements SaleReturnRepository
var _ trade.SaleReturnRepository = (*GormSaleReturnRepository)(nil)
