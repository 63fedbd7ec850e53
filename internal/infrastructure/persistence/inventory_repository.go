package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPoolRepository implements PoolRepository using GORM
type GormPoolRepository struct {
	db *gorm.DB
}

// NewGormPoolRepository creates a new GormPoolRepository
func NewGormPoolRepository(db *gorm.DB) *GormPoolRepository {
	return &GormPoolRepository{db: db}
}

// productLabel is the product snapshot a pool carries for sale records
type productLabel struct {
	ID           uuid.UUID
	Name         string
	SupplierName string
}

// FindByID finds a pool by its ID
func (r *GormPoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Pool, error) {
	var model models.PoolModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	pools, err := r.withProductLabels(ctx, []models.PoolModel{model})
	if err != nil {
		return nil, err
	}
	return &pools[0], nil
}

// FindByIDs finds multiple pools in one round trip; missing ids are simply absent
func (r *GormPoolRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Pool, error) {
	if len(ids) == 0 {
		return []inventory.Pool{}, nil
	}
	var rows []models.PoolModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withProductLabels(ctx, rows)
}

// FindByIDsForUpdate finds pools with SELECT ... FOR UPDATE, ordered by id so
// concurrent batches acquire row locks in the same order and cannot deadlock.
// Must be called inside a transaction; the locks are held until it ends.
func (r *GormPoolRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Pool, error) {
	if len(ids) == 0 {
		return []inventory.Pool{}, nil
	}
	var rows []models.PoolModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withProductLabels(ctx, rows)
}

// FindActiveByProduct finds all ACTIVE pools of a product
func (r *GormPoolRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Pool, error) {
	var rows []models.PoolModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, string(inventory.PoolStatusActive)).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	pools := make([]inventory.Pool, len(rows))
	for i := range rows {
		pools[i] = *rows[i].ToDomain()
	}
	return pools, nil
}

// Save creates or updates a pool
func (r *GormPoolRepository) Save(ctx context.Context, pool *inventory.Pool) error {
	model := models.PoolModelFromDomain(pool)
	return translateWriteError(r.db.WithContext(ctx).Save(model).Error)
}

// UpdateQuantity persists CurrentQuantity with an optimistic version check.
// The domain has already incremented Version, so the stored row must hold Version-1.
func (r *GormPoolRepository) UpdateQuantity(ctx context.Context, pool *inventory.Pool) error {
	result := r.db.WithContext(ctx).
		Model(&models.PoolModel{}).
		Where("id = ? AND version = ?", pool.ID, pool.Version-1).
		Updates(map[string]interface{}{
			"current_quantity": pool.CurrentQuantity,
			"version":          pool.Version,
			"updated_at":       pool.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConcurrentModification
	}
	return nil
}

// withProductLabels converts rows to domain pools and fills in the product and
// supplier names with one extra query
func (r *GormPoolRepository) withProductLabels(ctx context.Context, rows []models.PoolModel) ([]inventory.Pool, error) {
	pools := make([]inventory.Pool, len(rows))
	if len(rows) == 0 {
		return pools, nil
	}

	productIDs := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ProductID]; !ok {
			seen[row.ProductID] = struct{}{}
			productIDs = append(productIDs, row.ProductID)
		}
	}

	var labels []productLabel
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("id, name, supplier_name").
		Where("id IN ?", productIDs).
		Scan(&labels).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]productLabel, len(labels))
	for _, l := range labels {
		byID[l.ID] = l
	}

	for i := range rows {
		pools[i] = *rows[i].ToDomain()
		if l, ok := byID[rows[i].ProductID]; ok {
			pools[i].ProductName = l.Name
			pools[i].SupplierName = l.SupplierName
		}
	}
	return pools, nil
}

// Ensure GormPoolRepository implements PoolRepository
var _ inventory.PoolRepository = (*GormPoolRepository)(nil)
