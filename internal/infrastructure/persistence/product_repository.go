package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateWriteError(r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error)
}

// UpdateAveragePrices persists only the derived average prices.
// The averages depend on pool prices and statuses, never on quantities, so
// concurrent sales compute the same values and last write wins.
func (r *GormProductRepository) UpdateAveragePrices(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"average_cost_price":   product.AverageCostPrice,
			"average_retail_price": product.AverageRetailPrice,
			"version":              gorm.Expr("version + 1"),
			"updated_at":           product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
