package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// The ledger is append-only: there are no update or delete methods.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a ledger entry
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(models.MovementModelFromDomain(movement)).Error
}

// FindByPool lists a pool's ledger in creation order
func (r *GormMovementRepository) FindByPool(ctx context.Context, poolID uuid.UUID) ([]inventory.Movement, error) {
	var rows []models.MovementModel
	if err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

// FindByReference lists entries linked to a sale or return reference code
func (r *GormMovementRepository) FindByReference(ctx context.Context, referenceCode string) ([]inventory.Movement, error) {
	var rows []models.MovementModel
	if err := r.db.WithContext(ctx).
		Where("reference_code = ?", referenceCode).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

func movementsToDomain(rows []models.MovementModel) []inventory.Movement {
	out := make([]inventory.Movement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormProductTransactionRepository implements ProductTransactionRepository using GORM
type GormProductTransactionRepository struct {
	db *gorm.DB
}

// NewGormProductTransactionRepository creates a new GormProductTransactionRepository
func NewGormProductTransactionRepository(db *gorm.DB) *GormProductTransactionRepository {
	return &GormProductTransactionRepository{db: db}
}

// Create appends a history entry
func (r *GormProductTransactionRepository) Create(ctx context.Context, tx *inventory.ProductTransaction) error {
	return r.db.WithContext(ctx).Create(models.ProductTransactionModelFromDomain(tx)).Error
}

// FindByProduct lists a product's history in creation order
func (r *GormProductTransactionRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductTransaction, error) {
	var rows []models.ProductTransactionModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.ProductTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Ensure the repositories implement their interfaces
var (
	_ inventory.MovementRepository           = (*GormMovementRepository)(nil)
	_ inventory.ProductTransactionRepository = (*GormProductTransactionRepository)(nil)
)
