package persistence

import (
	"context"

	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple customers in one round trip
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Customer, error) {
	if len(ids) == 0 {
		return []partner.Customer{}, nil
	}
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	customers := make([]partner.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, nil
}

// FindActiveByNormalizedName finds the active customer with the given lookup key.
// When several match, the oldest wins so repeated lookups are stable.
func (r *GormCustomerRepository) FindActiveByNormalizedName(ctx context.Context, normalizedName string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("normalized_name = ? AND status = ?", normalizedName, string(partner.CustomerStatusActive)).
		Order("created_at ASC, id ASC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return translateWriteError(r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error)
}

// GormDistrictRepository implements DistrictRepository using GORM
type GormDistrictRepository struct {
	db *gorm.DB
}

// NewGormDistrictRepository creates a new GormDistrictRepository
func NewGormDistrictRepository(db *gorm.DB) *GormDistrictRepository {
	return &GormDistrictRepository{db: db}
}

// FindByID finds a district by its ID
func (r *GormDistrictRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.District, error) {
	var model models.DistrictModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple districts in one round trip
func (r *GormDistrictRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.District, error) {
	if len(ids) == 0 {
		return []partner.District{}, nil
	}
	var rows []models.DistrictModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]partner.District, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a district
func (r *GormDistrictRepository) Save(ctx context.Context, district *partner.District) error {
	return translateWriteError(r.db.WithContext(ctx).Save(models.DistrictModelFromDomain(district)).Error)
}

// GormSalespersonRepository implements SalespersonRepository using GORM
type GormSalespersonRepository struct {
	db *gorm.DB
}

// NewGormSalespersonRepository creates a new GormSalespersonRepository
func NewGormSalespersonRepository(db *gorm.DB) *GormSalespersonRepository {
	return &GormSalespersonRepository{db: db}
}

// FindByID finds a salesperson by its ID
func (r *GormSalespersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Salesperson, error) {
	var model models.SalespersonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple salespeople in one round trip
func (r *GormSalespersonRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Salesperson, error) {
	if len(ids) == 0 {
		return []partner.Salesperson{}, nil
	}
	var rows []models.SalespersonModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]partner.Salesperson, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a salesperson
func (r *GormSalespersonRepository) Save(ctx context.Context, salesperson *partner.Salesperson) error {
	return translateWriteError(r.db.WithContext(ctx).Save(models.SalespersonModelFromDomain(salesperson)).Error)
}

// Ensure the repositories implement their interfaces
var (
	_ partner.CustomerRepository    = (*GormCustomerRepository)(nil)
	_ partner.DistrictRepository    = (*GormDistrictRepository)(nil)
	_ partner.SalespersonRepository = (*GormSalespersonRepository)(nil)
)
