package persistence

import (
	"context"

	apptrade "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/domain/trade"
	"gorm.io/gorm"
)

// GormUnitOfWork implements UnitOfWork using GORM transactions.
// Every repository handed to the function shares one transaction.
type GormUnitOfWork struct {
	db              *gorm.DB
	referenceDigits int
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB, referenceDigits int) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, referenceDigits: referenceDigits}
}

// Execute runs the given function within a database transaction.
// If the function returns an error or panics, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, referenceDigits: u.referenceDigits})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx              *gorm.DB
	referenceDigits int
}

func (r *gormTransactionalRepositories) PoolRepo() inventory.PoolRepository {
	return NewGormPoolRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductTransactionRepo() inventory.ProductTransactionRepository {
	return NewGormProductTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleRepo() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReturnRepo() trade.SaleReturnRepository {
	return NewGormSaleReturnRepository(r.tx)
}

func (r *gormTransactionalRepositories) AuditRepo() audit.Repository {
	return NewGormAuditRepository(r.tx)
}

// ReferenceCodes returns the generator bound to the current transaction
func (r *gormTransactionalRepositories) ReferenceCodes() trade.ReferenceCodeGenerator {
	return NewGormReferenceCodeGenerator(r.tx, r.referenceDigits)
}

var (
	_ apptrade.UnitOfWork                = (*GormUnitOfWork)(nil)
	_ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
