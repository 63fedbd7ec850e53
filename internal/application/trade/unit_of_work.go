package trade

import (
	"context"

	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/domain/trade"
)

// UnitOfWork runs a function inside one database transaction.
// If the function returns an error or panics, every write made through the
// provided repositories is rolled back; otherwise all of them commit together.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	PoolRepo() inventory.PoolRepository
	MovementRepo() inventory.MovementRepository
	ProductTransactionRepo() inventory.ProductTransactionRepository
	ProductRepo() catalog.ProductRepository
	CustomerRepo() partner.CustomerRepository
	SaleRepo() trade.SaleRepository
	ReturnRepo() trade.SaleReturnRepository
	AuditRepo() audit.Repository
	ReferenceCodes() trade.ReferenceCodeGenerator
}

// Repositories is a plain bundle of repositories implementing TransactionalRepositories.
// NoOpUnitOfWork uses it to run functions without a transaction.
type Repositories struct {
	Pools               inventory.PoolRepository
	Movements           inventory.MovementRepository
	ProductTransactions inventory.ProductTransactionRepository
	Products            catalog.ProductRepository
	Customers           partner.CustomerRepository
	Sales               trade.SaleRepository
	Returns             trade.SaleReturnRepository
	Audit               audit.Repository
	References          trade.ReferenceCodeGenerator
}

func (r *Repositories) PoolRepo() inventory.PoolRepository {
	return r.Pools
}

func (r *Repositories) MovementRepo() inventory.MovementRepository {
	return r.Movements
}

func (r *Repositories) ProductTransactionRepo() inventory.ProductTransactionRepository {
	return r.ProductTransactions
}

func (r *Repositories) ProductRepo() catalog.ProductRepository {
	return r.Products
}

func (r *Repositories) CustomerRepo() partner.CustomerRepository {
	return r.Customers
}

func (r *Repositories) SaleRepo() trade.SaleRepository {
	return r.Sales
}

func (r *Repositories) ReturnRepo() trade.SaleReturnRepository {
	return r.Returns
}

func (r *Repositories) AuditRepo() audit.Repository {
	return r.Audit
}

func (r *Repositories) ReferenceCodes() trade.ReferenceCodeGenerator {
	return r.References
}

// NoOpUnitOfWork is a unit of work that doesn't actually use transactions.
// This is useful for testing with mocked repositories.
type NoOpUnitOfWork struct {
	repos *Repositories
}

// NewNoOpUnitOfWork creates a NoOpUnitOfWork over the given repositories
func NewNoOpUnitOfWork(repos *Repositories) *NoOpUnitOfWork {
	return &NoOpUnitOfWork{repos: repos}
}

// Execute runs the function without a real transaction
func (u *NoOpUnitOfWork) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(u.repos)
}

var _ UnitOfWork = (*NoOpUnitOfWork)(nil)
var _ TransactionalRepositories = (*Repositories)(nil)
