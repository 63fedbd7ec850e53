package trade

import (
	"context"
	"time"

	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPoolRepository is a mock implementation of inventory.PoolRepository
type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Pool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Pool), args.Error(1)
}

func (m *MockPoolRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Pool, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Pool), args.Error(1)
}

func (m *MockPoolRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Pool, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Pool), args.Error(1)
}

func (m *MockPoolRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Pool, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Pool), args.Error(1)
}

func (m *MockPoolRepository) Save(ctx context.Context, pool *inventory.Pool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *MockPoolRepository) UpdateQuantity(ctx context.Context, pool *inventory.Pool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of inventory.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByPool(ctx context.Context, poolID uuid.UUID) ([]inventory.Movement, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByReference(ctx context.Context, referenceCode string) ([]inventory.Movement, error) {
	args := m.Called(ctx, referenceCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

// MockProductTransactionRepository is a mock implementation of inventory.ProductTransactionRepository
type MockProductTransactionRepository struct {
	mock.Mock
}

func (m *MockProductTransactionRepository) Create(ctx context.Context, tx *inventory.ProductTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockProductTransactionRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductTransaction, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.ProductTransaction), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateAveragePrices(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Customer, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActiveByNormalizedName(ctx context.Context, normalizedName string) (*partner.Customer, error) {
	args := m.Called(ctx, normalizedName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockSalespersonRepository is a mock implementation of partner.SalespersonRepository
type MockSalespersonRepository struct {
	mock.Mock
}

func (m *MockSalespersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Salesperson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Salesperson), args.Error(1)
}

func (m *MockSalespersonRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Salesperson, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Salesperson), args.Error(1)
}

func (m *MockSalespersonRepository) Save(ctx context.Context, salesperson *partner.Salesperson) error {
	args := m.Called(ctx, salesperson)
	return args.Error(0)
}

// MockDistrictRepository is a mock implementation of partner.DistrictRepository
type MockDistrictRepository struct {
	mock.Mock
}

func (m *MockDistrictRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.District, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.District), args.Error(1)
}

func (m *MockDistrictRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.District, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.District), args.Error(1)
}

func (m *MockDistrictRepository) Save(ctx context.Context, district *partner.District) error {
	args := m.Called(ctx, district)
	return args.Error(0)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SaleRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SaleRecord), args.Error(1)
}

func (m *MockSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SaleRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SaleRecord), args.Error(1)
}

func (m *MockSaleRepository) FindLatestByFingerprint(ctx context.Context, fingerprint string) (*trade.SaleRecord, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SaleRecord), args.Error(1)
}

func (m *MockSaleRepository) CountByFingerprint(ctx context.Context, fingerprint string) (int64, error) {
	args := m.Called(ctx, fingerprint)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *trade.SaleRecord) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) UpdateStatus(ctx context.Context, sale *trade.SaleRecord) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

// MockSaleReturnRepository is a mock implementation of trade.SaleReturnRepository
type MockSaleReturnRepository struct {
	mock.Mock
}

func (m *MockSaleReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SaleReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SaleReturn), args.Error(1)
}

func (m *MockSaleReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SaleReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SaleReturn), args.Error(1)
}

func (m *MockSaleReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID, filter shared.Filter) ([]trade.SaleReturn, int64, error) {
	args := m.Called(ctx, saleID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]trade.SaleReturn), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleReturnRepository) SumReservedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleReturnRepository) SumProcessedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleReturnRepository) Create(ctx context.Context, ret *trade.SaleReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockSaleReturnRepository) UpdateStatus(ctx context.Context, ret *trade.SaleReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByRecord(ctx context.Context, model string, recordID uuid.UUID) ([]audit.Entry, error) {
	args := m.Called(ctx, model, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

// MockReferenceCodeGenerator is a mock implementation of trade.ReferenceCodeGenerator
type MockReferenceCodeGenerator struct {
	mock.Mock
}

func (m *MockReferenceCodeGenerator) Next(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

// MockFingerprintStore is a mock implementation of shared.FingerprintStore
type MockFingerprintStore struct {
	mock.Mock
}

func (m *MockFingerprintStore) MarkProcessed(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, fingerprint, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockFingerprintStore) IsProcessed(ctx context.Context, fingerprint string) (bool, error) {
	args := m.Called(ctx, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *MockFingerprintStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// testRepos bundles one mock per repository port
type testRepos struct {
	pools        *MockPoolRepository
	movements    *MockMovementRepository
	history      *MockProductTransactionRepository
	products     *MockProductRepository
	customers    *MockCustomerRepository
	salespeople  *MockSalespersonRepository
	districts    *MockDistrictRepository
	sales        *MockSaleRepository
	returns      *MockSaleReturnRepository
	audit        *MockAuditRepository
	references   *MockReferenceCodeGenerator
	fingerprints *MockFingerprintStore
}

func newTestRepos() *testRepos {
	return &testRepos{
		pools:        new(MockPoolRepository),
		movements:    new(MockMovementRepository),
		history:      new(MockProductTransactionRepository),
		products:     new(MockProductRepository),
		customers:    new(MockCustomerRepository),
		salespeople:  new(MockSalespersonRepository),
		districts:    new(MockDistrictRepository),
		sales:        new(MockSaleRepository),
		returns:      new(MockSaleReturnRepository),
		audit:        new(MockAuditRepository),
		references:   new(MockReferenceCodeGenerator),
		fingerprints: new(MockFingerprintStore),
	}
}

func (r *testRepos) unitOfWork() *NoOpUnitOfWork {
	return NewNoOpUnitOfWork(&Repositories{
		Pools:               r.pools,
		Movements:           r.movements,
		ProductTransactions: r.history,
		Products:            r.products,
		Customers:           r.customers,
		Sales:               r.sales,
		Returns:             r.returns,
		Audit:               r.audit,
		References:          r.references,
	})
}
