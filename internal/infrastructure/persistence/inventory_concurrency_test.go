package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPostgres opens gorm's postgres dialect over a mocked connection so
// the exact SQL a repository emits can be pinned
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var poolColumns = []string{
	"id", "created_at", "updated_at", "version", "product_id", "batch_id", "batch_number",
	"initial_quantity", "current_quantity", "cost_price", "retail_price", "status", "expiry_date",
}

func createTestPoolForConcurrency(t *testing.T) *inventory.Pool {
	t.Helper()
	pool, err := inventory.NewPool(uuid.New(), "B-100", 100,
		decimal.RequireFromString("6.50"), decimal.RequireFromString("10.00"), nil)
	require.NoError(t, err)
	return pool
}

func TestFindByIDsForUpdate_LocksRowsInIDOrder(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()
	repo := NewGormPoolRepository(db)

	first := createTestPoolForConcurrency(t)
	second := createTestPoolForConcurrency(t)
	second.ProductID = first.ProductID
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "inventory_pools" WHERE id IN \(\$1,\$2\) ORDER BY id FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(poolColumns).
			AddRow(first.ID, now, now, 1, first.ProductID, first.BatchID, "B-100", 100, 100, "6.50", "10.00", "ACTIVE", nil).
			AddRow(second.ID, now, now, 3, second.ProductID, second.BatchID, "B-101", 50, 20, "7.00", "11.00", "ACTIVE", nil))
	mock.ExpectQuery(`SELECT id, name, supplier_name FROM "products" WHERE id IN \(\$1\)`).
		WithArgs(first.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "supplier_name"}).
			AddRow(first.ProductID, "Amoxicillin 500mg", "Northwind Pharma"))

	pools, err := repo.FindByIDsForUpdate(context.Background(), []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "Amoxicillin 500mg", pools[0].ProductName)
	assert.Equal(t, "Northwind Pharma", pools[1].SupplierName)
	assert.Equal(t, int64(20), pools[1].CurrentQuantity)
	assert.Equal(t, 3, pools[1].Version)
	assert.True(t, pools[1].RetailPrice.Equal(decimal.RequireFromString("11.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDsForUpdate_EmptyIDsSkipsQuery(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	pools, err := NewGormPoolRepository(db).FindByIDsForUpdate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, pools)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_OptimisticLocking(t *testing.T) {
	t.Run("successful update with correct version", func(t *testing.T) {
		db, mock, mockDB := newMockPostgres(t)
		defer mockDB.Close()

		pool := createTestPoolForConcurrency(t)
		_, _, err := pool.Deduct(20)
		require.NoError(t, err)
		require.Equal(t, 2, pool.Version)

		mock.ExpectExec(`UPDATE "inventory_pools" SET "current_quantity"=\$1,"updated_at"=\$2,"version"=\$3 WHERE id = \$4 AND version = \$5`).
			WithArgs(int64(80), sqlmock.AnyArg(), 2, pool.ID, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewGormPoolRepository(db).UpdateQuantity(context.Background(), pool))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when another transaction bumped the version", func(t *testing.T) {
		db, mock, mockDB := newMockPostgres(t)
		defer mockDB.Close()

		pool := createTestPoolForConcurrency(t)
		_, _, err := pool.Deduct(20)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "inventory_pools" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = NewGormPoolRepository(db).UpdateQuantity(context.Background(), pool)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindConflict))
		assert.Contains(t, err.Error(), "modified by another transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConcurrentDeductScenario_Domain(t *testing.T) {
	// Two readers load the same pool at version 1 and both deduct.
	// Under UpdateQuantity only the first writer matches version = 1.
	reader1 := createTestPoolForConcurrency(t)
	reader2 := *reader1

	_, _, err := reader1.Deduct(30)
	require.NoError(t, err)
	_, _, err = reader2.Deduct(30)
	require.NoError(t, err)

	assert.Equal(t, 2, reader1.Version)
	assert.Equal(t, reader1.Version, reader2.Version)
}

func TestOversellPrevention_Domain(t *testing.T) {
	pool := createTestPoolForConcurrency(t)

	_, _, err := pool.Deduct(101)
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
	assert.Equal(t, int64(100), pool.CurrentQuantity)
	assert.Equal(t, 1, pool.Version)
}

func TestSaleRepository_FindByIDForUpdate(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "sales" WHERE id = \$1 ORDER BY "sales"."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewGormSaleRepository(db).FindByIDForUpdate(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleReturnRepository_UpdateStatusConflict(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	mock.ExpectExec(`UPDATE "sale_returns" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ret := &trade.SaleReturn{Status: trade.ReturnStatusApproved}
	ret.ID = uuid.New()
	ret.Version = 2
	err := NewGormSaleReturnRepository(db).UpdateStatus(context.Background(), ret)
	assert.True(t, shared.IsKind(err, shared.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceCodeGenerator_LocksSequenceRow(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO "reference_sequences" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "reference_sequences" WHERE prefix = \$1 .*FOR UPDATE`).
		WithArgs("SALE", 1).
		WillReturnRows(sqlmock.NewRows([]string{"prefix", "last_value", "updated_at"}).
			AddRow("SALE", 122, time.Now()))
	mock.ExpectExec(`UPDATE "reference_sequences" SET "last_value"=\$1,"updated_at"=\$2 WHERE prefix = \$3`).
		WithArgs(int64(123), sqlmock.AnyArg(), "SALE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	code, err := NewGormReferenceCodeGenerator(db, 6).Next(context.Background(), "SALE")
	require.NoError(t, err)
	assert.Equal(t, "SALE-000123", code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceCodeGenerator_Exhausted(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO "reference_sequences"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "reference_sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"prefix", "last_value", "updated_at"}).
			AddRow("RET", 999, time.Now()))

	_, err := NewGormReferenceCodeGenerator(db, 3).Next(context.Background(), "RET")
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatReferenceCode(t *testing.T) {
	assert.Equal(t, "SALE-000001", FormatReferenceCode("SALE", 6, 1))
	assert.Equal(t, "RET-000123", FormatReferenceCode("RET", 6, 123))
	assert.Equal(t, "RET-0042", FormatReferenceCode("RET", 4, 42))
}
