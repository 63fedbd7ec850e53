//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/config"
	"github.com/erp/salesengine/internal/infrastructure/migration"
	"github.com/erp/salesengine/migrations"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testPGUser     = "postgres"
	testPGPassword = "sales123"
	testPGDatabase = "sales_test"
)

// newPostgresDatabase starts a PostgreSQL container, applies the embedded
// migrations and connects through the production Database type
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testPGDatabase),
		tcpostgres.WithUsername(testPGUser),
		tcpostgres.WithPassword(testPGPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.NewFromFS(sqlDB, migrations.FS, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         testPGUser,
		Password:     testPGPassword,
		DBName:       testPGDatabase,
		SSLMode:      "disable",
		MaxOpenConns: 20,
		MaxIdleConns: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_MigrationsMatchModels(t *testing.T) {
	db := newPostgresDatabase(t)

	for _, table := range []string{"products", "inventory_pools", "inventory_movements", "product_transactions",
		"customers", "districts", "salespeople", "sales", "sale_returns", "audit_logs", "reference_sequences"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestPostgres_PoolQuantityStaysWithinBounds(t *testing.T) {
	f := seedEngineFixture(t, newPostgresDatabase(t), 5*time.Minute)

	for _, quantity := range []int64{-1, 101} {
		err := f.db.DB.Exec("UPDATE inventory_pools SET current_quantity = ? WHERE id = ?", quantity, f.pool.ID).Error
		require.Error(t, err, "current_quantity = %d", quantity)
		assert.Contains(t, err.Error(), "chk_inventory_pools_quantity")
	}
	require.NoError(t, f.db.DB.Exec("UPDATE inventory_pools SET current_quantity = ? WHERE id = ?", 100, f.pool.ID).Error)
	assert.Equal(t, int64(100), f.currentQuantity(t))
}

func TestPostgres_ConcurrentSalesNeverOversell(t *testing.T) {
	f := seedEngineFixture(t, newPostgresDatabase(t), 5*time.Minute)
	ctx := context.Background()

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.sales.Create(ctx, f.actor, []trade.SaleRequest{f.cashSale(fmt.Sprintf("Customer %d", i), 15)})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	for _, err := range failures {
		assert.True(t, shared.IsKind(err, shared.KindInsufficientStock), err.Error())
	}
	assert.Equal(t, int64(10), f.currentQuantity(t))
	assert.Equal(t, int64(6), f.countRows(t, "sales"))
	assert.Equal(t, int64(6), f.countRows(t, "inventory_movements"))
}

func TestPostgres_RacingDuplicatesRecordOnce(t *testing.T) {
	f := seedEngineFixture(t, newPostgresDatabase(t), 5*time.Minute)
	ctx := context.Background()
	req := f.cashSale("Acme Pharmacy", 5)

	const racers = 5
	var wg sync.WaitGroup
	errs := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.sales.Create(ctx, f.actor, []trade.SaleRequest{req})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case shared.IsKind(err, shared.KindConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, racers-1, conflicts)
	assert.Equal(t, int64(1), f.countRows(t, "sales"))
	assert.Equal(t, int64(95), f.currentQuantity(t))
}

func TestPostgres_ReferenceCodesAreSequential(t *testing.T) {
	f := seedEngineFixture(t, newPostgresDatabase(t), 5*time.Minute)
	ctx := context.Background()

	created, err := f.sales.Create(ctx, f.actor, []trade.SaleRequest{
		f.cashSale("Acme Pharmacy", 1),
		f.cashSale("Birch Clinic", 1),
		f.cashSale("Cedar Drugstore", 1),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	assert.Equal(t, FormatReferenceCode(trade.SaleReferencePrefix, DefaultReferenceDigits, 1), created[0].ReferenceCode)
	assert.Equal(t, FormatReferenceCode(trade.SaleReferencePrefix, DefaultReferenceDigits, 3), created[2].ReferenceCode)
}
