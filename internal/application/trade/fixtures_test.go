package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// world is a consistent set of reference data for one test
type world struct {
	product     *catalog.Product
	pool        *inventory.Pool
	district    *partner.District
	salesperson *partner.Salesperson
	customer    *partner.Customer
	actor       ActionContext
}

func newWorld(t *testing.T) *world {
	t.Helper()

	product, err := catalog.NewProduct("AMX-500", "Amoxicillin 500mg", "Acme Pharma")
	require.NoError(t, err)

	pool, err := inventory.NewPool(product.ID, "B-42", 100, dec("6.00"), dec("10.00"), nil)
	require.NoError(t, err)
	pool.ProductName = product.Name
	pool.SupplierName = product.SupplierName

	district, err := partner.NewDistrict("D-01", "North")
	require.NoError(t, err)
	salesperson, err := partner.NewSalesperson("SP-01", "Dana Reyes")
	require.NoError(t, err)
	customer, err := partner.NewCustomer("Green Valley Clinic")
	require.NoError(t, err)

	return &world{
		product:     product,
		pool:        pool,
		district:    district,
		salesperson: salesperson,
		customer:    customer,
		actor: ActionContext{
			ActorID:   uuid.New(),
			IPAddress: "10.0.0.7",
			UserAgent: "test-agent",
			RequestID: "req-1",
		},
	}
}

// cashRequest is 20 units at 10.00 paid in full
func (w *world) cashRequest() trade.SaleRequest {
	return trade.SaleRequest{
		PoolID:        w.pool.ID,
		CustomerName:  "Green Valley Clinic",
		DistrictID:    w.district.ID,
		SalespersonID: w.salesperson.ID,
		Quantity:      20,
		Discount:      decimal.Zero,
		PaymentTerms:  trade.PaymentTermsCash,
		PaymentMethod: trade.PaymentMethodCash,
		AmountPaid:    dec("200"),
	}
}

// creditRequest is 10 units at 10.00 with 40.00 paid on 30-day terms
func (w *world) creditRequest() trade.SaleRequest {
	return trade.SaleRequest{
		PoolID:        w.pool.ID,
		CustomerID:    &w.customer.ID,
		DistrictID:    w.district.ID,
		SalespersonID: w.salesperson.ID,
		Quantity:      10,
		Discount:      dec("5.00"),
		PaymentTerms:  trade.PaymentTermsCredit30,
		PaymentMethod: trade.PaymentMethodCheck,
		AmountPaid:    dec("40.00"),
	}
}

// stubDirectories makes every directory lookup of the validator succeed
func (w *world) stubDirectories(r *testRepos) {
	r.pools.On("FindByIDs", mock.Anything, mock.Anything).Return([]inventory.Pool{*w.pool}, nil).Maybe()
	r.districts.On("FindByIDs", mock.Anything, mock.Anything).Return([]partner.District{*w.district}, nil).Maybe()
	r.salespeople.On("FindByIDs", mock.Anything, mock.Anything).Return([]partner.Salesperson{*w.salesperson}, nil).Maybe()
	r.customers.On("FindByIDs", mock.Anything, mock.Anything).Return([]partner.Customer{*w.customer}, nil).Maybe()
}

func (w *world) newValidator(r *testRepos) *SaleValidator {
	return NewSaleValidator(r.pools, r.districts, r.salespeople, r.customers,
		trade.NewPricingCalculator(trade.DefaultOverpaymentTolerance),
		SaleValidatorConfig{Now: fixedClock})
}

// newSale builds a committed 20-unit cash sale drawn from the world's pool
func (w *world) newSale(t *testing.T) *trade.SaleRecord {
	t.Helper()
	req := w.cashRequest()
	pricing, err := trade.NewPricingCalculator(trade.DefaultOverpaymentTolerance).Calculate(trade.PricingInput{
		RetailPrice: w.pool.RetailPrice,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
		AmountPaid:  req.AmountPaid,
		Terms:       req.PaymentTerms,
		Today:       testNow,
	})
	require.NoError(t, err)

	sale, err := trade.NewSaleRecord("SALE-000001", req, w.pool, w.customer.ID, w.customer.Name,
		pricing, "fingerprint", 0, w.actor.ActorID)
	require.NoError(t, err)
	return sale
}

func requireDomainError(t *testing.T, err error, kind shared.ErrorKind, code string) *shared.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected *shared.DomainError, got %T: %v", err, err)
	require.Equal(t, kind, de.Kind, de.Message)
	require.Equal(t, code, de.Code, de.Message)
	return de
}
