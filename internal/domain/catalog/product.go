package catalog

import (
	"strings"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// Average prices are derived from the product's ACTIVE inventory pools.
type Product struct {
	shared.BaseAggregateRoot
	Code               string
	Name               string
	BrandName          string
	SupplierName       string
	AverageCostPrice   decimal.Decimal
	AverageRetailPrice decimal.Decimal
}

// NewProduct creates a new product
func NewProduct(code, name, supplierName string) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}

	return &Product{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Code:               strings.ToUpper(code),
		Name:               name,
		SupplierName:       strings.TrimSpace(supplierName),
		AverageCostPrice:   decimal.Zero,
		AverageRetailPrice: decimal.Zero,
	}, nil
}

// PoolPrice is the cost and retail price of one active pool
type PoolPrice struct {
	CostPrice   decimal.Decimal
	RetailPrice decimal.Decimal
}

// RecalculateAveragePrices sets the running averages to the arithmetic mean of
// the given active pool prices, rounded half-up to 2 places. Returns false and
// leaves the product unchanged when there are no active pools.
func (p *Product) RecalculateAveragePrices(active []PoolPrice) bool {
	if len(active) == 0 {
		return false
	}

	costSum := decimal.Zero
	retailSum := decimal.Zero
	for _, pp := range active {
		costSum = costSum.Add(pp.CostPrice)
		retailSum = retailSum.Add(pp.RetailPrice)
	}
	n := decimal.NewFromInt(int64(len(active)))

	p.AverageCostPrice = costSum.DivRound(n, 2)
	p.AverageRetailPrice = retailSum.DivRound(n, 2)
	p.Touch()
	p.IncrementVersion()
	return true
}
