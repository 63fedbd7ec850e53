package models

import (
	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	Code               string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name               string          `gorm:"type:varchar(200);not null"`
	BrandName          string          `gorm:"type:varchar(200)"`
	SupplierName       string          `gorm:"type:varchar(200)"`
	AverageCostPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AverageRetailPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		Code:               m.Code,
		Name:               m.Name,
		BrandName:          m.BrandName,
		SupplierName:       m.SupplierName,
		AverageCostPrice:   m.AverageCostPrice,
		AverageRetailPrice: m.AverageRetailPrice,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.BrandName = p.BrandName
	m.SupplierName = p.SupplierName
	m.AverageCostPrice = p.AverageCostPrice
	m.AverageRetailPrice = p.AverageRetailPrice
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
