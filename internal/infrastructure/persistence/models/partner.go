package models

import (
	"github.com/erp/salesengine/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	AggregateModel
	Name           string `gorm:"type:varchar(100);not null"`
	NormalizedName string `gorm:"type:varchar(100);not null;index"`
	Status         string `gorm:"type:varchar(20);not null;default:'active'"`
	AutoCreated    bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		NormalizedName:    m.NormalizedName,
		Status:            partner.CustomerStatus(m.Status),
		AutoCreated:       m.AutoCreated,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.NormalizedName = c.NormalizedName
	m.Status = string(c.Status)
	m.AutoCreated = c.AutoCreated
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// DistrictModel is the persistence model for a sales district.
type DistrictModel struct {
	BaseModel
	Code   string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(100);not null"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DistrictModel) TableName() string {
	return "districts"
}

// ToDomain converts the persistence model to a domain District.
func (m *DistrictModel) ToDomain() *partner.District {
	return &partner.District{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Active:     m.Active,
	}
}

// DistrictModelFromDomain creates a new persistence model from a domain District.
func DistrictModelFromDomain(d *partner.District) *DistrictModel {
	m := &DistrictModel{Code: d.Code, Name: d.Name, Active: d.Active}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}

// SalespersonModel is the persistence model for a salesperson.
type SalespersonModel struct {
	BaseModel
	Code   string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(100);not null"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalespersonModel) TableName() string {
	return "salespeople"
}

// ToDomain converts the persistence model to a domain Salesperson.
func (m *SalespersonModel) ToDomain() *partner.Salesperson {
	return &partner.Salesperson{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Active:     m.Active,
	}
}

// SalespersonModelFromDomain creates a new persistence model from a domain Salesperson.
func SalespersonModelFromDomain(s *partner.Salesperson) *SalespersonModel {
	m := &SalespersonModel{Code: s.Code, Name: s.Name, Active: s.Active}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
