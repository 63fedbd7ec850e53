package models

import (
	"time"

	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PoolModel is the persistence model for the inventory Pool aggregate.
type PoolModel struct {
	AggregateModel
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchNumber     string          `gorm:"type:varchar(50);not null;index"`
	InitialQuantity int64           `gorm:"not null"`
	CurrentQuantity int64           `gorm:"not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RetailPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ExpiryDate      *time.Time      `gorm:"type:date;index"`
}

// TableName returns the table name for GORM
func (PoolModel) TableName() string {
	return "inventory_pools"
}

// ToDomain converts the persistence model to a domain Pool.
// ProductName and SupplierName are filled in by the repository.
func (m *PoolModel) ToDomain() *inventory.Pool {
	return &inventory.Pool{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ProductID:         m.ProductID,
		BatchID:           m.BatchID,
		BatchNumber:       m.BatchNumber,
		InitialQuantity:   m.InitialQuantity,
		CurrentQuantity:   m.CurrentQuantity,
		CostPrice:         m.CostPrice,
		RetailPrice:       m.RetailPrice,
		Status:            inventory.PoolStatus(m.Status),
		ExpiryDate:        m.ExpiryDate,
	}
}

// FromDomain populates the persistence model from a domain Pool
func (m *PoolModel) FromDomain(p *inventory.Pool) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ProductID = p.ProductID
	m.BatchID = p.BatchID
	m.BatchNumber = p.BatchNumber
	m.InitialQuantity = p.InitialQuantity
	m.CurrentQuantity = p.CurrentQuantity
	m.CostPrice = p.CostPrice
	m.RetailPrice = p.RetailPrice
	m.Status = string(p.Status)
	m.ExpiryDate = p.ExpiryDate
}

// PoolModelFromDomain creates a new persistence model from a domain Pool
func PoolModelFromDomain(p *inventory.Pool) *PoolModel {
	m := &PoolModel{}
	m.FromDomain(p)
	return m
}

// MovementModel is the persistence model for the append-only movement ledger.
type MovementModel struct {
	BaseModel
	PoolID           uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;index"`
	MovementType     string    `gorm:"type:varchar(20);not null"`
	Quantity         int64     `gorm:"not null"`
	PreviousQuantity int64     `gorm:"not null"`
	NewQuantity      int64     `gorm:"not null"`
	ReferenceCode    string    `gorm:"type:varchar(50);not null;index"`
	SourceID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason           string    `gorm:"type:varchar(255)"`
	ActorID          uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain Movement
func (m *MovementModel) ToDomain() *inventory.Movement {
	return &inventory.Movement{
		BaseEntity:       m.BaseModel.ToDomain(),
		PoolID:           m.PoolID,
		ProductID:        m.ProductID,
		MovementType:     inventory.MovementType(m.MovementType),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceCode:    m.ReferenceCode,
		SourceID:         m.SourceID,
		Reason:           m.Reason,
		ActorID:          m.ActorID,
	}
}

// MovementModelFromDomain creates a new persistence model from a domain Movement
func MovementModelFromDomain(mv *inventory.Movement) *MovementModel {
	m := &MovementModel{
		PoolID:           mv.PoolID,
		ProductID:        mv.ProductID,
		MovementType:     string(mv.MovementType),
		Quantity:         mv.Quantity,
		PreviousQuantity: mv.PreviousQuantity,
		NewQuantity:      mv.NewQuantity,
		ReferenceCode:    mv.ReferenceCode,
		SourceID:         mv.SourceID,
		Reason:           mv.Reason,
		ActorID:          mv.ActorID,
	}
	m.FromDomainBaseEntity(mv.BaseEntity)
	return m
}

// ProductTransactionModel is the persistence model for product-level history.
type ProductTransactionModel struct {
	BaseModel
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PoolID          uuid.UUID       `gorm:"type:uuid;not null"`
	TransactionType string          `gorm:"type:varchar(20);not null"`
	Quantity        int64           `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReferenceCode   string          `gorm:"type:varchar(50);not null;index"`
	SourceID        uuid.UUID       `gorm:"type:uuid;not null"`
	Notes           string          `gorm:"type:varchar(500)"`
	ActorID         uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ProductTransactionModel) TableName() string {
	return "product_transactions"
}

// ToDomain converts the persistence model to a domain ProductTransaction
func (m *ProductTransactionModel) ToDomain() *inventory.ProductTransaction {
	return &inventory.ProductTransaction{
		BaseEntity:      shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ProductID:       m.ProductID,
		PoolID:          m.PoolID,
		TransactionType: inventory.ProductTransactionType(m.TransactionType),
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalAmount:     m.TotalAmount,
		ReferenceCode:   m.ReferenceCode,
		SourceID:        m.SourceID,
		Notes:           m.Notes,
		ActorID:         m.ActorID,
	}
}

// ProductTransactionModelFromDomain creates a new persistence model from a domain ProductTransaction
func ProductTransactionModelFromDomain(t *inventory.ProductTransaction) *ProductTransactionModel {
	m := &ProductTransactionModel{
		ProductID:       t.ProductID,
		PoolID:          t.PoolID,
		TransactionType: string(t.TransactionType),
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice,
		TotalAmount:     t.TotalAmount,
		ReferenceCode:   t.ReferenceCode,
		SourceID:        t.SourceID,
		Notes:           t.Notes,
		ActorID:         t.ActorID,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
