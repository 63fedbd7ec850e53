package models

import (
	"time"

	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecordModel is the persistence model for the SaleRecord aggregate.
// IdempotencyKey is unique; it is the storage-level duplicate guard.
type SaleRecordModel struct {
	AuditedAggregateModel
	ReferenceCode string `gorm:"type:varchar(50);not null;uniqueIndex"`

	PoolID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchID      uuid.UUID `gorm:"type:uuid;not null"`
	ProductName  string    `gorm:"type:varchar(200);not null"`
	BatchNumber  string    `gorm:"type:varchar(50);not null"`
	SupplierName string    `gorm:"type:varchar(200)"`

	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerName  string    `gorm:"type:varchar(100);not null"`
	DistrictID    uuid.UUID `gorm:"type:uuid;not null"`
	SalespersonID uuid.UUID `gorm:"type:uuid;not null"`

	Quantity            int64           `gorm:"not null"`
	UnitCostPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitRetailPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalBeforeDiscount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	FinalPrice          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPaid          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Balance             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentTerms        string          `gorm:"type:varchar(20);not null"`
	PaymentMethod       string          `gorm:"type:varchar(20);not null"`
	DueDate             *time.Time      `gorm:"type:date"`

	InvoiceNumber  string `gorm:"type:varchar(50)"`
	DocumentType   string `gorm:"type:varchar(50)"`
	Notes          string `gorm:"type:varchar(500)"`
	Classification string `gorm:"type:varchar(50)"`
	AreaCode       string `gorm:"type:varchar(20)"`

	Status         string `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Fingerprint    string `gorm:"type:varchar(64);not null;index"`
	IdempotencyKey string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (SaleRecordModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain SaleRecord.
func (m *SaleRecordModel) ToDomain() *trade.SaleRecord {
	return &trade.SaleRecord{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		ReferenceCode:        m.ReferenceCode,
		PoolID:               m.PoolID,
		ProductID:            m.ProductID,
		BatchID:              m.BatchID,
		ProductName:          m.ProductName,
		BatchNumber:          m.BatchNumber,
		SupplierName:         m.SupplierName,
		CustomerID:           m.CustomerID,
		CustomerName:         m.CustomerName,
		DistrictID:           m.DistrictID,
		SalespersonID:        m.SalespersonID,
		Quantity:             m.Quantity,
		UnitCostPrice:        m.UnitCostPrice,
		UnitRetailPrice:      m.UnitRetailPrice,
		TotalBeforeDiscount:  m.TotalBeforeDiscount,
		Discount:             m.Discount,
		FinalPrice:           m.FinalPrice,
		AmountPaid:           m.AmountPaid,
		Balance:              m.Balance,
		PaymentTerms:         trade.PaymentTerms(m.PaymentTerms),
		PaymentMethod:        trade.PaymentMethod(m.PaymentMethod),
		DueDate:              m.DueDate,
		InvoiceNumber:        m.InvoiceNumber,
		DocumentType:         m.DocumentType,
		Notes:                m.Notes,
		Classification:       m.Classification,
		AreaCode:             m.AreaCode,
		Status:               trade.SaleStatus(m.Status),
		Fingerprint:          m.Fingerprint,
		IdempotencyKey:       m.IdempotencyKey,
	}
}

// FromDomain populates the persistence model from a domain SaleRecord.
func (m *SaleRecordModel) FromDomain(s *trade.SaleRecord) {
	m.FromDomainAuditedAggregateRoot(s.AuditedAggregateRoot)
	m.ReferenceCode = s.ReferenceCode
	m.PoolID = s.PoolID
	m.ProductID = s.ProductID
	m.BatchID = s.BatchID
	m.ProductName = s.ProductName
	m.BatchNumber = s.BatchNumber
	m.SupplierName = s.SupplierName
	m.CustomerID = s.CustomerID
	m.CustomerName = s.CustomerName
	m.DistrictID = s.DistrictID
	m.SalespersonID = s.SalespersonID
	m.Quantity = s.Quantity
	m.UnitCostPrice = s.UnitCostPrice
	m.UnitRetailPrice = s.UnitRetailPrice
	m.TotalBeforeDiscount = s.TotalBeforeDiscount
	m.Discount = s.Discount
	m.FinalPrice = s.FinalPrice
	m.AmountPaid = s.AmountPaid
	m.Balance = s.Balance
	m.PaymentTerms = string(s.PaymentTerms)
	m.PaymentMethod = string(s.PaymentMethod)
	m.DueDate = s.DueDate
	m.InvoiceNumber = s.InvoiceNumber
	m.DocumentType = s.DocumentType
	m.Notes = s.Notes
	m.Classification = s.Classification
	m.AreaCode = s.AreaCode
	m.Status = string(s.Status)
	m.Fingerprint = s.Fingerprint
	m.IdempotencyKey = s.IdempotencyKey
}

// SaleRecordModelFromDomain creates a new persistence model from a domain SaleRecord.
func SaleRecordModelFromDomain(s *trade.SaleRecord) *SaleRecordModel {
	m := &SaleRecordModel{}
	m.FromDomain(s)
	return m
}

// SaleReturnModel is the persistence model for the SaleReturn aggregate.
type SaleReturnModel struct {
	AuditedAggregateModel
	ReferenceCode     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleReferenceCode string          `gorm:"type:varchar(50);not null"`
	PoolID            uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	ReturnQuantity    int64           `gorm:"not null"`
	ReturnPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefundAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason            string          `gorm:"type:varchar(255);not null"`
	Notes             string          `gorm:"type:varchar(500)"`
	Restockable       bool            `gorm:"not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	StatusNotes       string          `gorm:"type:varchar(500)"`
	StatusChangedBy   *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt        *time.Time
	ProcessedAt       *time.Time
	RejectedAt        *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (SaleReturnModel) TableName() string {
	return "sale_returns"
}

// ToDomain converts the persistence model to a domain SaleReturn.
func (m *SaleReturnModel) ToDomain() *trade.SaleReturn {
	return &trade.SaleReturn{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		ReferenceCode:        m.ReferenceCode,
		SaleID:               m.SaleID,
		SaleReferenceCode:    m.SaleReferenceCode,
		PoolID:               m.PoolID,
		ProductID:            m.ProductID,
		ReturnQuantity:       m.ReturnQuantity,
		ReturnPrice:          m.ReturnPrice,
		RefundAmount:         m.RefundAmount,
		Reason:               m.Reason,
		Notes:                m.Notes,
		Restockable:          m.Restockable,
		Status:               trade.ReturnStatus(m.Status),
		StatusNotes:          m.StatusNotes,
		StatusChangedBy:      m.StatusChangedBy,
		ApprovedAt:           m.ApprovedAt,
		ProcessedAt:          m.ProcessedAt,
		RejectedAt:           m.RejectedAt,
		CancelledAt:          m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain SaleReturn.
func (m *SaleReturnModel) FromDomain(r *trade.SaleReturn) {
	m.FromDomainAuditedAggregateRoot(r.AuditedAggregateRoot)
	m.ReferenceCode = r.ReferenceCode
	m.SaleID = r.SaleID
	m.SaleReferenceCode = r.SaleReferenceCode
	m.PoolID = r.PoolID
	m.ProductID = r.ProductID
	m.ReturnQuantity = r.ReturnQuantity
	m.ReturnPrice = r.ReturnPrice
	m.RefundAmount = r.RefundAmount
	m.Reason = r.Reason
	m.Notes = r.Notes
	m.Restockable = r.Restockable
	m.Status = string(r.Status)
	m.StatusNotes = r.StatusNotes
	m.StatusChangedBy = r.StatusChangedBy
	m.ApprovedAt = r.ApprovedAt
	m.ProcessedAt = r.ProcessedAt
	m.RejectedAt = r.RejectedAt
	m.CancelledAt = r.CancelledAt
}

// SaleReturnModelFromDomain creates a new persistence model from a domain SaleReturn.
func SaleReturnModelFromDomain(r *trade.SaleReturn) *SaleReturnModel {
	m := &SaleReturnModel{}
	m.FromDomain(r)
	return m
}
