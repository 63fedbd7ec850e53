package models

import (
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// AuditedAggregateModel adds the creating user to AggregateModel
type AuditedAggregateModel struct {
	AggregateModel
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainAuditedAggregateRoot populates AuditedAggregateModel from domain AuditedAggregateRoot
func (m *AuditedAggregateModel) FromDomainAuditedAggregateRoot(a shared.AuditedAggregateRoot) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.CreatedBy = a.CreatedBy
}

// ToAuditedAggregateRoot converts AuditedAggregateModel to domain AuditedAggregateRoot
func (m *AuditedAggregateModel) ToAuditedAggregateRoot() shared.AuditedAggregateRoot {
	return shared.AuditedAggregateRoot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CreatedBy:         m.CreatedBy,
	}
}

// All lists every model of the schema, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&ProductModel{},
		&PoolModel{},
		&MovementModel{},
		&ProductTransactionModel{},
		&CustomerModel{},
		&DistrictModel{},
		&SalespersonModel{},
		&SaleRecordModel{},
		&SaleReturnModel{},
		&AuditEntryModel{},
		&ReferenceSequenceModel{},
	}
}
