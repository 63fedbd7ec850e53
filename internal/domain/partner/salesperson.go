package partner

import (
	"github.com/erp/salesengine/internal/domain/shared"
)

// Salesperson is a member of the sales force credited with sales
type Salesperson struct {
	shared.BaseEntity
	Code   string
	Name   string
	Active bool
}

// NewSalesperson creates a new active salesperson
func NewSalesperson(code, name string) (*Salesperson, error) {
	code = CollapseSpaces(code)
	name = CollapseSpaces(name)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Salesperson code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Salesperson name cannot be empty")
	}
	return &Salesperson{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Active:     true,
	}, nil
}
