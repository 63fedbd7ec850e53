package partner

import (
	"github.com/erp/salesengine/internal/domain/shared"
)

// District is a sales territory
type District struct {
	shared.BaseEntity
	Code   string
	Name   string
	Active bool
}

// NewDistrict creates a new active district
func NewDistrict(code, name string) (*District, error) {
	code = CollapseSpaces(code)
	name = CollapseSpaces(name)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "District code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "District name cannot be empty")
	}
	return &District{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Active:     true,
	}, nil
}
