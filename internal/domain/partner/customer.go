package partner

import (
	"strings"

	"github.com/erp/salesengine/internal/domain/shared"
	"golang.org/x/text/cases"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer represents a customer in the partner context
type Customer struct {
	shared.BaseAggregateRoot
	Name string
	// NormalizedName is the case-folded, whitespace-collapsed name used for lookups
	NormalizedName string
	Status         CustomerStatus
	// AutoCreated marks customers created implicitly from a free-text sale
	AutoCreated bool
}

// NewCustomer creates a new active customer
func NewCustomer(name string) (*Customer, error) {
	name = CollapseSpaces(name)
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NormalizedName:    NormalizeName(name),
		Status:            CustomerStatusActive,
	}, nil
}

// NewAutoCreatedCustomer creates a customer on the fly for a sale entered by name
func NewAutoCreatedCustomer(name string) (*Customer, error) {
	c, err := NewCustomer(name)
	if err != nil {
		return nil, err
	}
	c.AutoCreated = true
	return c, nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewStateTransitionError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.Touch()
	c.IncrementVersion()
	return nil
}

// NormalizeName returns the lookup key for a display name: trimmed,
// inner whitespace collapsed and Unicode case-folded.
func NormalizeName(name string) string {
	return cases.Fold().String(CollapseSpaces(name))
}

// CollapseSpaces trims the string and replaces whitespace runs with one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot exceed 100 characters")
	}
	return nil
}
