package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for the customer directory
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDs finds multiple customers in one round trip
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Customer, error)

	// FindActiveByNormalizedName finds the active customer with the given lookup key
	FindActiveByNormalizedName(ctx context.Context, normalizedName string) (*Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error
}

// SalespersonRepository defines the interface for the salesperson directory
type SalespersonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Salesperson, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Salesperson, error)
	Save(ctx context.Context, salesperson *Salesperson) error
}

// DistrictRepository defines the interface for the district directory
type DistrictRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*District, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]District, error)
	Save(ctx context.Context, district *District) error
}
