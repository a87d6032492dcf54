package partner

import (
	"context"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindAll finds customers matching the filter. Search matches names, company, city and email.
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	Save(ctx context.Context, customer *Customer) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
