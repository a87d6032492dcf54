package margin

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GlobalMarginRepository defines the interface for global margin persistence
type GlobalMarginRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GlobalMargin, error)

	// FindAll returns every global margin ordered by minimum
	FindAll(ctx context.Context) ([]GlobalMargin, error)

	// FindByAmount returns the global margin whose range contains amount
	FindByAmount(ctx context.Context, amount decimal.Decimal) (*GlobalMargin, error)

	Save(ctx context.Context, gm *GlobalMargin) error

	// ReplaceAll deletes every global margin and stores the given ones in a single transaction
	ReplaceAll(ctx context.Context, margins []GlobalMargin) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int64, error)
}
