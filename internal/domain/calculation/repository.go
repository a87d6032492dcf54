package calculation

import (
	"context"
	"time"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationRepository defines the interface for calculation persistence
type CalculationRepository interface {
	// FindByID finds a calculation with its groups, categories and items
	FindByID(ctx context.Context, id uuid.UUID) (*Calculation, error)

	// FindAll finds calculations matching the filter, without their items
	FindAll(ctx context.Context, filter shared.Filter) ([]Calculation, error)

	// FindAllWithItems finds calculations matching the filter with their items
	FindAllWithItems(ctx context.Context, filter shared.Filter) ([]Calculation, error)

	// FindBelowMargin finds calculations whose overall margin is under minMargin
	FindBelowMargin(ctx context.Context, minMargin decimal.Decimal, filter shared.Filter) ([]Calculation, error)

	// CountBelowMargin counts calculations whose overall margin is under minMargin, ignoring pagination
	CountBelowMargin(ctx context.Context, minMargin decimal.Decimal, filter shared.Filter) (int64, error)

	// FindForArchive finds calculations dated before the given date in one of the given states
	FindForArchive(ctx context.Context, before time.Time, stateIDs []uuid.UUID) ([]Calculation, error)

	// Save creates or updates a calculation and replaces its items
	Save(ctx context.Context, calc *Calculation) error

	// UpdateState moves the given calculations to another state
	UpdateState(ctx context.Context, ids []uuid.UUID, state *CalculationState, username string) (int64, error)

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// StatsByMonth aggregates calculations by month, starting at since
	StatsByMonth(ctx context.Context, since time.Time) ([]MonthStat, error)

	// StatsByState aggregates calculations by state
	StatsByState(ctx context.Context) ([]StateStat, error)
}

// CalculationStateRepository defines the interface for calculation state persistence
type CalculationStateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CalculationState, error)

	FindByCode(ctx context.Context, code string) (*CalculationState, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]CalculationState, error)

	// FindEditable finds the states that allow modifications
	FindEditable(ctx context.Context) ([]CalculationState, error)

	Save(ctx context.Context, state *CalculationState) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)

	// CountCalculations counts the calculations in a state
	CountCalculations(ctx context.Context, stateID uuid.UUID) (int64, error)
}

// MonthStat aggregates the calculations of one month
type MonthStat struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Count        int64           `json:"count"`
	ItemsTotal   decimal.Decimal `json:"items_total"`
	OverallTotal decimal.Decimal `json:"overall_total"`
}

// Margin returns the overall margin of the month
func (m MonthStat) Margin() decimal.Decimal {
	return safeDiv(m.OverallTotal, m.ItemsTotal)
}

// StateStat aggregates the calculations of one state
type StateStat struct {
	StateID      uuid.UUID       `json:"state_id"`
	Code         string          `json:"code"`
	Color        string          `json:"color"`
	Editable     bool            `json:"editable"`
	Count        int64           `json:"count"`
	ItemsTotal   decimal.Decimal `json:"items_total"`
	OverallTotal decimal.Decimal `json:"overall_total"`
}

// Margin returns the overall margin of the state
func (s StateStat) Margin() decimal.Decimal {
	return safeDiv(s.OverallTotal, s.ItemsTotal)
}
