package calculation

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCalculation is the aggregate type of calculations
const AggregateTypeCalculation = "Calculation"

// Event type constants
const (
	EventTypeCalculationCreated       = "CalculationCreated"
	EventTypeCalculationUpdated       = "CalculationUpdated"
	EventTypeCalculationStateChanged  = "CalculationStateChanged"
	EventTypeCalculationTotalsChanged = "CalculationTotalsChanged"
	EventTypeCalculationDeleted       = "CalculationDeleted"
)

// CalculationCreatedEvent is published when a calculation is created
type CalculationCreatedEvent struct {
	shared.BaseDomainEvent
	CalculationID uuid.UUID `json:"calculation_id"`
	Customer      string    `json:"customer"`
	Description   string    `json:"description"`
	CreatedBy     string    `json:"created_by"`
}

// NewCalculationCreatedEvent creates a new CalculationCreatedEvent
func NewCalculationCreatedEvent(c *Calculation) *CalculationCreatedEvent {
	return &CalculationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCalculationCreated, AggregateTypeCalculation, c.ID),
		CalculationID:   c.ID,
		Customer:        c.Customer,
		Description:     c.Description,
		CreatedBy:       c.CreatedBy,
	}
}

// CalculationUpdatedEvent is published when the header or the items of a calculation change
type CalculationUpdatedEvent struct {
	shared.BaseDomainEvent
	CalculationID uuid.UUID `json:"calculation_id"`
	UpdatedBy     string    `json:"updated_by"`
}

// NewCalculationUpdatedEvent creates a new CalculationUpdatedEvent
func NewCalculationUpdatedEvent(c *Calculation) *CalculationUpdatedEvent {
	return &CalculationUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCalculationUpdated, AggregateTypeCalculation, c.ID),
		CalculationID:   c.ID,
		UpdatedBy:       c.UpdatedBy,
	}
}

// CalculationStateChangedEvent is published when a calculation moves to another state
type CalculationStateChangedEvent struct {
	shared.BaseDomainEvent
	CalculationID uuid.UUID `json:"calculation_id"`
	OldState      string    `json:"old_state"`
	NewState      string    `json:"new_state"`
}

// NewCalculationStateChangedEvent creates a new CalculationStateChangedEvent
func NewCalculationStateChangedEvent(c *Calculation, oldState string) *CalculationStateChangedEvent {
	return &CalculationStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCalculationStateChanged, AggregateTypeCalculation, c.ID),
		CalculationID:   c.ID,
		OldState:        oldState,
		NewState:        c.StateCode,
	}
}

// CalculationTotalsChangedEvent is published when the totals of a calculation change
type CalculationTotalsChangedEvent struct {
	shared.BaseDomainEvent
	CalculationID uuid.UUID       `json:"calculation_id"`
	Customer      string          `json:"customer"`
	Description   string          `json:"description"`
	ItemsTotal    decimal.Decimal `json:"items_total"`
	OverallTotal  decimal.Decimal `json:"overall_total"`
	OverallMargin decimal.Decimal `json:"overall_margin"`
	MinMargin     decimal.Decimal `json:"min_margin"`
	BelowMargin   bool            `json:"below_margin"`
	UpdatedBy     string          `json:"updated_by"`
}

// NewCalculationTotalsChangedEvent creates a new CalculationTotalsChangedEvent
func NewCalculationTotalsChangedEvent(c *Calculation, totals *Totals) *CalculationTotalsChangedEvent {
	return &CalculationTotalsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCalculationTotalsChanged, AggregateTypeCalculation, c.ID),
		CalculationID:   c.ID,
		Customer:        c.Customer,
		Description:     c.Description,
		ItemsTotal:      totals.ItemsTotal,
		OverallTotal:    totals.OverallTotal,
		OverallMargin:   totals.OverallMargin,
		MinMargin:       totals.MinMargin,
		BelowMargin:     totals.BelowMargin,
		UpdatedBy:       c.UpdatedBy,
	}
}

// CalculationDeletedEvent is published when a calculation is deleted
type CalculationDeletedEvent struct {
	shared.BaseDomainEvent
	CalculationID uuid.UUID `json:"calculation_id"`
}

// NewCalculationDeletedEvent creates a new CalculationDeletedEvent
func NewCalculationDeletedEvent(c *Calculation) *CalculationDeletedEvent {
	return &CalculationDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCalculationDeleted, AggregateTypeCalculation, c.ID),
		CalculationID:   c.ID,
	}
}
