package margin

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeGlobalMargin is the aggregate type of global margins
const AggregateTypeGlobalMargin = "GlobalMargin"

const (
	EventTypeGlobalMarginChanged = "GlobalMarginChanged"
	EventTypeGlobalMarginDeleted = "GlobalMarginDeleted"
)

// GlobalMarginChangedEvent is published when a global margin is created or updated
type GlobalMarginChangedEvent struct {
	shared.BaseDomainEvent
	GlobalMarginID uuid.UUID       `json:"global_margin_id"`
	Minimum        decimal.Decimal `json:"minimum"`
	Maximum        decimal.Decimal `json:"maximum"`
	Margin         decimal.Decimal `json:"margin"`
}

// NewGlobalMarginChangedEvent creates a new GlobalMarginChangedEvent
func NewGlobalMarginChangedEvent(gm *GlobalMargin) *GlobalMarginChangedEvent {
	return &GlobalMarginChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGlobalMarginChanged, AggregateTypeGlobalMargin, gm.ID),
		GlobalMarginID:  gm.ID,
		Minimum:         gm.Minimum,
		Maximum:         gm.Maximum,
		Margin:          gm.Margin,
	}
}

// GlobalMarginDeletedEvent is published when a global margin is removed
type GlobalMarginDeletedEvent struct {
	shared.BaseDomainEvent
	GlobalMarginID uuid.UUID `json:"global_margin_id"`
}

// NewGlobalMarginDeletedEvent creates a new GlobalMarginDeletedEvent
func NewGlobalMarginDeletedEvent(gm *GlobalMargin) *GlobalMarginDeletedEvent {
	return &GlobalMarginDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGlobalMarginDeleted, AggregateTypeGlobalMargin, gm.ID),
		GlobalMarginID:  gm.ID,
	}
}
