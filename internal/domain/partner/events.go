package partner

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeCustomer is the aggregate type of customers
const AggregateTypeCustomer = "Customer"

const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
)

// CustomerChangedEvent is published when a customer is created or renamed
type CustomerChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

// NewCustomerChangedEvent creates a new CustomerChangedEvent of the given type
func NewCustomerChangedEvent(c *Customer, eventType string) *CustomerChangedEvent {
	return &CustomerChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Name:            c.NameAndCompany(),
	}
}
