package catalog

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeGroup    = "Group"
	AggregateTypeCategory = "Category"
	AggregateTypeProduct  = "Product"
	AggregateTypeTask     = "Task"
)

// Event type constants
const (
	EventTypeGroupCreated    = "GroupCreated"
	EventTypeGroupUpdated    = "GroupUpdated"
	EventTypeCategoryCreated = "CategoryCreated"
	EventTypeCategoryUpdated = "CategoryUpdated"
	EventTypeProductCreated  = "ProductCreated"
	EventTypeProductUpdated  = "ProductUpdated"
	EventTypeTaskCreated     = "TaskCreated"
	EventTypeTaskUpdated     = "TaskUpdated"
)

// GroupCreatedEvent is published when a new group is created
type GroupCreatedEvent struct {
	shared.BaseDomainEvent
	GroupID uuid.UUID `json:"group_id"`
	Code    string    `json:"code"`
}

// NewGroupCreatedEvent creates a new GroupCreatedEvent
func NewGroupCreatedEvent(group *Group) *GroupCreatedEvent {
	return &GroupCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGroupCreated, AggregateTypeGroup, group.ID),
		GroupID:         group.ID,
		Code:            group.Code,
	}
}

// GroupUpdatedEvent is published when a group or its margins change
type GroupUpdatedEvent struct {
	shared.BaseDomainEvent
	GroupID      uuid.UUID `json:"group_id"`
	Code         string    `json:"code"`
	MarginsCount int       `json:"margins_count"`
}

// NewGroupUpdatedEvent creates a new GroupUpdatedEvent
func NewGroupUpdatedEvent(group *Group) *GroupUpdatedEvent {
	return &GroupUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGroupUpdated, AggregateTypeGroup, group.ID),
		GroupID:         group.ID,
		Code:            group.Code,
		MarginsCount:    len(group.Margins),
	}
}

// CategoryCreatedEvent is published when a new category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	GroupID    uuid.UUID `json:"group_id"`
	Code       string    `json:"code"`
}

// NewCategoryCreatedEvent creates a new CategoryCreatedEvent
func NewCategoryCreatedEvent(category *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, category.ID),
		CategoryID:      category.ID,
		GroupID:         category.GroupID,
		Code:            category.Code,
	}
}

// CategoryUpdatedEvent is published when a category is updated
type CategoryUpdatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	GroupID    uuid.UUID `json:"group_id"`
	Code       string    `json:"code"`
}

// NewCategoryUpdatedEvent creates a new CategoryUpdatedEvent
func NewCategoryUpdatedEvent(category *Category) *CategoryUpdatedEvent {
	return &CategoryUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryUpdated, AggregateTypeCategory, category.ID),
		CategoryID:      category.ID,
		GroupID:         category.GroupID,
		Code:            category.Code,
	}
}

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Description:     product.Description,
		Price:           product.Price,
	}
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Description:     product.Description,
		Price:           product.Price,
	}
}

// TaskChangedEvent is published when a task is created or updated
type TaskChangedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID `json:"task_id"`
	Name       string    `json:"name"`
	ItemsCount int       `json:"items_count"`
}

// NewTaskChangedEvent creates a new TaskChangedEvent of the given type
func NewTaskChangedEvent(task *Task, eventType string) *TaskChangedEvent {
	return &TaskChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTask, task.ID),
		TaskID:          task.ID,
		Name:            task.Name,
		ItemsCount:      len(task.Items),
	}
}
