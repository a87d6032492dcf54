package catalog

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category belongs to a group and classifies products and tasks
type Category struct {
	shared.BaseAggregateRoot
	Code        string
	Description string
	GroupID     uuid.UUID
	// GroupCode is denormalized for display and exports
	GroupCode string
}

// NewCategory creates a new category in the given group
func NewCategory(code, description string, group *Group) (*Category, error) {
	if group == nil {
		return nil, shared.NewDomainError("INVALID_GROUP", "Category group is required")
	}
	if err := validateCode("Category", code); err != nil {
		return nil, err
	}
	if err := validateDescription("Category", description, false); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              normalizeCode(code),
		Description:       description,
		GroupID:           group.ID,
		GroupCode:         group.Code,
	}
	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update changes the code and description
func (c *Category) Update(code, description string) error {
	if err := validateCode("Category", code); err != nil {
		return err
	}
	if err := validateDescription("Category", description, false); err != nil {
		return err
	}

	c.Code = normalizeCode(code)
	c.Description = description
	c.touch()
	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// MoveTo assigns the category to another group
func (c *Category) MoveTo(group *Group) error {
	if group == nil {
		return shared.NewDomainError("INVALID_GROUP", "Category group is required")
	}
	if c.GroupID == group.ID {
		return nil
	}
	c.GroupID = group.ID
	c.GroupCode = group.Code
	c.touch()
	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// Display returns the code followed by the description, when present
func (c *Category) Display() string {
	if c.Description == "" {
		return c.Code
	}
	return c.Code + " - " + c.Description
}

func (c *Category) touch() {
	c.MarkModified()
}
