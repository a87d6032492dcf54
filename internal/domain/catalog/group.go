package catalog

import (
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Group is the top level of the catalog. Each group carries the margins
// applied to the amount of its items within a calculation.
type Group struct {
	shared.BaseAggregateRoot
	Code        string
	Description string
	Margins     []GroupMargin
}

// GroupMargin is a margin multiplier applied when the group amount is within range
type GroupMargin struct {
	ID uuid.UUID
	margin.Range
	Margin decimal.Decimal
}

// NewGroupMargin creates a validated group margin
func NewGroupMargin(minimum, maximum, value decimal.Decimal) (GroupMargin, error) {
	r, err := margin.NewRange(minimum, maximum)
	if err != nil {
		return GroupMargin{}, err
	}
	if err := margin.ValidateMargin(value); err != nil {
		return GroupMargin{}, err
	}
	return GroupMargin{ID: uuid.New(), Range: r, Margin: value}, nil
}

// NewGroup creates a new group without margins
func NewGroup(code, description string) (*Group, error) {
	if err := validateCode("Group", code); err != nil {
		return nil, err
	}
	if err := validateDescription("Group", description, false); err != nil {
		return nil, err
	}

	group := &Group{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              normalizeCode(code),
		Description:       description,
		Margins:           make([]GroupMargin, 0),
	}
	group.AddDomainEvent(NewGroupCreatedEvent(group))

	return group, nil
}

// Update changes the code and description of the group
func (g *Group) Update(code, description string) error {
	if err := validateCode("Group", code); err != nil {
		return err
	}
	if err := validateDescription("Group", description, false); err != nil {
		return err
	}

	g.Code = normalizeCode(code)
	g.Description = description
	g.touch()
	g.AddDomainEvent(NewGroupUpdatedEvent(g))

	return nil
}

// SetMargins replaces the margins of the group. The ranges must not overlap.
func (g *Group) SetMargins(margins []GroupMargin) error {
	if err := margin.ValidateRanges(margins); err != nil {
		return err
	}
	sorted := append([]GroupMargin(nil), margins...)
	margin.SortRanges(sorted)

	g.Margins = sorted
	g.touch()
	g.AddDomainEvent(NewGroupUpdatedEvent(g))

	return nil
}

// FindMargin returns the margin multiplier for the given amount, or zero when no range matches
func (g *Group) FindMargin(amount decimal.Decimal) decimal.Decimal {
	if m, ok := margin.Find(g.Margins, amount); ok {
		return m.Margin
	}
	return decimal.Zero
}

// HasMargins reports whether at least one margin is defined
func (g *Group) HasMargins() bool {
	return len(g.Margins) > 0
}

// Display returns the code followed by the description, when present
func (g *Group) Display() string {
	if g.Description == "" {
		return g.Code
	}
	return g.Code + " - " + g.Description
}

func (g *Group) touch() {
	g.MarkModified()
}
