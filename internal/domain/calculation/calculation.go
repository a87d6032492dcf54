package calculation

import (
	"sort"
	"strings"
	"time"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Calculation is a customer quote. Items are organised by catalog group and
// category, mirroring the catalog hierarchy they were picked from.
type Calculation struct {
	shared.AuditedAggregateRoot
	Date        time.Time
	Customer    string
	Description string

	StateID       uuid.UUID
	StateCode     string
	StateEditable bool
	StateColor    string

	// UserMargin is a fraction added to the net total: 0.05 adds 5%.
	UserMargin decimal.Decimal
	// GlobalMargin is the multiplier found in the global margins for the groups total.
	GlobalMargin decimal.Decimal
	ItemsTotal   decimal.Decimal
	OverallTotal decimal.Decimal

	Groups []CalculationGroup
}

// CalculationGroup holds the categories of one catalog group
type CalculationGroup struct {
	ID         uuid.UUID
	GroupID    uuid.UUID
	Code       string
	Amount     decimal.Decimal
	Margin     decimal.Decimal
	Position   int
	Categories []CalculationCategory
}

// Total returns the amount with the group margin applied
func (g *CalculationGroup) Total() decimal.Decimal {
	return g.Amount.Mul(g.Margin)
}

// CalculationCategory holds the items of one catalog category
type CalculationCategory struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Code       string
	Amount     decimal.Decimal
	Position   int
	Items      []CalculationItem
}

// CalculationItem is a priced line of a calculation
type CalculationItem struct {
	ID          uuid.UUID
	Description string
	Unit        string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	Position    int
}

// Total returns price multiplied by quantity
func (i CalculationItem) Total() decimal.Decimal {
	return i.Price.Mul(i.Quantity)
}

// IsEmpty reports whether the item contributes nothing to the total
func (i CalculationItem) IsEmpty() bool {
	return i.Price.IsZero() || i.Quantity.IsZero()
}

// NewCalculationItem creates a validated item
func NewCalculationItem(description, unit string, price, quantity decimal.Decimal) (CalculationItem, error) {
	if strings.TrimSpace(description) == "" {
		return CalculationItem{}, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity.IsNegative() {
		return CalculationItem{}, shared.NewDomainError("INVALID_QUANTITY", "Item quantity cannot be negative")
	}
	return CalculationItem{
		ID:          uuid.New(),
		Description: description,
		Unit:        unit,
		Price:       price,
		Quantity:    quantity,
	}, nil
}

// ItemRef locates an item inside a calculation, used by the empty and duplicate item reports
type ItemRef struct {
	CalculationID uuid.UUID
	GroupCode     string
	CategoryCode  string
	Item          CalculationItem
}

// NewCalculation creates a new calculation in the given state
func NewCalculation(date time.Time, customer, description string, state *CalculationState, username string) (*Calculation, error) {
	if state == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Calculation state is required")
	}
	if err := validateHeader(customer, description); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	calc := &Calculation{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(username),
		Date:                 truncateDay(date),
		Customer:             strings.TrimSpace(customer),
		Description:          strings.TrimSpace(description),
		UserMargin:           decimal.Zero,
		GlobalMargin:         decimal.Zero,
		ItemsTotal:           decimal.Zero,
		OverallTotal:         decimal.Zero,
		Groups:               make([]CalculationGroup, 0),
	}
	calc.assignState(state)
	calc.AddDomainEvent(NewCalculationCreatedEvent(calc))

	return calc, nil
}

// Update changes the header of the calculation
func (c *Calculation) Update(date time.Time, customer, description string, userMargin decimal.Decimal, username string) error {
	if err := c.ensureEditable(); err != nil {
		return err
	}
	if err := validateHeader(customer, description); err != nil {
		return err
	}
	if err := validateUserMargin(userMargin); err != nil {
		return err
	}
	if !date.IsZero() {
		c.Date = truncateDay(date)
	}
	c.Customer = strings.TrimSpace(customer)
	c.Description = strings.TrimSpace(description)
	c.UserMargin = userMargin
	c.touch(username)
	c.AddDomainEvent(NewCalculationUpdatedEvent(c))

	return nil
}

// SetUserMargin changes the user margin
func (c *Calculation) SetUserMargin(userMargin decimal.Decimal) error {
	if err := validateUserMargin(userMargin); err != nil {
		return err
	}
	c.UserMargin = userMargin
	return nil
}

// SetState moves the calculation to another state
func (c *Calculation) SetState(state *CalculationState, username string) error {
	if state == nil {
		return shared.NewDomainError("INVALID_STATE", "Calculation state is required")
	}
	if state.ID == c.StateID {
		return nil
	}
	oldCode := c.StateCode
	c.assignState(state)
	c.touch(username)
	c.AddDomainEvent(NewCalculationStateChangedEvent(c, oldCode))

	return nil
}

// IsEditable reports whether the current state allows modifications
func (c *Calculation) IsEditable() bool {
	return c.StateEditable
}

// AddItem adds an item under the category, creating the group and category nodes when needed
func (c *Calculation) AddItem(category *catalog.Category, item CalculationItem) error {
	if category == nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Item category is required")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity cannot be negative")
	}

	group := c.findOrAddGroup(category.GroupID, category.GroupCode)
	cat := group.findOrAddCategory(category.ID, category.Code)
	item.Position = len(cat.Items)
	cat.Items = append(cat.Items, item)

	return nil
}

// ClearItems removes every group, category and item
func (c *Calculation) ClearItems() error {
	if err := c.ensureEditable(); err != nil {
		return err
	}
	c.Groups = make([]CalculationGroup, 0)
	return nil
}

// RemoveItem removes an item and prunes empty categories and groups.
// It returns false when the item does not exist.
func (c *Calculation) RemoveItem(itemID uuid.UUID) bool {
	removed := false
	c.filterItems(func(_ *CalculationGroup, _ *CalculationCategory, item CalculationItem) bool {
		if item.ID == itemID {
			removed = true
			return false
		}
		return true
	})
	return removed
}

// Items returns every item with its location
func (c *Calculation) Items() []ItemRef {
	refs := make([]ItemRef, 0)
	for _, g := range c.Groups {
		for _, cat := range g.Categories {
			for _, item := range cat.Items {
				refs = append(refs, ItemRef{CalculationID: c.ID, GroupCode: g.Code, CategoryCode: cat.Code, Item: item})
			}
		}
	}
	return refs
}

// LinesCount returns the number of items
func (c *Calculation) LinesCount() int {
	count := 0
	for _, g := range c.Groups {
		for _, cat := range g.Categories {
			count += len(cat.Items)
		}
	}
	return count
}

// IsEmpty reports whether the calculation has no item
func (c *Calculation) IsEmpty() bool {
	return c.LinesCount() == 0
}

// EmptyItems returns the items whose price or quantity is zero
func (c *Calculation) EmptyItems() []ItemRef {
	refs := make([]ItemRef, 0)
	for _, ref := range c.Items() {
		if ref.Item.IsEmpty() {
			refs = append(refs, ref)
		}
	}
	return refs
}

// DuplicateItems returns the items sharing a description (case-insensitive) with another item
func (c *Calculation) DuplicateItems() []ItemRef {
	counts := make(map[string]int)
	all := c.Items()
	for _, ref := range all {
		counts[itemKey(ref.Item)]++
	}
	refs := make([]ItemRef, 0)
	for _, ref := range all {
		if counts[itemKey(ref.Item)] > 1 {
			refs = append(refs, ref)
		}
	}
	return refs
}

// HasEmptyItems reports whether at least one item is empty
func (c *Calculation) HasEmptyItems() bool {
	return len(c.EmptyItems()) > 0
}

// HasDuplicateItems reports whether at least one description is duplicated
func (c *Calculation) HasDuplicateItems() bool {
	return len(c.DuplicateItems()) > 0
}

// RemoveEmptyItems removes the empty items and returns how many were removed
func (c *Calculation) RemoveEmptyItems() int {
	count := 0
	c.filterItems(func(_ *CalculationGroup, _ *CalculationCategory, item CalculationItem) bool {
		if item.IsEmpty() {
			count++
			return false
		}
		return true
	})
	return count
}

// RemoveDuplicateItems merges items sharing a description into the first one,
// adding up their quantities. It returns how many items were removed.
func (c *Calculation) RemoveDuplicateItems() int {
	first := make(map[string]*CalculationItem)
	count := 0
	for gi := range c.Groups {
		for ci := range c.Groups[gi].Categories {
			items := c.Groups[gi].Categories[ci].Items
			for ii := range items {
				key := itemKey(items[ii])
				if kept, ok := first[key]; ok {
					kept.Quantity = kept.Quantity.Add(items[ii].Quantity)
					continue
				}
				first[key] = &items[ii]
			}
		}
	}
	c.filterItems(func(_ *CalculationGroup, _ *CalculationCategory, item CalculationItem) bool {
		if kept := first[itemKey(item)]; kept != nil && kept.ID != item.ID {
			count++
			return false
		}
		return true
	})
	return count
}

// Sort orders groups and categories by code and items by description, then renumbers positions
func (c *Calculation) Sort() {
	sort.SliceStable(c.Groups, func(i, j int) bool { return c.Groups[i].Code < c.Groups[j].Code })
	for gi := range c.Groups {
		g := &c.Groups[gi]
		g.Position = gi
		sort.SliceStable(g.Categories, func(i, j int) bool { return g.Categories[i].Code < g.Categories[j].Code })
		for ci := range g.Categories {
			cat := &g.Categories[ci]
			cat.Position = ci
			sort.SliceStable(cat.Items, func(i, j int) bool {
				return strings.ToLower(cat.Items[i].Description) < strings.ToLower(cat.Items[j].Description)
			})
			for ii := range cat.Items {
				cat.Items[ii].Position = ii
			}
		}
	}
}

// Clone copies the calculation into a new aggregate in the given state
func (c *Calculation) Clone(description string, state *CalculationState, username string) (*Calculation, error) {
	if description == "" {
		description = c.Description
	}
	clone, err := NewCalculation(time.Now(), c.Customer, description, state, username)
	if err != nil {
		return nil, err
	}
	clone.UserMargin = c.UserMargin
	clone.GlobalMargin = c.GlobalMargin
	clone.ItemsTotal = c.ItemsTotal
	clone.OverallTotal = c.OverallTotal
	clone.Groups = make([]CalculationGroup, 0, len(c.Groups))
	for _, g := range c.Groups {
		ng := g
		ng.ID = uuid.New()
		ng.Categories = make([]CalculationCategory, 0, len(g.Categories))
		for _, cat := range g.Categories {
			nc := cat
			nc.ID = uuid.New()
			nc.Items = make([]CalculationItem, 0, len(cat.Items))
			for _, item := range cat.Items {
				ni := item
				ni.ID = uuid.New()
				nc.Items = append(nc.Items, ni)
			}
			ng.Categories = append(ng.Categories, nc)
		}
		clone.Groups = append(clone.Groups, ng)
	}
	return clone, nil
}

// ApplyTotals stores computed totals on the calculation and its groups
func (c *Calculation) ApplyTotals(totals *Totals) {
	byGroup := make(map[uuid.UUID]GroupTotal, len(totals.Groups))
	for _, gt := range totals.Groups {
		byGroup[gt.GroupID] = gt
	}
	for gi := range c.Groups {
		g := &c.Groups[gi]
		for ci := range g.Categories {
			cat := &g.Categories[ci]
			amount := decimal.Zero
			for _, item := range cat.Items {
				amount = amount.Add(item.Total())
			}
			cat.Amount = amount
		}
		if gt, ok := byGroup[g.GroupID]; ok {
			g.Amount = gt.Amount
			g.Margin = gt.Margin
		}
	}

	changed := !c.OverallTotal.Equal(totals.OverallTotal) || !c.ItemsTotal.Equal(totals.ItemsTotal)
	c.ItemsTotal = totals.ItemsTotal
	c.GlobalMargin = totals.GlobalMargin
	c.OverallTotal = totals.OverallTotal
	if changed {
		c.AddDomainEvent(NewCalculationTotalsChangedEvent(c, totals))
	}
}

// OverallMargin returns the overall total divided by the items total, rounded like
// the calculator does, or zero when there are no items
func (c *Calculation) OverallMargin() decimal.Decimal {
	return safeDiv(c.OverallTotal, c.ItemsTotal)
}

// IsBelowMargin reports whether the overall margin is under the minimum
func (c *Calculation) IsBelowMargin(minMargin decimal.Decimal) bool {
	return isBelowMargin(c.OverallTotal, c.ItemsTotal, minMargin)
}

// MarkUpdated records a modification of the items by the given user
func (c *Calculation) MarkUpdated(username string) {
	c.touch(username)
	c.AddDomainEvent(NewCalculationUpdatedEvent(c))
}

func (c *Calculation) ensureEditable() error {
	if !c.StateEditable {
		return shared.NewDomainError("NOT_EDITABLE", "Calculation cannot be modified in state "+c.StateCode)
	}
	return nil
}

// EnsureEditable returns an error when the current state does not allow modifications
func (c *Calculation) EnsureEditable() error {
	return c.ensureEditable()
}

func (c *Calculation) assignState(state *CalculationState) {
	c.StateID = state.ID
	c.StateCode = state.Code
	c.StateEditable = state.Editable
	c.StateColor = state.Color
}

func (c *Calculation) touch(username string) {
	c.MarkModified()
	c.Touch(username)
}

func (c *Calculation) findOrAddGroup(groupID uuid.UUID, code string) *CalculationGroup {
	for i := range c.Groups {
		if c.Groups[i].GroupID == groupID {
			return &c.Groups[i]
		}
	}
	c.Groups = append(c.Groups, CalculationGroup{
		ID:         uuid.New(),
		GroupID:    groupID,
		Code:       code,
		Amount:     decimal.Zero,
		Margin:     decimal.Zero,
		Position:   len(c.Groups),
		Categories: make([]CalculationCategory, 0),
	})
	return &c.Groups[len(c.Groups)-1]
}

func (g *CalculationGroup) findOrAddCategory(categoryID uuid.UUID, code string) *CalculationCategory {
	for i := range g.Categories {
		if g.Categories[i].CategoryID == categoryID {
			return &g.Categories[i]
		}
	}
	g.Categories = append(g.Categories, CalculationCategory{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Code:       code,
		Amount:     decimal.Zero,
		Position:   len(g.Categories),
		Items:      make([]CalculationItem, 0),
	})
	return &g.Categories[len(g.Categories)-1]
}

// filterItems keeps the items for which keep returns true and prunes empty nodes
func (c *Calculation) filterItems(keep func(*CalculationGroup, *CalculationCategory, CalculationItem) bool) {
	groups := c.Groups[:0]
	for gi := range c.Groups {
		g := c.Groups[gi]
		categories := g.Categories[:0]
		for ci := range g.Categories {
			cat := g.Categories[ci]
			items := make([]CalculationItem, 0, len(cat.Items))
			for _, item := range cat.Items {
				if keep(&g, &cat, item) {
					items = append(items, item)
				}
			}
			if len(items) == 0 {
				continue
			}
			cat.Items = items
			categories = append(categories, cat)
		}
		if len(categories) == 0 {
			continue
		}
		g.Categories = categories
		groups = append(groups, g)
	}
	c.Groups = groups
}

func itemKey(item CalculationItem) string {
	return strings.ToLower(strings.TrimSpace(item.Description))
}

func validateHeader(customer, description string) error {
	if strings.TrimSpace(customer) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(customer) > 255 || len(description) > 255 {
		return shared.NewDomainError("INVALID_INPUT", "Customer and description cannot exceed 255 characters")
	}
	return nil
}

func validateUserMargin(userMargin decimal.Decimal) error {
	if userMargin.LessThan(decimal.NewFromInt(-1)) || userMargin.GreaterThan(decimal.NewFromInt(3)) {
		return shared.NewDomainError("INVALID_USER_MARGIN", "User margin must be between -100% and 300%")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
