package calculation

import (
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	editable  *CalculationState
	locked    *CalculationState
	mo        *catalog.Group
	fourn     *catalog.Group
	painting  *catalog.Category
	paper     *catalog.Category
	globalMgs []margin.GlobalMargin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	var err error

	f.editable, err = NewCalculationState("EDIT", "In progress", true, "#00FF00")
	require.NoError(t, err)
	f.locked, err = NewCalculationState("SENT", "Sent", false, "#ff0000")
	require.NoError(t, err)

	f.mo, err = catalog.NewGroup("MO", "Labour")
	require.NoError(t, err)
	low, _ := catalog.NewGroupMargin(dec("0"), dec("1000"), dec("1.5"))
	high, _ := catalog.NewGroupMargin(dec("1000"), dec("1000000"), dec("1.2"))
	require.NoError(t, f.mo.SetMargins([]catalog.GroupMargin{low, high}))

	f.fourn, err = catalog.NewGroup("FOURN", "Supplies")
	require.NoError(t, err)
	all, _ := catalog.NewGroupMargin(dec("0"), dec("1000000"), dec("1.1"))
	require.NoError(t, f.fourn.SetMargins([]catalog.GroupMargin{all}))

	f.painting, err = catalog.NewCategory("PEINTURE", "", f.mo)
	require.NoError(t, err)
	f.paper, err = catalog.NewCategory("PAPIER", "", f.fourn)
	require.NoError(t, err)

	gm, err := margin.NewGlobalMargin(dec("0"), dec("1000"), dec("1.1"))
	require.NoError(t, err)
	f.globalMgs = []margin.GlobalMargin{*gm}
	return f
}

func (f *fixture) newCalculation(t *testing.T) *Calculation {
	t.Helper()
	calc, err := NewCalculation(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "ACME", "Brochure", f.editable, "admin")
	require.NoError(t, err)

	item1, err := NewCalculationItem("Peinture murale", "h", dec("100"), dec("5"))
	require.NoError(t, err)
	require.NoError(t, calc.AddItem(f.painting, item1))

	item2, err := NewCalculationItem("Papier A4", "rame", dec("20"), dec("10"))
	require.NoError(t, err)
	require.NoError(t, calc.AddItem(f.paper, item2))
	return calc
}

func TestNewCalculation(t *testing.T) {
	f := newFixture(t)

	t.Run("creates calculation in state", func(t *testing.T) {
		calc := f.newCalculation(t)
		assert.Equal(t, "EDIT", calc.StateCode)
		assert.True(t, calc.IsEditable())
		assert.Equal(t, "admin", calc.CreatedBy)
		assert.Equal(t, 0, calc.Date.Hour(), "date is truncated to the day")
		assert.Len(t, calc.Groups, 2)
		assert.Equal(t, 2, calc.LinesCount())

		events := calc.GetDomainEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, EventTypeCalculationCreated, events[0].EventType())
	})

	t.Run("fails without customer", func(t *testing.T) {
		_, err := NewCalculation(time.Now(), " ", "Brochure", f.editable, "admin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Customer cannot be empty")
	})

	t.Run("fails without state", func(t *testing.T) {
		_, err := NewCalculation(time.Now(), "ACME", "Brochure", nil, "admin")
		require.Error(t, err)
	})
}

func TestCalculation_AddItem(t *testing.T) {
	f := newFixture(t)
	calc := f.newCalculation(t)

	t.Run("reuses existing group and category nodes", func(t *testing.T) {
		item, err := NewCalculationItem("Peinture plafond", "h", dec("80"), dec("2"))
		require.NoError(t, err)
		require.NoError(t, calc.AddItem(f.painting, item))

		assert.Len(t, calc.Groups, 2)
		assert.Len(t, calc.Groups[0].Categories, 1)
		assert.Len(t, calc.Groups[0].Categories[0].Items, 2)
		assert.Equal(t, 1, calc.Groups[0].Categories[0].Items[1].Position)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewCalculationItem("Bad", "", dec("1"), dec("-1"))
		require.Error(t, err)
	})

	t.Run("removes item and prunes empty nodes", func(t *testing.T) {
		paperItem := calc.Groups[1].Categories[0].Items[0]
		assert.True(t, calc.RemoveItem(paperItem.ID))
		assert.Len(t, calc.Groups, 1)
		assert.False(t, calc.RemoveItem(paperItem.ID))
	})
}

func TestCalculation_EmptyAndDuplicateItems(t *testing.T) {
	f := newFixture(t)
	calc := f.newCalculation(t)

	empty, _ := NewCalculationItem("Frais", "", dec("0"), dec("3"))
	require.NoError(t, calc.AddItem(f.paper, empty))
	dup, _ := NewCalculationItem("papier a4 ", "rame", dec("20"), dec("5"))
	require.NoError(t, calc.AddItem(f.paper, dup))

	t.Run("detects empty items", func(t *testing.T) {
		refs := calc.EmptyItems()
		require.Len(t, refs, 1)
		assert.Equal(t, "Frais", refs[0].Item.Description)
		assert.Equal(t, "FOURN", refs[0].GroupCode)
		assert.True(t, calc.HasEmptyItems())
	})

	t.Run("detects duplicate items case-insensitively", func(t *testing.T) {
		refs := calc.DuplicateItems()
		assert.Len(t, refs, 2)
		assert.True(t, calc.HasDuplicateItems())
	})

	t.Run("merges duplicate quantities into the first item", func(t *testing.T) {
		removed := calc.RemoveDuplicateItems()
		assert.Equal(t, 1, removed)
		assert.False(t, calc.HasDuplicateItems())

		var found bool
		for _, ref := range calc.Items() {
			if ref.Item.Description == "Papier A4" {
				found = true
				assert.True(t, ref.Item.Quantity.Equal(dec("15")))
			}
		}
		assert.True(t, found)
	})

	t.Run("removes empty items", func(t *testing.T) {
		assert.Equal(t, 1, calc.RemoveEmptyItems())
		assert.False(t, calc.HasEmptyItems())
		assert.Equal(t, 2, calc.LinesCount())
	})
}

func TestCalculation_SetState(t *testing.T) {
	f := newFixture(t)
	calc := f.newCalculation(t)
	calc.ClearDomainEvents()

	require.NoError(t, calc.SetState(f.locked, "john"))
	assert.False(t, calc.IsEditable())
	assert.Equal(t, "john", calc.UpdatedBy)

	events := calc.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*CalculationStateChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "EDIT", changed.OldState)
	assert.Equal(t, "SENT", changed.NewState)

	t.Run("cannot update in non editable state", func(t *testing.T) {
		err := calc.Update(time.Now(), "ACME", "Other", decimal.Zero, "john")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be modified")
	})
}

func TestCalculation_Sort(t *testing.T) {
	f := newFixture(t)
	calc := f.newCalculation(t)
	item, _ := NewCalculationItem("Affiche", "", dec("1"), dec("1"))
	require.NoError(t, calc.AddItem(f.painting, item))

	calc.Sort()
	assert.Equal(t, "FOURN", calc.Groups[0].Code)
	assert.Equal(t, "MO", calc.Groups[1].Code)
	assert.Equal(t, "Affiche", calc.Groups[1].Categories[0].Items[0].Description)
	assert.Equal(t, 1, calc.Groups[1].Position)
}

func TestCalculation_Clone(t *testing.T) {
	f := newFixture(t)
	calc := f.newCalculation(t)

	clone, err := calc.Clone("Copy", f.editable, "jane")
	require.NoError(t, err)
	assert.NotEqual(t, calc.ID, clone.ID)
	assert.Equal(t, "Copy", clone.Description)
	assert.Equal(t, "jane", clone.CreatedBy)
	assert.Equal(t, calc.LinesCount(), clone.LinesCount())
	assert.NotEqual(t, calc.Groups[0].Categories[0].Items[0].ID, clone.Groups[0].Categories[0].Items[0].ID)

	clone.Groups[0].Categories[0].Items[0].Quantity = dec("99")
	assert.True(t, calc.Groups[0].Categories[0].Items[0].Quantity.Equal(dec("5")), "clone does not share items")
}

func TestNewCalculationState(t *testing.T) {
	t.Run("upper-cases color", func(t *testing.T) {
		s, err := NewCalculationState("OK", "", true, "#abcdef")
		require.NoError(t, err)
		assert.Equal(t, "#ABCDEF", s.Color)
	})

	t.Run("defaults color", func(t *testing.T) {
		s, err := NewCalculationState("OK", "", true, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultStateColor, s.Color)
	})

	t.Run("rejects invalid color", func(t *testing.T) {
		_, err := NewCalculationState("OK", "", true, "red")
		require.Error(t, err)
	})
}

func calcDate() time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}
