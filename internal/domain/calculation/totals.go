package calculation

import (
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinMargin is the minimum overall margin used when none is configured
var DefaultMinMargin = decimal.RequireFromString("1.1")

// GroupTotal is the computed amount of one calculation group
type GroupTotal struct {
	GroupID      uuid.UUID       `json:"group_id"`
	Code         string          `json:"code"`
	Amount       decimal.Decimal `json:"amount"`
	Margin       decimal.Decimal `json:"margin"`
	MarginAmount decimal.Decimal `json:"margin_amount"`
	Total        decimal.Decimal `json:"total"`
}

// Totals is the result of pricing a calculation
type Totals struct {
	Groups []GroupTotal `json:"groups"`

	ItemsTotal   decimal.Decimal `json:"items_total"`
	GroupsTotal  decimal.Decimal `json:"groups_total"`
	GroupsMargin decimal.Decimal `json:"groups_margin"`

	GlobalMargin decimal.Decimal `json:"global_margin"`
	GlobalAmount decimal.Decimal `json:"global_amount"`
	NetTotal     decimal.Decimal `json:"net_total"`

	UserMargin decimal.Decimal `json:"user_margin"`
	UserAmount decimal.Decimal `json:"user_amount"`

	OverallTotal        decimal.Decimal `json:"overall_total"`
	OverallMargin       decimal.Decimal `json:"overall_margin"`
	OverallMarginAmount decimal.Decimal `json:"overall_margin_amount"`

	MinMargin   decimal.Decimal `json:"min_margin"`
	BelowMargin bool            `json:"below_margin"`
}

// RowKind identifies a line of the totals summary
type RowKind string

const (
	RowGroup        RowKind = "group"
	RowGroupsTotal  RowKind = "groups_total"
	RowGlobalMargin RowKind = "global_margin"
	RowNetTotal     RowKind = "net_total"
	RowUserMargin   RowKind = "user_margin"
	RowOverallTotal RowKind = "overall_total"
)

// TotalRow is one line of the totals summary shown under a calculation
type TotalRow struct {
	Kind         RowKind         `json:"kind"`
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	Margin       decimal.Decimal `json:"margin"`
	MarginAmount decimal.Decimal `json:"margin_amount"`
	Total        decimal.Decimal `json:"total"`
}

// Rows returns the summary lines: one per group followed by the totals
func (t *Totals) Rows() []TotalRow {
	rows := make([]TotalRow, 0, len(t.Groups)+5)
	for _, g := range t.Groups {
		rows = append(rows, TotalRow{
			Kind:         RowGroup,
			Label:        g.Code,
			Amount:       g.Amount,
			Margin:       g.Margin,
			MarginAmount: g.MarginAmount,
			Total:        g.Total,
		})
	}
	rows = append(rows,
		TotalRow{
			Kind:         RowGroupsTotal,
			Label:        "Total groups",
			Amount:       t.ItemsTotal,
			Margin:       t.GroupsMargin,
			MarginAmount: t.GroupsTotal.Sub(t.ItemsTotal),
			Total:        t.GroupsTotal,
		},
		TotalRow{
			Kind:         RowGlobalMargin,
			Label:        "Global margin",
			Margin:       t.GlobalMargin,
			MarginAmount: t.GlobalAmount,
			Total:        t.GlobalAmount,
		},
		TotalRow{
			Kind:  RowNetTotal,
			Label: "Net total",
			Total: t.NetTotal,
		},
		TotalRow{
			Kind:         RowUserMargin,
			Label:        "User margin",
			Margin:       t.UserMargin,
			MarginAmount: t.UserAmount,
			Total:        t.UserAmount,
		},
		TotalRow{
			Kind:         RowOverallTotal,
			Label:        "Overall total",
			Amount:       t.ItemsTotal,
			Margin:       t.OverallMargin,
			MarginAmount: t.OverallMarginAmount,
			Total:        t.OverallTotal,
		},
	)
	return rows
}

// Calculator prices calculations with the group margins of the catalog and the global margins
type Calculator struct {
	groups        map[uuid.UUID]*catalog.Group
	globalMargins []margin.GlobalMargin
	minMargin     decimal.Decimal
}

// NewCalculator creates a calculator. A zero minMargin falls back to DefaultMinMargin.
func NewCalculator(groups []catalog.Group, globalMargins []margin.GlobalMargin, minMargin decimal.Decimal) *Calculator {
	byID := make(map[uuid.UUID]*catalog.Group, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}
	if minMargin.IsZero() {
		minMargin = DefaultMinMargin
	}
	return &Calculator{
		groups:        byID,
		globalMargins: globalMargins,
		minMargin:     minMargin,
	}
}

// MinMargin returns the minimum overall margin
func (c *Calculator) MinMargin() decimal.Decimal {
	return c.minMargin
}

// groupMargin returns the margin of the catalog group for the amount
func (c *Calculator) groupMargin(groupID uuid.UUID, amount decimal.Decimal) decimal.Decimal {
	group, ok := c.groups[groupID]
	if !ok {
		return decimal.Zero
	}
	return group.FindMargin(amount)
}

// globalMargin returns the global margin for the amount
func (c *Calculator) globalMargin(amount decimal.Decimal) decimal.Decimal {
	if gm, ok := margin.Find(c.globalMargins, amount); ok {
		return gm.Margin
	}
	return decimal.Zero
}

// Compute prices the calculation without modifying it
func (c *Calculator) Compute(calc *Calculation) *Totals {
	totals := &Totals{
		Groups:     make([]GroupTotal, 0, len(calc.Groups)),
		UserMargin: calc.UserMargin,
		MinMargin:  c.minMargin,
	}

	itemsTotal := decimal.Zero
	groupsTotal := decimal.Zero
	for _, g := range calc.Groups {
		amount := decimal.Zero
		for _, cat := range g.Categories {
			for _, item := range cat.Items {
				amount = amount.Add(item.Total())
			}
		}
		amount = amount.Round(2)
		groupMargin := c.groupMargin(g.GroupID, amount)
		total := amount.Mul(groupMargin).Round(2)

		totals.Groups = append(totals.Groups, GroupTotal{
			GroupID:      g.GroupID,
			Code:         g.Code,
			Amount:       amount,
			Margin:       groupMargin,
			MarginAmount: total.Sub(amount),
			Total:        total,
		})
		itemsTotal = itemsTotal.Add(amount)
		groupsTotal = groupsTotal.Add(total)
	}

	totals.ItemsTotal = itemsTotal
	totals.GroupsTotal = groupsTotal
	totals.GroupsMargin = safeDiv(groupsTotal, itemsTotal)

	totals.GlobalMargin = c.globalMargin(groupsTotal)
	totals.NetTotal = groupsTotal.Mul(totals.GlobalMargin).Round(2)
	totals.GlobalAmount = totals.NetTotal.Sub(groupsTotal)

	totals.UserAmount = totals.NetTotal.Mul(calc.UserMargin).Round(2)
	totals.OverallTotal = totals.NetTotal.Add(totals.UserAmount)
	totals.OverallMargin = safeDiv(totals.OverallTotal, itemsTotal)
	totals.OverallMarginAmount = totals.OverallTotal.Sub(itemsTotal)
	totals.BelowMargin = isBelowMargin(totals.OverallTotal, itemsTotal, c.minMargin)

	return totals
}

// Apply computes the totals and stores them on the calculation
func (c *Calculator) Apply(calc *Calculation) *Totals {
	totals := c.Compute(calc)
	calc.ApplyTotals(totals)
	return totals
}

// isBelowMargin compares overall < items * minMargin without rounding, as the
// below-margin repository query does. Empty calculations are never below margin.
func isBelowMargin(overallTotal, itemsTotal, minMargin decimal.Decimal) bool {
	return !itemsTotal.IsZero() && overallTotal.LessThan(itemsTotal.Mul(minMargin))
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, 4)
}
