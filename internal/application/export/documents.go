package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/partner"
	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/shopspring/decimal"
)

var (
	colText    = printing.Column{Title: ""}
	colAmount  = printing.Column{Kind: printing.KindAmount}
	colPercent = printing.Column{Kind: printing.KindPercent}
	colInteger = printing.Column{Kind: printing.KindInteger}
	colDate    = printing.Column{Kind: printing.KindDate}
	colBool    = printing.Column{Kind: printing.KindBool}
)

func col(base printing.Column, title string, width float64) printing.Column {
	base.Title = title
	base.Width = width
	return base
}

func newDocument(title string, params setting.Parameters) *printing.Document {
	doc := printing.NewDocument(title)
	doc.Header = headerLines(params)
	return doc
}

// headerLines returns the company block printed above every document
func headerLines(params setting.Parameters) []string {
	lines := []string{params.CustomerName}
	for _, line := range strings.Split(params.CustomerAddress, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	for _, v := range []string{params.CustomerPhone, params.CustomerEmail, params.CustomerURL} {
		if v != "" {
			lines = append(lines, v)
		}
	}
	return lines
}

// calculationDocument prints a calculation with its items and the totals summary
func calculationDocument(calc *calculation.Calculation, totals *calculation.Totals, params setting.Parameters) *printing.Document {
	doc := newDocument(fmt.Sprintf("Calculation %s", calc.ID.String()[:8]), params)
	doc.Subtitle = calc.Description
	doc.AddField("Date", printing.FormatCell(printing.KindDate, calc.Date)).
		AddField("Customer", calc.Customer).
		AddField("Description", calc.Description).
		AddField("State", calc.StateCode).
		AddField("Created by", calc.CreatedBy).
		AddField("Updated by", calc.UpdatedBy)

	items := printing.NewTable("Items",
		col(colText, "Description", 50),
		col(colText, "Unit", 10),
		col(colAmount, "Price", 14),
		col(colAmount, "Quantity", 12),
		col(colAmount, "Total", 16),
	)
	for _, g := range calc.Groups {
		items.AddRow(g.Code, nil, nil, nil, g.Amount)
		for _, cat := range g.Categories {
			items.AddRow("  "+cat.Code, nil, nil, nil, cat.Amount)
			for _, item := range cat.Items {
				items.AddRow("    "+item.Description, item.Unit, item.Price, item.Quantity, item.Total())
			}
		}
	}
	items.SetFooter("Total", nil, nil, nil, totals.ItemsTotal)
	doc.AddTable(items)

	summary := printing.NewTable("Totals",
		col(colText, "Group", 30),
		col(colAmount, "Amount", 16),
		col(colPercent, "Margin", 10),
		col(colAmount, "Margin amount", 16),
		col(colAmount, "Total", 16),
	)
	for _, row := range totals.Rows() {
		if row.Kind == calculation.RowOverallTotal {
			summary.SetFooter(row.Label, row.Amount, row.Margin, row.MarginAmount, row.Total)
			continue
		}
		summary.AddRow(row.Label, optional(row.Amount), optional(row.Margin), optional(row.MarginAmount), row.Total)
	}
	doc.AddTable(summary)

	if totals.BelowMargin {
		doc.Warning = fmt.Sprintf("The overall margin of %s is below the minimum of %s.",
			printing.FormatCell(printing.KindPercent, totals.OverallMargin),
			printing.FormatCell(printing.KindPercent, totals.MinMargin))
	}
	return doc
}

// optional hides zero amounts of the summary lines
func optional(d decimal.Decimal) any {
	if d.IsZero() {
		return nil
	}
	return d
}

func calculationsDocument(calcs []calculation.Calculation, params setting.Parameters) *printing.Document {
	doc := newDocument("Calculations", params)
	doc.Orientation = printing.OrientationLandscape
	t := printing.NewTable("Calculations",
		col(colDate, "Date", 12),
		col(colText, "State", 14),
		col(colText, "Customer", 30),
		col(colText, "Description", 40),
		col(colPercent, "Margin", 10),
		col(colAmount, "Total", 16),
	)
	items, overall := decimal.Zero, decimal.Zero
	for i := range calcs {
		c := &calcs[i]
		t.AddRow(c.Date, c.StateCode, c.Customer, c.Description, c.OverallMargin(), c.OverallTotal)
		items = items.Add(c.ItemsTotal)
		overall = overall.Add(c.OverallTotal)
	}
	var totalMargin any
	if !items.IsZero() {
		totalMargin = overall.Div(items)
	}
	t.SetFooter(count(len(calcs), "calculation"), nil, nil, nil, totalMargin, overall)
	return doc.AddTable(t)
}

func statesDocument(states []calculation.CalculationState, counts map[string]int64, params setting.Parameters) *printing.Document {
	doc := newDocument("Calculation states", params)
	t := printing.NewTable("States",
		col(colText, "Code", 16),
		col(colText, "Description", 40),
		col(colBool, "Editable", 10),
		col(colText, "Color", 10),
		col(colInteger, "Calculations", 14),
	)
	for _, s := range states {
		t.AddRow(s.Code, s.Description, s.Editable, s.Color, decimal.NewFromInt(counts[s.ID.String()]))
	}
	t.SetFooter(count(len(states), "state"))
	return doc.AddTable(t)
}

func groupsDocument(groups []catalog.Group, params setting.Parameters) *printing.Document {
	doc := newDocument("Groups", params)
	t := printing.NewTable("Groups",
		col(colText, "Code", 16),
		col(colText, "Description", 40),
		col(colAmount, "Minimum", 14),
		col(colAmount, "Maximum", 14),
		col(colPercent, "Margin", 10),
	)
	for _, g := range groups {
		if len(g.Margins) == 0 {
			t.AddRow(g.Code, g.Description)
			continue
		}
		for i, m := range g.Margins {
			code, desc := "", ""
			if i == 0 {
				code, desc = g.Code, g.Description
			}
			t.AddRow(code, desc, m.Minimum, m.Maximum, m.Margin)
		}
	}
	t.SetFooter(count(len(groups), "group"))
	return doc.AddTable(t)
}

func categoriesDocument(categories []catalog.Category, params setting.Parameters) *printing.Document {
	doc := newDocument("Categories", params)
	t := printing.NewTable("Categories",
		col(colText, "Code", 16),
		col(colText, "Description", 40),
		col(colText, "Group", 16),
	)
	for _, c := range categories {
		t.AddRow(c.Code, c.Description, c.GroupCode)
	}
	t.SetFooter(count(len(categories), "category"))
	return doc.AddTable(t)
}

func productsDocument(products []catalog.Product, params setting.Parameters) *printing.Document {
	doc := newDocument("Products", params)
	doc.Orientation = printing.OrientationLandscape
	t := printing.NewTable("Products",
		col(colText, "Description", 45),
		col(colText, "Group", 14),
		col(colText, "Category", 14),
		col(colText, "Supplier", 20),
		col(colText, "Unit", 10),
		col(colAmount, "Price", 14),
	)
	for _, p := range products {
		t.AddRow(p.Description, p.GroupCode, p.CategoryCode, p.Supplier, p.Unit, p.Price)
	}
	t.SetFooter(count(len(products), "product"))
	return doc.AddTable(t)
}

func tasksDocument(tasks []catalog.Task, params setting.Parameters) *printing.Document {
	doc := newDocument("Tasks", params)
	t := printing.NewTable("Tasks",
		col(colText, "Name", 40),
		col(colText, "Group", 14),
		col(colText, "Category", 14),
		col(colText, "Unit", 10),
		col(colInteger, "Items", 8),
	)
	for _, task := range tasks {
		t.AddRow(task.Name, task.GroupCode, task.CategoryCode, task.Unit, decimal.NewFromInt(int64(len(task.Items))))
	}
	t.SetFooter(count(len(tasks), "task"))
	return doc.AddTable(t)
}

func customersDocument(customers []partner.Customer, params setting.Parameters) *printing.Document {
	doc := newDocument("Customers", params)
	doc.Orientation = printing.OrientationLandscape
	t := printing.NewTable("Customers",
		col(colText, "Name", 30),
		col(colText, "Company", 30),
		col(colText, "Address", 30),
		col(colText, "City", 24),
		col(colText, "Email", 30),
		col(colText, "Phone", 18),
	)
	for i := range customers {
		c := &customers[i]
		t.AddRow(c.FullName(), c.Company, c.Address, c.ZipCity(), c.Email, c.Phone)
	}
	t.SetFooter(count(len(customers), "customer"))
	return doc.AddTable(t)
}

func globalMarginsDocument(margins []margin.GlobalMargin, params setting.Parameters) *printing.Document {
	doc := newDocument("Global margins", params)
	t := printing.NewTable("Global margins",
		col(colAmount, "Minimum", 16),
		col(colAmount, "Maximum", 16),
		col(colPercent, "Margin", 12),
	)
	for _, m := range margins {
		t.AddRow(m.Minimum, m.Maximum, m.Margin)
	}
	t.SetFooter(count(len(margins), "margin"))
	return doc.AddTable(t)
}

func count(n int, noun string) string {
	if n != 1 {
		noun += "s"
		if strings.HasSuffix(noun, "ys") {
			noun = strings.TrimSuffix(noun, "ys") + "ies"
		}
	}
	return strconv.Itoa(n) + " " + noun
}
