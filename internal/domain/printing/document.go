package printing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tells builders how to format a column
type CellKind int

const (
	KindText CellKind = iota
	KindInteger
	KindAmount
	KindPercent
	KindDate
	KindBool
)

// Alignment of a column
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Column describes a table column
type Column struct {
	Title string
	Kind  CellKind
	Align Alignment
	// Width in characters, zero lets the builder decide
	Width float64
}

// Alignment returns the explicit alignment or the default one for the kind
func (c Column) Alignment() Alignment {
	if c.Align != "" {
		return c.Align
	}
	switch c.Kind {
	case KindInteger, KindAmount, KindPercent:
		return AlignRight
	case KindDate, KindBool:
		return AlignCenter
	default:
		return AlignLeft
	}
}

// Row holds one value per column. Values are string, int, int64, decimal.Decimal, time.Time, bool or nil.
type Row []any

// Table is a titled grid with an optional footer row
type Table struct {
	Title   string
	Columns []Column
	Rows    []Row
	Footer  Row
}

// NewTable creates an empty table with the given columns
func NewTable(title string, columns ...Column) *Table {
	return &Table{Title: title, Columns: columns}
}

// AddRow appends a row. Short rows are padded with nil.
func (t *Table) AddRow(values ...any) *Table {
	t.Rows = append(t.Rows, t.pad(values))
	return t
}

// SetFooter sets the totals row
func (t *Table) SetFooter(values ...any) *Table {
	t.Footer = t.pad(values)
	return t
}

func (t *Table) pad(values []any) Row {
	row := make(Row, len(t.Columns))
	copy(row, values)
	return row
}

// Headers returns the column titles
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Title
	}
	return headers
}

// Field is a labelled value printed in the document information block
type Field struct {
	Label string
	Value string
}

// Document is a report rendered by every export builder
type Document struct {
	Title       string
	Subtitle    string
	Orientation Orientation
	// Header lines printed above the tables, such as the company address
	Header []string
	Fields []Field
	Tables []*Table
	// Warning is highlighted after the tables, such as a below margin notice
	Warning string
	Created time.Time
}

// NewDocument creates a portrait document
func NewDocument(title string) *Document {
	return &Document{Title: title, Orientation: OrientationPortrait, Created: time.Now()}
}

// AddField appends a labelled value, empty values are skipped
func (d *Document) AddField(label, value string) *Document {
	if value != "" {
		d.Fields = append(d.Fields, Field{Label: label, Value: value})
	}
	return d
}

// AddTable appends a table and returns it for chaining
func (d *Document) AddTable(t *Table) *Document {
	d.Tables = append(d.Tables, t)
	return d
}

// FormatCell renders a value as text for the column kind
func FormatCell(kind CellKind, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		switch kind {
		case KindPercent:
			return val.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
		case KindInteger:
			return val.StringFixed(0)
		default:
			return FormatAmount(val)
		}
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("02.01.2006")
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case *time.Time:
		if val == nil {
			return ""
		}
		return FormatCell(kind, *val)
	default:
		return fmt.Sprint(val)
	}
}

// FormatAmount renders an amount with two decimals and apostrophe thousand separators
func FormatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	var grouped []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, '\'')
		}
		grouped = append(grouped, c)
	}
	out := string(grouped) + "." + frac
	if d.IsNegative() && !d.Round(2).IsZero() {
		out = "-" + out
	}
	return out
}
