package pivot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const pathSeparator = "\x1f"

// Node is a header node. The root has an empty key.
type Node struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Field    string  `json:"field,omitempty"`
	Children []*Node `json:"children,omitempty"`

	index map[string]*Node
}

func newNode(key, label, field string) *Node {
	return &Node{Key: key, Label: label, Field: field, index: make(map[string]*Node)}
}

func (n *Node) child(key, label, field string) *Node {
	if c, ok := n.index[key]; ok {
		return c
	}
	c := newNode(key, label, field)
	n.index[key] = c
	n.Children = append(n.Children, c)
	return c
}

func (n *Node) sort() {
	sort.SliceStable(n.Children, func(i, j int) bool {
		return compareKeys(n.Children[i].Key, n.Children[j].Key) < 0
	})
	for _, c := range n.Children {
		c.sort()
	}
}

// Leaves returns the key paths of the leaf nodes, in order
func (n *Node) Leaves() [][]string {
	var out [][]string
	var walk func(*Node, []string)
	walk = func(node *Node, path []string) {
		if len(node.Children) == 0 {
			out = append(out, append([]string(nil), path...))
			return
		}
		for _, c := range node.Children {
			walk(c, append(path, c.Key))
		}
	}
	walk(n, nil)
	return out
}

// Cell is one computed value of the table
type Cell struct {
	Row    []string        `json:"row"`
	Column []string        `json:"column"`
	Value  decimal.Decimal `json:"value"`
}

// Total is the aggregated value of a full row or column
type Total struct {
	Path  []string        `json:"path"`
	Value decimal.Decimal `json:"value"`
}

// Table is the computed pivot table
type Table struct {
	Aggregator   string          `json:"aggregator"`
	DataField    string          `json:"data_field"`
	RowFields    []Field         `json:"row_fields"`
	ColumnFields []Field         `json:"column_fields"`
	Rows         *Node           `json:"rows"`
	Columns      *Node           `json:"columns"`
	Cells        []Cell          `json:"cells"`
	RowTotals    []Total         `json:"row_totals"`
	ColumnTotals []Total         `json:"column_totals"`
	GrandTotal   decimal.Decimal `json:"grand_total"`

	values map[string]map[string]decimal.Decimal
}

// Value returns the cell value at the row and column paths
func (t *Table) Value(row, column []string) (decimal.Decimal, bool) {
	cols, ok := t.values[joinPath(row)]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := cols[joinPath(column)]
	return v, ok
}

// Builder configures and builds a pivot table
type Builder struct {
	aggregator Aggregator
	dataField  string
	rows       []Field
	columns    []Field
}

// NewBuilder creates a builder using a prototype aggregator applied to the
// data field. An empty data field adds one per record.
func NewBuilder(aggregator Aggregator, dataField string) *Builder {
	if aggregator == nil {
		aggregator = &SumAggregator{}
	}
	return &Builder{aggregator: aggregator, dataField: dataField}
}

// Rows sets the row fields
func (b *Builder) Rows(fields ...Field) *Builder {
	b.rows = fields
	return b
}

// Columns sets the column fields
func (b *Builder) Columns(fields ...Field) *Builder {
	b.columns = fields
	return b
}

type accumulator struct {
	path []string
	agg  Aggregator
}

// Build aggregates the records
func (b *Builder) Build(records []Record) (*Table, error) {
	for _, f := range append(append([]Field(nil), b.rows...), b.columns...) {
		if !f.Method.IsValid() {
			return nil, fmt.Errorf("pivot: field %s: unknown method %q", f.Name, f.Method)
		}
	}

	rowRoot := newNode("", "", "")
	colRoot := newNode("", "", "")
	cells := make(map[string]map[string]*accumulator)
	rowTotals := make(map[string]*accumulator)
	colTotals := make(map[string]*accumulator)
	grand := b.aggregator.Clone()

	for i, record := range records {
		value := decimal.NewFromInt(1)
		if b.dataField != "" {
			v, err := toDecimal(record[b.dataField])
			if err != nil {
				return nil, fmt.Errorf("pivot: record %d: %w", i, err)
			}
			value = v
		}
		rowPath, err := insertPath(rowRoot, b.rows, record)
		if err != nil {
			return nil, fmt.Errorf("pivot: record %d: %w", i, err)
		}
		colPath, err := insertPath(colRoot, b.columns, record)
		if err != nil {
			return nil, fmt.Errorf("pivot: record %d: %w", i, err)
		}

		rk, ck := joinPath(rowPath), joinPath(colPath)
		if cells[rk] == nil {
			cells[rk] = make(map[string]*accumulator)
		}
		b.accumulate(cells[rk], ck, colPath, value)
		b.accumulate(rowTotals, rk, rowPath, value)
		b.accumulate(colTotals, ck, colPath, value)
		grand.Add(value)
	}

	rowRoot.sort()
	colRoot.sort()

	table := &Table{
		Aggregator:   b.aggregator.Name(),
		DataField:    b.dataField,
		RowFields:    b.rows,
		ColumnFields: b.columns,
		Rows:         rowRoot,
		Columns:      colRoot,
		GrandTotal:   grand.Result(),
		values:       make(map[string]map[string]decimal.Decimal),
	}
	if len(records) == 0 {
		return table, nil
	}

	rowLeaves := rowRoot.Leaves()
	colLeaves := colRoot.Leaves()
	for _, row := range rowLeaves {
		rk := joinPath(row)
		for _, col := range colLeaves {
			ck := joinPath(col)
			acc, ok := cells[rk][ck]
			if !ok {
				continue
			}
			v := acc.agg.Result()
			table.Cells = append(table.Cells, Cell{Row: row, Column: col, Value: v})
			if table.values[rk] == nil {
				table.values[rk] = make(map[string]decimal.Decimal)
			}
			table.values[rk][ck] = v
		}
		table.RowTotals = append(table.RowTotals, Total{Path: row, Value: rowTotals[rk].agg.Result()})
	}
	for _, col := range colLeaves {
		table.ColumnTotals = append(table.ColumnTotals, Total{Path: col, Value: colTotals[joinPath(col)].agg.Result()})
	}
	return table, nil
}

func (b *Builder) accumulate(m map[string]*accumulator, key string, path []string, value decimal.Decimal) *accumulator {
	acc, ok := m[key]
	if !ok {
		acc = &accumulator{path: path, agg: b.aggregator.Clone()}
		m[key] = acc
	}
	acc.agg.Add(value)
	return acc
}

func insertPath(root *Node, fields []Field, record Record) ([]string, error) {
	path := make([]string, 0, len(fields))
	node := root
	for _, f := range fields {
		key, err := f.Key(record)
		if err != nil {
			return nil, err
		}
		node = node.child(key, f.Label(key), f.Name)
		path = append(path, key)
	}
	return path, nil
}

func joinPath(path []string) string {
	return strings.Join(path, pathSeparator)
}

// compareKeys orders numeric keys by value and other keys lexically
func compareKeys(a, b string) int {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA == nil && errB == nil {
		return da.Cmp(db)
	}
	return strings.Compare(a, b)
}
