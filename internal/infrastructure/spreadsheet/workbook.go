// Package spreadsheet writes printing documents as Excel workbooks
package spreadsheet

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/calculation/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	amountFormat  = "#,##0.00"
	percentFormat = "0%"
	dateFormat    = "dd.mm.yyyy"
	maxSheetName  = 31
	maxColWidth   = 60.0
)

// Workbook wraps an excelize file with the styles shared by every sheet
type Workbook struct {
	file   *excelize.File
	sheets int
	styles map[string]int
}

// NewWorkbook creates an empty workbook
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile(), styles: make(map[string]int)}
}

// Close releases the temporary files of the underlying workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}

// File exposes the underlying excelize file
func (w *Workbook) File() *excelize.File {
	return w.file
}

// AddTable writes a table to a new sheet: a bold frozen header row, typed cells, an auto filter and column widths
func (w *Workbook) AddTable(table *printing.Table) (string, error) {
	name := w.sheetName(table.Title)
	if w.sheets == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return "", fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	w.sheets++

	if len(table.Columns) == 0 {
		return name, nil
	}

	header, err := w.style("header", &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E7E6E6"}},
		Border:    []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return "", err
	}

	widths := make([]float64, len(table.Columns))
	for col, c := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := w.file.SetCellValue(name, cell, c.Title); err != nil {
			return "", err
		}
		if err := w.file.SetCellStyle(name, cell, cell, header); err != nil {
			return "", err
		}
		widths[col] = float64(utf8.RuneCountInString(c.Title)) + 2
	}

	rowNo := 2
	for _, row := range table.Rows {
		if err := w.writeRow(name, rowNo, table.Columns, row, false, widths); err != nil {
			return "", err
		}
		rowNo++
	}
	if table.Footer != nil {
		if err := w.writeRow(name, rowNo, table.Columns, table.Footer, true, widths); err != nil {
			return "", err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(table.Columns))
	if err := w.file.SetPanes(name, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("failed to freeze header: %w", err)
	}
	if len(table.Rows) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(table.Rows)+1)
		if err := w.file.AutoFilter(name, ref, nil); err != nil {
			return "", fmt.Errorf("failed to set auto filter: %w", err)
		}
	}
	for col, c := range table.Columns {
		width := widths[col]
		if c.Width > 0 {
			width = c.Width
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := w.file.SetColWidth(name, colName, colName, min(width, maxColWidth)); err != nil {
			return "", err
		}
	}
	return name, nil
}

// AddDocument writes every table of the document to its own sheet
func (w *Workbook) AddDocument(doc *printing.Document) error {
	for _, t := range doc.Tables {
		if _, err := w.AddTable(t); err != nil {
			return err
		}
	}
	if doc.Title != "" {
		if err := w.file.SetDocProps(&excelize.DocProperties{
			Title:   doc.Title,
			Subject: doc.Subtitle,
			Created: doc.Created.Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("failed to set document properties: %w", err)
		}
	}
	return nil
}

// Write streams the workbook
func (w *Workbook) Write(out io.Writer) error {
	if w.sheets > 0 {
		w.file.SetActiveSheet(0)
	}
	return w.file.Write(out)
}

func (w *Workbook) writeRow(sheet string, rowNo int, cols []printing.Column, row printing.Row, bold bool, widths []float64) error {
	for col, c := range cols {
		var value any
		if col < len(row) {
			value = row[col]
		}
		cell, _ := excelize.CoordinatesToCellName(col+1, rowNo)
		if err := w.setCell(sheet, cell, c.Kind, value); err != nil {
			return err
		}
		style, err := w.cellStyle(c, bold)
		if err != nil {
			return err
		}
		if err := w.file.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
		if n := float64(utf8.RuneCountInString(printing.FormatCell(c.Kind, value))) + 2; n > widths[col] {
			widths[col] = n
		}
	}
	return nil
}

func (w *Workbook) setCell(sheet, cell string, kind printing.CellKind, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		if kind == printing.KindInteger {
			return w.file.SetCellValue(sheet, cell, v.IntPart())
		}
		f, _ := v.Float64()
		return w.file.SetCellFloat(sheet, cell, f, -1, 64)
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return w.file.SetCellValue(sheet, cell, v)
	default:
		return w.file.SetCellValue(sheet, cell, v)
	}
}

func (w *Workbook) cellStyle(c printing.Column, bold bool) (int, error) {
	key := fmt.Sprintf("cell-%d-%s-%t", c.Kind, c.Alignment(), bold)
	format := ""
	switch c.Kind {
	case printing.KindAmount:
		format = amountFormat
	case printing.KindPercent:
		format = percentFormat
	case printing.KindDate:
		format = dateFormat
	}
	style := &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: string(c.Alignment())},
	}
	if format != "" {
		style.CustomNumFmt = &format
	}
	if bold {
		style.Font = &excelize.Font{Bold: true}
		style.Border = []excelize.Border{{Type: "top", Color: "#000000", Style: 1}}
	}
	return w.style(key, style)
}

func (w *Workbook) style(key string, style *excelize.Style) (int, error) {
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

// sheetName returns a unique name within Excel's limits
func (w *Workbook) sheetName(title string) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if base == "" {
		base = fmt.Sprintf("Sheet%d", w.sheets+1)
	}
	if utf8.RuneCountInString(base) > maxSheetName {
		base = string([]rune(base)[:maxSheetName])
	}
	name := base
	for i := 2; w.exists(name); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		runes := []rune(base)
		if len(runes)+len(suffix) > maxSheetName {
			runes = runes[:maxSheetName-len(suffix)]
		}
		name = string(runes) + suffix
	}
	return name
}

func (w *Workbook) exists(name string) bool {
	if w.sheets == 0 {
		return false
	}
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}
