// Package csvexport writes printing tables as CSV
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/calculation/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
)

// Options controls the CSV dialect
type Options struct {
	// Separator defaults to ';' which spreadsheet applications open directly in most European locales
	Separator rune
	// BOM prefixes the output with a UTF-8 byte order mark
	BOM bool
}

// DefaultOptions returns the dialect used by exports
func DefaultOptions() Options {
	return Options{Separator: ';', BOM: true}
}

// Writer writes tables as CSV rows
type Writer struct {
	out  io.Writer
	csv  *csv.Writer
	opts Options
	bom  bool
}

// NewWriter creates a CSV writer
func NewWriter(out io.Writer, opts Options) *Writer {
	if opts.Separator == 0 {
		opts.Separator = ';'
	}
	w := csv.NewWriter(out)
	w.Comma = opts.Separator
	return &Writer{out: out, csv: w, opts: opts}
}

// WriteTable writes the header row, the rows and the footer
func (w *Writer) WriteTable(t *printing.Table) error {
	if w.opts.BOM && !w.bom {
		if _, err := w.out.Write([]byte("\ufeff")); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
		w.bom = true
	}
	if err := w.csv.Write(t.Headers()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.csv.Write(record(t.Columns, row)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if t.Footer != nil {
		if err := w.csv.Write(record(t.Columns, t.Footer)); err != nil {
			return fmt.Errorf("failed to write footer: %w", err)
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// WriteDocument writes every table, separated by an empty line
func (w *Writer) WriteDocument(doc *printing.Document) error {
	for i, t := range doc.Tables {
		if i > 0 {
			if err := w.csv.Write(nil); err != nil {
				return err
			}
		}
		if err := w.WriteTable(t); err != nil {
			return err
		}
	}
	return nil
}

// record renders cells without thousand separators so the values stay machine readable
func record(cols []printing.Column, row printing.Row) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if i >= len(row) {
			break
		}
		switch v := row[i].(type) {
		case decimal.Decimal:
			if c.Kind == printing.KindInteger {
				out[i] = v.StringFixed(0)
			} else if c.Kind == printing.KindPercent {
				out[i] = v.StringFixed(4)
			} else {
				out[i] = v.StringFixed(2)
			}
		case time.Time:
			if !v.IsZero() {
				out[i] = v.Format(time.DateOnly)
			}
		default:
			out[i] = printing.FormatCell(c.Kind, v)
		}
	}
	return out
}
