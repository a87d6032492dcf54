package export

import (
	"context"
	"io"

	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/infrastructure/csvexport"
	"github.com/calculation/backend/internal/infrastructure/spreadsheet"
	"github.com/calculation/backend/internal/infrastructure/word"
)

// Builder writes a document in one output format
type Builder interface {
	Build(ctx context.Context, doc *printing.Document, w io.Writer) error
}

// BuilderFunc adapts a function to Builder
type BuilderFunc func(ctx context.Context, doc *printing.Document, w io.Writer) error

// Build implements Builder
func (f BuilderFunc) Build(ctx context.Context, doc *printing.Document, w io.Writer) error {
	return f(ctx, doc, w)
}

// WordBuilder writes Word compatible HTML documents
func WordBuilder() Builder {
	return BuilderFunc(func(_ context.Context, doc *printing.Document, w io.Writer) error {
		return word.New().FromDocument(doc).Write(w)
	})
}

// SpreadsheetBuilder writes one sheet per document table
func SpreadsheetBuilder() Builder {
	return BuilderFunc(func(_ context.Context, doc *printing.Document, w io.Writer) error {
		wb := spreadsheet.NewWorkbook()
		defer wb.Close()
		if err := wb.AddDocument(doc); err != nil {
			return err
		}
		return wb.Write(w)
	})
}

// CSVBuilder writes the document tables as CSV
func CSVBuilder(opts csvexport.Options) Builder {
	return BuilderFunc(func(_ context.Context, doc *printing.Document, w io.Writer) error {
		return csvexport.NewWriter(w, opts).WriteDocument(doc)
	})
}

// Registry maps the output formats to their builders
type Registry map[printing.Format]Builder

// DefaultRegistry registers the builders that need no external process.
// The PDF builder is added by the caller since it needs a browser.
func DefaultRegistry() Registry {
	return Registry{
		printing.FormatDoc:  WordBuilder(),
		printing.FormatXLSX: SpreadsheetBuilder(),
		printing.FormatCSV:  CSVBuilder(csvexport.DefaultOptions()),
	}
}

// Formats returns the registered formats
func (r Registry) Formats() []printing.Format {
	formats := make([]printing.Format, 0, len(r))
	for _, f := range printing.AllFormats() {
		if _, ok := r[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}
