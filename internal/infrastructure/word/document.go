// Package word builds Word compatible documents. The output is HTML with the
// Office namespaces, which Word opens as a regular .doc file.
package word

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/calculation/backend/internal/domain/printing"
)

//go:embed templates/document.html
var templateFS embed.FS

var documentTemplate = template.Must(template.New("document.html").ParseFS(templateFS, "templates/document.html"))

// ContentType of the generated documents
const ContentType = "application/msword"

// wordSettings opens the document in print layout. html/template drops comments, so it is passed as trusted HTML.
const wordSettings = template.HTML(`<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View><w:Zoom>100</w:Zoom></w:WordDocument></xml><![endif]-->`)

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockWarning
	blockTable
)

type cell struct {
	Text  string
	Align string
}

type block struct {
	Kind    blockKind
	Level   int
	Text    string
	Headers []cell
	// HasHeader is false for label/value tables
	HasHeader bool
	Rows    [][]cell
	Footer  []cell
}

// Document is a fluent builder for Word documents
type Document struct {
	title     string
	landscape bool
	blocks    []block
}

// New creates an empty document
func New() *Document {
	return &Document{}
}

// Title sets the document title, printed as the first heading
func (d *Document) Title(title string) *Document {
	d.title = title
	return d
}

// Landscape switches the page orientation
func (d *Document) Landscape(landscape bool) *Document {
	d.landscape = landscape
	return d
}

// Heading adds a heading of level 1 to 3
func (d *Document) Heading(level int, text string) *Document {
	d.blocks = append(d.blocks, block{Kind: blockHeading, Level: min(max(level, 1), 3) + 1, Text: text})
	return d
}

// Paragraph adds a paragraph
func (d *Document) Paragraph(text string) *Document {
	d.blocks = append(d.blocks, block{Kind: blockParagraph, Text: text})
	return d
}

// Warning adds a highlighted paragraph
func (d *Document) Warning(text string) *Document {
	d.blocks = append(d.blocks, block{Kind: blockWarning, Text: text})
	return d
}

// Table adds a table with formatted cells
func (d *Document) Table(t *printing.Table) *Document {
	b := block{Kind: blockTable}
	for _, c := range t.Columns {
		b.Headers = append(b.Headers, cell{Text: c.Title, Align: string(c.Alignment())})
		b.HasHeader = b.HasHeader || c.Title != ""
	}
	for _, row := range t.Rows {
		b.Rows = append(b.Rows, cells(t.Columns, row))
	}
	if t.Footer != nil {
		b.Footer = cells(t.Columns, t.Footer)
	}
	if t.Title != "" {
		d.Heading(2, t.Title)
	}
	d.blocks = append(d.blocks, b)
	return d
}

// FromDocument appends the header lines, tables and warning of a printing document
func (d *Document) FromDocument(doc *printing.Document) *Document {
	d.Title(doc.Title)
	d.Landscape(doc.Orientation == printing.OrientationLandscape)
	if doc.Subtitle != "" {
		d.Paragraph(doc.Subtitle)
	}
	for _, line := range doc.Header {
		d.Paragraph(line)
	}
	if len(doc.Fields) > 0 {
		fields := printing.NewTable("", printing.Column{Title: ""}, printing.Column{Title: ""})
		for _, f := range doc.Fields {
			fields.AddRow(f.Label, f.Value)
		}
		d.Table(fields)
	}
	for _, t := range doc.Tables {
		d.Table(t)
	}
	if doc.Warning != "" {
		d.Warning(doc.Warning)
	}
	return d
}

// Write renders the document
func (d *Document) Write(w io.Writer) error {
	data := struct {
		Title     string
		Landscape bool
		Settings  template.HTML
		Blocks    []block
	}{d.title, d.landscape, wordSettings, d.blocks}
	if err := documentTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render word document: %w", err)
	}
	return nil
}

func cells(cols []printing.Column, row printing.Row) []cell {
	out := make([]cell, len(cols))
	for i, c := range cols {
		var v any
		if i < len(row) {
			v = row[i]
		}
		out[i] = cell{Text: printing.FormatCell(c.Kind, v), Align: string(c.Alignment())}
	}
	return out
}
