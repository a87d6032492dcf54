package printing

import (
	"context"
	"fmt"
	"io"

	"github.com/calculation/backend/internal/domain/printing"
)

// PDFBuilder renders printing documents to PDF through the template engine and a PDF renderer
type PDFBuilder struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	layout   DefaultTemplate
	content  string
	company  string
	lang     string
}

// PDFBuilderOption configures the builder
type PDFBuilderOption func(*PDFBuilder)

// WithCompany prints the company name in the page header
func WithCompany(name string) PDFBuilderOption {
	return func(b *PDFBuilder) {
		b.company = name
	}
}

// WithLanguage selects the language of the built-in labels ("en", "fr" or "de")
func WithLanguage(lang string) PDFBuilderOption {
	return func(b *PDFBuilder) {
		b.lang = lang
	}
}

// NewPDFBuilder creates a builder using the embedded document layout
func NewPDFBuilder(engine *TemplateEngine, renderer PDFRenderer, opts ...PDFBuilderOption) (*PDFBuilder, error) {
	content, err := LoadTemplateContent(DocumentTemplate.FilePath)
	if err != nil {
		return nil, err
	}
	b := &PDFBuilder{engine: engine, renderer: renderer, layout: DocumentTemplate, content: content, lang: "en"}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// HTML renders the document layout
func (b *PDFBuilder) HTML(ctx context.Context, doc *printing.Document) (string, error) {
	data := map[string]any{
		"Doc":     doc,
		"Company": b.company,
		"Lang":    b.lang,
	}
	return b.engine.RenderString(ctx, b.layout.Name, b.content, data)
}

// Build renders the document to PDF and writes it to w
func (b *PDFBuilder) Build(ctx context.Context, doc *printing.Document, w io.Writer) error {
	html, err := b.HTML(ctx, doc)
	if err != nil {
		return err
	}
	orientation := doc.Orientation
	if !orientation.IsValid() {
		orientation = printing.OrientationPortrait
	}
	result, err := b.renderer.Render(ctx, &RenderRequest{
		HTML:        html,
		PaperSize:   b.layout.PaperSize,
		Orientation: orientation,
		Margins:     b.layout.Margins,
		Title:       doc.Title,
		FooterHTML:  FooterTemplate,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(result.PDFData); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
