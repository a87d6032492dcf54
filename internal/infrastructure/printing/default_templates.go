package printing

import (
	"embed"
	"fmt"

	"github.com/calculation/backend/internal/domain/printing"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate is an embedded page layout
type DefaultTemplate struct {
	Name      string
	PaperSize printing.PaperSize
	Margins   printing.PageMargins
	FilePath  string
}

// DocumentTemplate renders any printing document: reports, lists and calculations
var DocumentTemplate = DefaultTemplate{
	Name:      "document",
	PaperSize: printing.PaperSizeA4,
	Margins:   printing.DefaultPageMargins(),
	FilePath:  "templates/document.html",
}

// FooterTemplate prints the page number on every page
const FooterTemplate = `<div style="font-size:7pt;width:100%;text-align:right;margin-right:10mm;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// LoadTemplateContent reads an embedded template
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", filePath, err)
	}
	return string(content), nil
}
