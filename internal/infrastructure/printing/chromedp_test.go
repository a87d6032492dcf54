package printing

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.PrintingConfig{
		ChromePath: "/usr/bin/chromium",
		Timeout:    10 * time.Second,
		NoSandbox:  true,
	}, zap.NewNop())

	assert.Equal(t, "/usr/bin/chromium", cfg.ExecPath)
	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
	assert.True(t, cfg.NoSandbox)
}

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(nil)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultScale, r.config.Scale)
	assert.NotNil(t, r.allocCtx)
}

func TestBuildPrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Scale: 1.0}}

	t.Run("A4 portrait", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultPageMargins(),
		})
		assert.InDelta(t, mmToInches(210), params.paperWidth, 0.01)
		assert.InDelta(t, mmToInches(297), params.paperHeight, 0.01)
		assert.InDelta(t, mmToInches(15), params.marginTop, 0.01)
		assert.False(t, params.landscape)
		assert.True(t, params.printBackground)
		assert.False(t, params.displayHeaderFooter)
	})

	t.Run("landscape", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{PaperSize: printing.PaperSizeA4, Orientation: printing.OrientationLandscape})
		assert.True(t, params.landscape)
	})

	t.Run("footer reserves a bottom margin", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{PaperSize: printing.PaperSizeA5, FooterHTML: FooterTemplate})
		assert.True(t, params.displayHeaderFooter)
		assert.Equal(t, FooterTemplate, params.footerTemplate)
		assert.Equal(t, "<span></span>", params.headerTemplate)
		assert.InDelta(t, mmToInches(10), params.marginBottom, 0.01)
	})
}

func TestBuildCompleteHTML(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}

	t.Run("keeps complete documents", func(t *testing.T) {
		html := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, html, r.buildCompleteHTML(&RenderRequest{HTML: html}))
	})

	t.Run("wraps fragments", func(t *testing.T) {
		out := r.buildCompleteHTML(&RenderRequest{HTML: "<p>x</p>", Title: "A & B"})
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
		assert.Contains(t, out, "<title>A &amp; B</title>")
		assert.Contains(t, out, "<body><p>x</p></body>")
	})
}

func TestChromedpRenderer_RenderValidation(t *testing.T) {
	r := NewChromedpRenderer(nil)
	defer r.Close()
	ctx := context.Background()

	_, err := r.Render(ctx, nil)
	assert.ErrorContains(t, err, "render request is nil")

	_, err = r.Render(ctx, &RenderRequest{HTML: "  ", PaperSize: printing.PaperSizeA4})
	assert.ErrorContains(t, err, "HTML content is empty")

	_, err = r.Render(ctx, &RenderRequest{HTML: "<p>x</p>", PaperSize: "B7"})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidPaperSize, renderErr.Code)
}

func TestChromedpRenderer_Render(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chrome rendering in short mode")
	}
	path := ""
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "chrome"} {
		if p, err := exec.LookPath(name); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		t.Skip("chrome not installed")
	}

	r := NewChromedpRenderer(&ChromedpConfig{ExecPath: path, NoSandbox: true})
	defer r.Close()

	result, err := r.Render(context.Background(), &RenderRequest{
		HTML:      "<h1>Calculation</h1>",
		PaperSize: printing.PaperSizeA4,
		Margins:   printing.DefaultPageMargins(),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(result.PDFData), "%PDF"))
	assert.Equal(t, 1, result.PageCount)
}

func TestChromedpRenderer_Close(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}
	assert.NoError(t, r.Close())
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF")))
	assert.Equal(t, 2, estimatePageCount([]byte("/Type /Pages /Type /Page /Type /Page")))
}
