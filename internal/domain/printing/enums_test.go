package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		ok       bool
	}{
		{"pdf", FormatPDF, true},
		{"PDF", FormatPDF, true},
		{"docx", FormatDoc, true},
		{"word", FormatDoc, true},
		{"doc", FormatDoc, true},
		{"xlsx", FormatXLSX, true},
		{"csv", FormatCSV, true},
		{"odt", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseFormat(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "application/msword", FormatDoc.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Equal(t, "application/octet-stream", Format("odt").ContentType())

	for _, f := range AllFormats() {
		assert.True(t, f.IsValid())
		assert.Equal(t, string(f), f.Extension())
	}
}

func TestPaperSize_Dimensions(t *testing.T) {
	tests := []struct {
		size   PaperSize
		width  int
		height int
	}{
		{PaperSizeA4, 210, 297},
		{PaperSizeA5, 148, 210},
		{PaperSizeLetter, 216, 279},
		{PaperSize("unknown"), 210, 297},
	}

	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			w, h := tt.size.Dimensions()
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
	assert.False(t, PaperSize("B5").IsValid())
	assert.True(t, OrientationLandscape.IsValid())
	assert.False(t, Orientation("DIAGONAL").IsValid())
}
