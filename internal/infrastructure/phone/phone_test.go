package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer("CH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"national format", "044 668 18 00", "+41446681800"},
		{"international format", "+41 44 668 18 00", "+41446681800"},
		{"other region with prefix", "+33 1 42 68 53 00", "+33142685300"},
		{"empty stays empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("rejects letters", func(t *testing.T) {
		_, err := n.Normalize("call me")
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})

	t.Run("rejects a number too short for the region", func(t *testing.T) {
		_, err := n.Normalize("123")
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})
}

func TestNormalizer_Display(t *testing.T) {
	n := NewNormalizer("")
	assert.Equal(t, "+41 44 668 18 00", n.Display("+41446681800"))
	assert.Equal(t, "", n.Display(""))
}
