package margin

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewRange(t *testing.T) {
	t.Run("creates range with valid bounds", func(t *testing.T) {
		r, err := NewRange(dec("0"), dec("100"))
		require.NoError(t, err)
		assert.True(t, r.Minimum.Equal(dec("0")))
		assert.True(t, r.Maximum.Equal(dec("100")))
		assert.True(t, r.Delta().Equal(dec("100")))
	})

	t.Run("fails with negative minimum", func(t *testing.T) {
		_, err := NewRange(dec("-1"), dec("100"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Minimum cannot be negative")
	})

	t.Run("fails when maximum equals minimum", func(t *testing.T) {
		_, err := NewRange(dec("10"), dec("10"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Maximum must be greater")
	})
}

func TestRange_Contains(t *testing.T) {
	r := Range{Minimum: dec("100"), Maximum: dec("200")}

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"below minimum", "99.99", false},
		{"minimum is inclusive", "100", true},
		{"inside", "150", true},
		{"maximum is exclusive", "200", false},
		{"above maximum", "250", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(dec(tt.value)))
		})
	}
}

func TestRange_Overlaps(t *testing.T) {
	base := Range{Minimum: dec("0"), Maximum: dec("100")}

	assert.False(t, base.Overlaps(Range{Minimum: dec("100"), Maximum: dec("200")}), "adjacent ranges do not overlap")
	assert.True(t, base.Overlaps(Range{Minimum: dec("99"), Maximum: dec("200")}))
	assert.True(t, base.Overlaps(Range{Minimum: dec("10"), Maximum: dec("20")}))
	assert.False(t, base.Overlaps(Range{Minimum: dec("300"), Maximum: dec("400")}))
}

func TestValidateRanges(t *testing.T) {
	t.Run("accepts contiguous ranges in any order", func(t *testing.T) {
		ranges := []Range{
			{Minimum: dec("100"), Maximum: dec("200")},
			{Minimum: dec("0"), Maximum: dec("100")},
			{Minimum: dec("200"), Maximum: dec("1000")},
		}
		assert.NoError(t, ValidateRanges(ranges))
	})

	t.Run("accepts gaps between ranges", func(t *testing.T) {
		ranges := []Range{
			{Minimum: dec("0"), Maximum: dec("100")},
			{Minimum: dec("500"), Maximum: dec("1000")},
		}
		assert.NoError(t, ValidateRanges(ranges))
	})

	t.Run("reports the index of the overlapping range", func(t *testing.T) {
		ranges := []Range{
			{Minimum: dec("0"), Maximum: dec("100")},
			{Minimum: dec("200"), Maximum: dec("300")},
			{Minimum: dec("50"), Maximum: dec("150")},
		}
		err := ValidateRanges(ranges)
		require.Error(t, err)

		var overlap *OverlapError
		require.True(t, errors.As(err, &overlap))
		assert.Equal(t, 2, overlap.Index)
		assert.True(t, errors.Is(err, ErrRangeOverlap))
	})

	t.Run("rejects an invalid range", func(t *testing.T) {
		ranges := []Range{{Minimum: dec("10"), Maximum: dec("5")}}
		assert.Error(t, ValidateRanges(ranges))
	})

	t.Run("accepts empty input", func(t *testing.T) {
		assert.NoError(t, ValidateRanges([]Range{}))
	})
}

func TestFind(t *testing.T) {
	margins := []GlobalMargin{
		{Range: Range{Minimum: dec("0"), Maximum: dec("1000")}, Margin: dec("1.5")},
		{Range: Range{Minimum: dec("1000"), Maximum: dec("5000")}, Margin: dec("1.2")},
	}

	t.Run("finds the matching margin", func(t *testing.T) {
		gm, ok := Find(margins, dec("1000"))
		require.True(t, ok)
		assert.True(t, gm.Margin.Equal(dec("1.2")))
	})

	t.Run("returns false when nothing matches", func(t *testing.T) {
		_, ok := Find(margins, dec("5000"))
		assert.False(t, ok)
	})
}

func TestSortRanges(t *testing.T) {
	ranges := []Range{
		{Minimum: dec("200"), Maximum: dec("300")},
		{Minimum: dec("0"), Maximum: dec("100")},
	}
	SortRanges(ranges)
	assert.True(t, ranges[0].Minimum.IsZero())
}
