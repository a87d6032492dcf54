package margin

import (
	"fmt"
	"sort"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Range is a half-open interval of amounts or quantities: Minimum <= v < Maximum.
type Range struct {
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
}

// Ranged is implemented by every rule that applies within a range
type Ranged interface {
	GetRange() Range
}

// NewRange creates a validated range
func NewRange(minimum, maximum decimal.Decimal) (Range, error) {
	r := Range{Minimum: minimum, Maximum: maximum}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks the bounds of the range
func (r Range) Validate() error {
	if r.Minimum.IsNegative() {
		return shared.NewDomainError("INVALID_MINIMUM", "Minimum cannot be negative")
	}
	if r.Maximum.LessThanOrEqual(r.Minimum) {
		return shared.NewDomainError("INVALID_MAXIMUM", "Maximum must be greater than minimum")
	}
	return nil
}

// GetRange returns the range itself
func (r Range) GetRange() Range {
	return r
}

// Contains reports whether value falls within the range
func (r Range) Contains(value decimal.Decimal) bool {
	return value.GreaterThanOrEqual(r.Minimum) && value.LessThan(r.Maximum)
}

// Overlaps reports whether both ranges share at least one value
func (r Range) Overlaps(other Range) bool {
	return r.Minimum.LessThan(other.Maximum) && other.Minimum.LessThan(r.Maximum)
}

// Delta returns the width of the range
func (r Range) Delta() decimal.Decimal {
	return r.Maximum.Sub(r.Minimum)
}

// String implements fmt.Stringer
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Minimum.String(), r.Maximum.String())
}

// OverlapError reports the position of a range that overlaps its predecessor
type OverlapError struct {
	Index    int
	Range    Range
	Previous Range
}

// Error implements the error interface
func (e *OverlapError) Error() string {
	return fmt.Sprintf("margin range %d %s overlaps range %s", e.Index, e.Range, e.Previous)
}

// Unwrap lets errors.Is match ErrRangeOverlap
func (e *OverlapError) Unwrap() error {
	return ErrRangeOverlap
}

// ErrRangeOverlap is returned when two margin ranges overlap
var ErrRangeOverlap = shared.NewDomainError("MARGIN_OVERLAP", "Margin ranges must not overlap")

// ValidateRanges validates every range and checks that none of them overlap.
// Index in the returned OverlapError refers to the position in the input slice.
func ValidateRanges[T Ranged](items []T) error {
	type indexed struct {
		index int
		rng   Range
	}
	sorted := make([]indexed, 0, len(items))
	for i, item := range items {
		r := item.GetRange()
		if err := r.Validate(); err != nil {
			return err
		}
		sorted = append(sorted, indexed{index: i, rng: r})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rng.Minimum.LessThan(sorted[j].rng.Minimum)
	})
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if curr.rng.Minimum.LessThan(prev.rng.Maximum) {
			return &OverlapError{Index: curr.index, Range: curr.rng, Previous: prev.rng}
		}
	}
	return nil
}

// Find returns the first rule whose range contains value
func Find[T Ranged](items []T, value decimal.Decimal) (T, bool) {
	for _, item := range items {
		if item.GetRange().Contains(value) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// SortRanges orders the rules by their minimum
func SortRanges[T Ranged](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].GetRange().Minimum.LessThan(items[j].GetRange().Minimum)
	})
}
