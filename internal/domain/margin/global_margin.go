package margin

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GlobalMargin is a margin applied to the whole calculation when the total of
// its groups falls within the range.
type GlobalMargin struct {
	shared.BaseAggregateRoot
	Range
	// Margin is a multiplier: 1.10 means the net total is 110% of the groups total.
	Margin decimal.Decimal
}

// NewGlobalMargin creates a new global margin
func NewGlobalMargin(minimum, maximum, margin decimal.Decimal) (*GlobalMargin, error) {
	r, err := NewRange(minimum, maximum)
	if err != nil {
		return nil, err
	}
	if err := validateMargin(margin); err != nil {
		return nil, err
	}

	gm := &GlobalMargin{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Range:             r,
		Margin:            margin,
	}
	gm.AddDomainEvent(NewGlobalMarginChangedEvent(gm))

	return gm, nil
}

// Update changes the range and the margin
func (g *GlobalMargin) Update(minimum, maximum, margin decimal.Decimal) error {
	r, err := NewRange(minimum, maximum)
	if err != nil {
		return err
	}
	if err := validateMargin(margin); err != nil {
		return err
	}

	g.Range = r
	g.Margin = margin
	g.MarkModified()
	g.AddDomainEvent(NewGlobalMarginChangedEvent(g))

	return nil
}

// MarginPercent returns the margin as a percentage (110 for 1.10)
func (g *GlobalMargin) MarginPercent() decimal.Decimal {
	return g.Margin.Mul(decimal.NewFromInt(100))
}

func validateMargin(margin decimal.Decimal) error {
	if margin.IsNegative() {
		return shared.NewDomainError("INVALID_MARGIN", "Margin cannot be negative")
	}
	return nil
}

// ValidateMargin checks a margin multiplier
func ValidateMargin(margin decimal.Decimal) error {
	return validateMargin(margin)
}
