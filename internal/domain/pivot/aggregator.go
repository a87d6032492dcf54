// Package pivot aggregates flat records into a two dimensional table with
// row, column and grand totals.
package pivot

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Aggregator names
const (
	AggregatorSum     = "sum"
	AggregatorCount   = "count"
	AggregatorAverage = "average"
)

// Aggregator accumulates values of one cell
type Aggregator interface {
	Add(value decimal.Decimal)
	Result() decimal.Decimal
	Reset()
	Clone() Aggregator
	Name() string
}

// NewAggregator returns the aggregator with the given name
func NewAggregator(name string) (Aggregator, error) {
	switch name {
	case AggregatorSum, "":
		return &SumAggregator{}, nil
	case AggregatorCount:
		return &CountAggregator{}, nil
	case AggregatorAverage:
		return &AverageAggregator{}, nil
	default:
		return nil, fmt.Errorf("pivot: unknown aggregator %q", name)
	}
}

// SumAggregator sums the values
type SumAggregator struct {
	sum decimal.Decimal
}

func (a *SumAggregator) Add(value decimal.Decimal) { a.sum = a.sum.Add(value) }
func (a *SumAggregator) Result() decimal.Decimal   { return a.sum }
func (a *SumAggregator) Reset()                    { a.sum = decimal.Zero }
func (a *SumAggregator) Clone() Aggregator         { return &SumAggregator{} }
func (a *SumAggregator) Name() string              { return AggregatorSum }

// CountAggregator counts the values
type CountAggregator struct {
	count int64
}

func (a *CountAggregator) Add(decimal.Decimal)     { a.count++ }
func (a *CountAggregator) Result() decimal.Decimal { return decimal.NewFromInt(a.count) }
func (a *CountAggregator) Reset()                  { a.count = 0 }
func (a *CountAggregator) Clone() Aggregator       { return &CountAggregator{} }
func (a *CountAggregator) Name() string            { return AggregatorCount }

// AverageAggregator computes the mean of the values, rounded to 2 decimals.
// The result is zero when no value was added.
type AverageAggregator struct {
	sum   decimal.Decimal
	count int64
}

func (a *AverageAggregator) Add(value decimal.Decimal) {
	a.sum = a.sum.Add(value)
	a.count++
}

func (a *AverageAggregator) Result() decimal.Decimal {
	if a.count == 0 {
		return decimal.Zero
	}
	return a.sum.DivRound(decimal.NewFromInt(a.count), 2)
}

func (a *AverageAggregator) Reset() {
	a.sum = decimal.Zero
	a.count = 0
}

func (a *AverageAggregator) Clone() Aggregator { return &AverageAggregator{} }
func (a *AverageAggregator) Name() string      { return AggregatorAverage }
