package models

import (
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/shopspring/decimal"
)

// GlobalMarginModel is the persistence model for the GlobalMargin aggregate
type GlobalMarginModel struct {
	AggregateModel
	Minimum decimal.Decimal `gorm:"type:decimal(18,2);not null;index"`
	Maximum decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Margin  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (GlobalMarginModel) TableName() string {
	return "sy_global_margin"
}

// ToDomain converts the persistence model to a domain GlobalMargin
func (m *GlobalMarginModel) ToDomain() *margin.GlobalMargin {
	return &margin.GlobalMargin{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Range:             margin.Range{Minimum: m.Minimum, Maximum: m.Maximum},
		Margin:            m.Margin,
	}
}

// FromDomain populates the persistence model from a domain GlobalMargin
func (m *GlobalMarginModel) FromDomain(gm *margin.GlobalMargin) {
	m.FromDomainAggregateRoot(gm.BaseAggregateRoot)
	m.Minimum = gm.Minimum
	m.Maximum = gm.Maximum
	m.Margin = gm.Margin
}

// GlobalMarginModelFromDomain creates a new persistence model from a domain GlobalMargin
func GlobalMarginModelFromDomain(gm *margin.GlobalMargin) *GlobalMarginModel {
	m := &GlobalMarginModel{}
	m.FromDomain(gm)
	return m
}
