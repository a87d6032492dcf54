package models

import (
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationStateModel is the persistence model for the CalculationState entity
type CalculationStateModel struct {
	AggregateModel
	Code        string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(255)"`
	Editable    bool   `gorm:"not null;default:true"`
	Color       string `gorm:"type:varchar(10);not null;default:'#000000'"`
}

// TableName returns the table name for GORM
func (CalculationStateModel) TableName() string {
	return "sy_calculation_state"
}

// ToDomain converts the persistence model to a domain CalculationState
func (m *CalculationStateModel) ToDomain() *calculation.CalculationState {
	return &calculation.CalculationState{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Description:       m.Description,
		Editable:          m.Editable,
		Color:             m.Color,
	}
}

// FromDomain populates the persistence model from a domain CalculationState
func (m *CalculationStateModel) FromDomain(s *calculation.CalculationState) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Description = s.Description
	m.Editable = s.Editable
	m.Color = s.Color
}

// CalculationStateModelFromDomain creates a new persistence model from a domain CalculationState
func CalculationStateModelFromDomain(s *calculation.CalculationState) *CalculationStateModel {
	m := &CalculationStateModel{}
	m.FromDomain(s)
	return m
}

// CalculationModel is the persistence model for the Calculation aggregate
type CalculationModel struct {
	AuditedAggregateModel
	Date         time.Time              `gorm:"type:date;not null;index"`
	Customer     string                 `gorm:"type:varchar(255);not null"`
	Description  string                 `gorm:"type:varchar(255);not null"`
	StateID      uuid.UUID              `gorm:"type:char(36);not null;index"`
	State        *CalculationStateModel `gorm:"foreignKey:StateID"`
	UserMargin   decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	GlobalMargin decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	ItemsTotal   decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	OverallTotal decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Groups       []CalculationGroupModel `gorm:"foreignKey:CalculationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CalculationModel) TableName() string {
	return "sy_calculation"
}

// CalculationGroupModel is a group line of a calculation
type CalculationGroupModel struct {
	ID            uuid.UUID                  `gorm:"type:char(36);primaryKey"`
	CalculationID uuid.UUID                  `gorm:"type:char(36);not null;index"`
	GroupID       uuid.UUID                  `gorm:"type:char(36);not null;index"`
	Code          string                     `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal            `gorm:"type:decimal(18,2);not null;default:0"`
	Margin        decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Position      int                        `gorm:"not null;default:0"`
	Categories    []CalculationCategoryModel `gorm:"foreignKey:CalculationGroupID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CalculationGroupModel) TableName() string {
	return "sy_calculation_group"
}

// CalculationCategoryModel is a category line of a calculation group
type CalculationCategoryModel struct {
	ID                 uuid.UUID              `gorm:"type:char(36);primaryKey"`
	CalculationID      uuid.UUID              `gorm:"type:char(36);not null;index"`
	CalculationGroupID uuid.UUID              `gorm:"type:char(36);not null;index"`
	CategoryID         uuid.UUID              `gorm:"type:char(36);not null;index"`
	Code               string                 `gorm:"type:varchar(30);not null"`
	Amount             decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Position           int                    `gorm:"not null;default:0"`
	Items              []CalculationItemModel `gorm:"foreignKey:CalculationCategoryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CalculationCategoryModel) TableName() string {
	return "sy_calculation_category"
}

// CalculationItemModel is an item line of a calculation category
type CalculationItemModel struct {
	ID                    uuid.UUID       `gorm:"type:char(36);primaryKey"`
	CalculationID         uuid.UUID       `gorm:"type:char(36);not null;index"`
	CalculationCategoryID uuid.UUID       `gorm:"type:char(36);not null;index"`
	Description           string          `gorm:"type:varchar(255);not null"`
	Unit                  string          `gorm:"type:varchar(15)"`
	Price                 decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Quantity              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Position              int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CalculationItemModel) TableName() string {
	return "sy_calculation_item"
}

// ToDomain converts the persistence model to a domain Calculation.
// Groups are only mapped when they were preloaded.
func (m *CalculationModel) ToDomain() *calculation.Calculation {
	c := &calculation.Calculation{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		Date:                 m.Date,
		Customer:             m.Customer,
		Description:          m.Description,
		StateID:              m.StateID,
		UserMargin:           m.UserMargin,
		GlobalMargin:         m.GlobalMargin,
		ItemsTotal:           m.ItemsTotal,
		OverallTotal:         m.OverallTotal,
	}
	if m.State != nil {
		c.StateCode = m.State.Code
		c.StateEditable = m.State.Editable
		c.StateColor = m.State.Color
	}
	if len(m.Groups) > 0 {
		c.Groups = make([]calculation.CalculationGroup, len(m.Groups))
		for i, g := range m.Groups {
			c.Groups[i] = g.toDomain()
		}
	}
	return c
}

func (g *CalculationGroupModel) toDomain() calculation.CalculationGroup {
	group := calculation.CalculationGroup{
		ID:       g.ID,
		GroupID:  g.GroupID,
		Code:     g.Code,
		Amount:   g.Amount,
		Margin:   g.Margin,
		Position: g.Position,
	}
	group.Categories = make([]calculation.CalculationCategory, len(g.Categories))
	for i, cat := range g.Categories {
		category := calculation.CalculationCategory{
			ID:         cat.ID,
			CategoryID: cat.CategoryID,
			Code:       cat.Code,
			Amount:     cat.Amount,
			Position:   cat.Position,
			Items:      make([]calculation.CalculationItem, len(cat.Items)),
		}
		for j, item := range cat.Items {
			category.Items[j] = calculation.CalculationItem{
				ID:          item.ID,
				Description: item.Description,
				Unit:        item.Unit,
				Price:       item.Price,
				Quantity:    item.Quantity,
				Position:    item.Position,
			}
		}
		group.Categories[i] = category
	}
	return group
}

// FromDomain populates the persistence model from a domain Calculation.
// Missing child IDs are generated.
func (m *CalculationModel) FromDomain(c *calculation.Calculation) {
	m.FromDomainAuditedAggregateRoot(c.AuditedAggregateRoot)
	m.Date = c.Date
	m.Customer = c.Customer
	m.Description = c.Description
	m.StateID = c.StateID
	m.UserMargin = c.UserMargin
	m.GlobalMargin = c.GlobalMargin
	m.ItemsTotal = c.ItemsTotal
	m.OverallTotal = c.OverallTotal

	m.Groups = make([]CalculationGroupModel, len(c.Groups))
	for i, g := range c.Groups {
		groupID := ensureID(g.ID)
		group := CalculationGroupModel{
			ID:            groupID,
			CalculationID: c.ID,
			GroupID:       g.GroupID,
			Code:          g.Code,
			Amount:        g.Amount,
			Margin:        g.Margin,
			Position:      g.Position,
			Categories:    make([]CalculationCategoryModel, len(g.Categories)),
		}
		for j, cat := range g.Categories {
			categoryID := ensureID(cat.ID)
			category := CalculationCategoryModel{
				ID:                 categoryID,
				CalculationID:      c.ID,
				CalculationGroupID: groupID,
				CategoryID:         cat.CategoryID,
				Code:               cat.Code,
				Amount:             cat.Amount,
				Position:           cat.Position,
				Items:              make([]CalculationItemModel, len(cat.Items)),
			}
			for k, item := range cat.Items {
				category.Items[k] = CalculationItemModel{
					ID:                    ensureID(item.ID),
					CalculationID:         c.ID,
					CalculationCategoryID: categoryID,
					Description:           item.Description,
					Unit:                  item.Unit,
					Price:                 item.Price,
					Quantity:              item.Quantity,
					Position:              item.Position,
				}
			}
			group.Categories[j] = category
		}
		m.Groups[i] = group
	}
}

// CalculationModelFromDomain creates a new persistence model from a domain Calculation
func CalculationModelFromDomain(c *calculation.Calculation) *CalculationModel {
	m := &CalculationModel{}
	m.FromDomain(c)
	return m
}

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
