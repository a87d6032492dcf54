package models

import (
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupModel is the persistence model for the Group aggregate
type GroupModel struct {
	AggregateModel
	Code        string             `gorm:"type:varchar(30);not null;uniqueIndex"`
	Description string             `gorm:"type:varchar(255)"`
	Margins     []GroupMarginModel `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (GroupModel) TableName() string {
	return "sy_group"
}

// GroupMarginModel is a margin range of a group
type GroupMarginModel struct {
	ID      uuid.UUID       `gorm:"type:char(36);primaryKey"`
	GroupID uuid.UUID       `gorm:"type:char(36);not null;index"`
	Minimum decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Maximum decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Margin  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (GroupMarginModel) TableName() string {
	return "sy_group_margin"
}

// ToDomain converts the persistence model to a domain Group
func (m *GroupModel) ToDomain() *catalog.Group {
	g := &catalog.Group{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Description:       m.Description,
		Margins:           make([]catalog.GroupMargin, len(m.Margins)),
	}
	for i, gm := range m.Margins {
		g.Margins[i] = catalog.GroupMargin{
			ID:     gm.ID,
			Range:  margin.Range{Minimum: gm.Minimum, Maximum: gm.Maximum},
			Margin: gm.Margin,
		}
	}
	return g
}

// FromDomain populates the persistence model from a domain Group
func (m *GroupModel) FromDomain(g *catalog.Group) {
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	m.Code = g.Code
	m.Description = g.Description
	m.Margins = make([]GroupMarginModel, len(g.Margins))
	for i, gm := range g.Margins {
		m.Margins[i] = GroupMarginModel{
			ID:      ensureID(gm.ID),
			GroupID: g.ID,
			Minimum: gm.Minimum,
			Maximum: gm.Maximum,
			Margin:  gm.Margin,
		}
	}
}

// GroupModelFromDomain creates a new persistence model from a domain Group
func GroupModelFromDomain(g *catalog.Group) *GroupModel {
	m := &GroupModel{}
	m.FromDomain(g)
	return m
}

// CategoryModel is the persistence model for the Category aggregate
type CategoryModel struct {
	AggregateModel
	Code        string      `gorm:"type:varchar(30);not null;uniqueIndex"`
	Description string      `gorm:"type:varchar(255)"`
	GroupID     uuid.UUID   `gorm:"type:char(36);not null;index"`
	Group       *GroupModel `gorm:"foreignKey:GroupID"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "sy_category"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	c := &catalog.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Description:       m.Description,
		GroupID:           m.GroupID,
	}
	if m.Group != nil {
		c.GroupCode = m.Group.Code
	}
	return c
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Description = c.Description
	m.GroupID = c.GroupID
}

// CategoryModelFromDomain creates a new persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Description string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Unit        string          `gorm:"type:varchar(15)"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Supplier    string          `gorm:"type:varchar(255)"`
	CategoryID  uuid.UUID       `gorm:"type:char(36);not null;index"`
	Category    *CategoryModel  `gorm:"foreignKey:CategoryID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "sy_product"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Description:       m.Description,
		Unit:              m.Unit,
		Price:             m.Price,
		Supplier:          m.Supplier,
		CategoryID:        m.CategoryID,
	}
	if m.Category != nil {
		p.CategoryCode = m.Category.Code
		if m.Category.Group != nil {
			p.GroupCode = m.Category.Group.Code
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Description = p.Description
	m.Unit = p.Unit
	m.Price = p.Price
	m.Supplier = p.Supplier
	m.CategoryID = p.CategoryID
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// TaskModel is the persistence model for the Task aggregate
type TaskModel struct {
	AggregateModel
	Name       string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Unit       string          `gorm:"type:varchar(15)"`
	Supplier   string          `gorm:"type:varchar(255)"`
	CategoryID uuid.UUID       `gorm:"type:char(36);not null;index"`
	Category   *CategoryModel  `gorm:"foreignKey:CategoryID"`
	Items      []TaskItemModel `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "sy_task"
}

// TaskItemModel is a priced line of a task
type TaskItemModel struct {
	ID       uuid.UUID             `gorm:"type:char(36);primaryKey"`
	TaskID   uuid.UUID             `gorm:"type:char(36);not null;index"`
	Name     string                `gorm:"type:varchar(255);not null"`
	Position int                   `gorm:"not null;default:0"`
	Margins  []TaskItemMarginModel `gorm:"foreignKey:TaskItemID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TaskItemModel) TableName() string {
	return "sy_task_item"
}

// TaskItemMarginModel is a quantity range of a task item.
// TaskID is denormalized so that all margins of a task can be replaced at once.
type TaskItemMarginModel struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey"`
	TaskID     uuid.UUID       `gorm:"type:char(36);not null;index"`
	TaskItemID uuid.UUID       `gorm:"type:char(36);not null;index"`
	Minimum    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Maximum    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Value      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (TaskItemMarginModel) TableName() string {
	return "sy_task_item_margin"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *catalog.Task {
	t := &catalog.Task{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Unit:              m.Unit,
		Supplier:          m.Supplier,
		CategoryID:        m.CategoryID,
		Items:             make([]catalog.TaskItem, len(m.Items)),
	}
	if m.Category != nil {
		t.CategoryCode = m.Category.Code
		if m.Category.Group != nil {
			t.GroupCode = m.Category.Group.Code
		}
	}
	for i, item := range m.Items {
		ti := catalog.TaskItem{
			ID:       item.ID,
			Name:     item.Name,
			Position: item.Position,
			Margins:  make([]catalog.TaskItemMargin, len(item.Margins)),
		}
		for j, tm := range item.Margins {
			ti.Margins[j] = catalog.TaskItemMargin{
				ID:    tm.ID,
				Range: margin.Range{Minimum: tm.Minimum, Maximum: tm.Maximum},
				Value: tm.Value,
			}
		}
		t.Items[i] = ti
	}
	return t
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *catalog.Task) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Unit = t.Unit
	m.Supplier = t.Supplier
	m.CategoryID = t.CategoryID
	m.Items = make([]TaskItemModel, len(t.Items))
	for i, item := range t.Items {
		itemID := ensureID(item.ID)
		ti := TaskItemModel{
			ID:       itemID,
			TaskID:   t.ID,
			Name:     item.Name,
			Position: item.Position,
			Margins:  make([]TaskItemMarginModel, len(item.Margins)),
		}
		for j, tm := range item.Margins {
			ti.Margins[j] = TaskItemMarginModel{
				ID:         ensureID(tm.ID),
				TaskID:     t.ID,
				TaskItemID: itemID,
				Minimum:    tm.Minimum,
				Maximum:    tm.Maximum,
				Value:      tm.Value,
			}
		}
		m.Items[i] = ti
	}
}

// TaskModelFromDomain creates a new persistence model from a domain Task
func TaskModelFromDomain(t *catalog.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}
