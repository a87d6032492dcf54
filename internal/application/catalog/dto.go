package catalog

import (
	"time"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter holds the paging and search options shared by the catalog lists
type ListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search     string     `form:"search"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	GroupID    *uuid.UUID `form:"group_id"`
	CategoryID *uuid.UUID `form:"category_id"`
}

func (f ListFilter) toDomainFilter(defaultOrder string) shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = defaultOrder
		filter.OrderDir = "asc"
	}
	if f.GroupID != nil {
		filter.Filters["group_id"] = *f.GroupID
	}
	if f.CategoryID != nil {
		filter.Filters["category_id"] = *f.CategoryID
	}
	return filter
}

// MarginRequest is one range of a group margin table
type MarginRequest struct {
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
	Margin  decimal.Decimal `json:"margin"`
}

// GroupRequest represents a request to create or edit a group
type GroupRequest struct {
	Code        string          `json:"code" binding:"required,min=1,max=30"`
	Description string          `json:"description" binding:"max=255"`
	Margins     []MarginRequest `json:"margins" binding:"omitempty,dive"`
}

// MarginResponse is one range of a group margin table
type MarginResponse struct {
	ID      uuid.UUID       `json:"id"`
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
	Margin  decimal.Decimal `json:"margin"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uuid.UUID        `json:"id"`
	Code        string           `json:"code"`
	Description string           `json:"description"`
	Margins     []MarginResponse `json:"margins"`
	Categories  int64            `json:"categories"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ToGroupResponse converts a domain Group to GroupResponse
func ToGroupResponse(g *catalog.Group) GroupResponse {
	margins := make([]MarginResponse, len(g.Margins))
	for i, m := range g.Margins {
		margins[i] = MarginResponse{ID: m.ID, Minimum: m.Minimum, Maximum: m.Maximum, Margin: m.Margin}
	}
	return GroupResponse{
		ID:          g.ID,
		Code:        g.Code,
		Description: g.Description,
		Margins:     margins,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// CategoryRequest represents a request to create or edit a category
type CategoryRequest struct {
	Code        string    `json:"code" binding:"required,min=1,max=30"`
	Description string    `json:"description" binding:"max=255"`
	GroupID     uuid.UUID `json:"group_id" binding:"required"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	GroupID     uuid.UUID `json:"group_id"`
	GroupCode   string    `json:"group_code"`
	References  int64     `json:"references"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Code:        c.Code,
		Description: c.Description,
		GroupID:     c.GroupID,
		GroupCode:   c.GroupCode,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ProductRequest represents a request to create or edit a product
type ProductRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=255"`
	Unit        string          `json:"unit" binding:"max=15"`
	Price       decimal.Decimal `json:"price"`
	Supplier    string          `json:"supplier" binding:"max=255"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Supplier     string          `json:"supplier"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryCode string          `json:"category_code"`
	GroupCode    string          `json:"group_code"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Description:  p.Description,
		Unit:         p.Unit,
		Price:        p.Price,
		Supplier:     p.Supplier,
		CategoryID:   p.CategoryID,
		CategoryCode: p.CategoryCode,
		GroupCode:    p.GroupCode,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// TaskItemMarginRequest is one quantity range of a task item
type TaskItemMarginRequest struct {
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
	Value   decimal.Decimal `json:"value"`
}

// TaskItemRequest is one item of a task
type TaskItemRequest struct {
	Name    string                  `json:"name" binding:"required,max=255"`
	Margins []TaskItemMarginRequest `json:"margins" binding:"omitempty,dive"`
}

// TaskRequest represents a request to create or edit a task
type TaskRequest struct {
	Name       string            `json:"name" binding:"required,min=1,max=255"`
	Unit       string            `json:"unit" binding:"max=15"`
	Supplier   string            `json:"supplier" binding:"max=255"`
	CategoryID uuid.UUID         `json:"category_id" binding:"required"`
	Items      []TaskItemRequest `json:"items" binding:"omitempty,dive"`
}

// TaskItemMarginResponse is one quantity range of a task item
type TaskItemMarginResponse struct {
	ID      uuid.UUID       `json:"id"`
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
	Value   decimal.Decimal `json:"value"`
}

// TaskItemResponse is one item of a task
type TaskItemResponse struct {
	ID       uuid.UUID                `json:"id"`
	Name     string                   `json:"name"`
	Position int                      `json:"position"`
	Margins  []TaskItemMarginResponse `json:"margins"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Unit         string             `json:"unit"`
	Supplier     string             `json:"supplier"`
	CategoryID   uuid.UUID          `json:"category_id"`
	CategoryCode string             `json:"category_code"`
	GroupCode    string             `json:"group_code"`
	Items        []TaskItemResponse `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ToTaskResponse converts a domain Task to TaskResponse
func ToTaskResponse(t *catalog.Task) TaskResponse {
	items := make([]TaskItemResponse, len(t.Items))
	for i, item := range t.Items {
		margins := make([]TaskItemMarginResponse, len(item.Margins))
		for j, m := range item.Margins {
			margins[j] = TaskItemMarginResponse{ID: m.ID, Minimum: m.Minimum, Maximum: m.Maximum, Value: m.Value}
		}
		items[i] = TaskItemResponse{ID: item.ID, Name: item.Name, Position: item.Position, Margins: margins}
	}
	return TaskResponse{
		ID:           t.ID,
		Name:         t.Name,
		Unit:         t.Unit,
		Supplier:     t.Supplier,
		CategoryID:   t.CategoryID,
		CategoryCode: t.CategoryCode,
		GroupCode:    t.GroupCode,
		Items:        items,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// TaskComputeRequest selects the quantity and the items to price
type TaskComputeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	ItemIDs  []uuid.UUID     `json:"item_ids"`
}

// TaskComputeItemResponse is the value of one task item
type TaskComputeItemResponse struct {
	ItemID uuid.UUID       `json:"item_id"`
	Name   string          `json:"name"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

// TaskComputeResponse is the outcome of a task computation
type TaskComputeResponse struct {
	TaskID     uuid.UUID                 `json:"task_id"`
	Name       string                    `json:"name"`
	Unit       string                    `json:"unit"`
	CategoryID uuid.UUID                 `json:"category_id"`
	Quantity   decimal.Decimal           `json:"quantity"`
	Items      []TaskComputeItemResponse `json:"items"`
	Overall    decimal.Decimal           `json:"overall"`
}

// ToTaskComputeResponse converts a task computation to TaskComputeResponse
func ToTaskComputeResponse(t *catalog.Task, result *catalog.TaskComputeResult) TaskComputeResponse {
	items := make([]TaskComputeItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = TaskComputeItemResponse{ItemID: item.ItemID, Name: item.Name, Value: item.Value, Amount: item.Amount}
	}
	return TaskComputeResponse{
		TaskID:     t.ID,
		Name:       t.Name,
		Unit:       t.Unit,
		CategoryID: t.CategoryID,
		Quantity:   result.Quantity,
		Items:      items,
		Overall:    result.Overall,
	}
}
