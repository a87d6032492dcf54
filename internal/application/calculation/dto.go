package calculation

import (
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListCalculationsFilter represents the filter options of the calculation list
type ListCalculationsFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	StateID  *uuid.UUID
	Editable *bool
	DateFrom *time.Time
	DateTo   *time.Time
}

// ItemRequest represents an item of a calculation
type ItemRequest struct {
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	Description string          `json:"description" binding:"required,min=1,max=255"`
	Unit        string          `json:"unit" binding:"max=15"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// SaveCalculationRequest represents a request to create or edit a calculation.
// Items replace the existing items.
type SaveCalculationRequest struct {
	Date        time.Time       `json:"date"`
	Customer    string          `json:"customer" binding:"required,min=1,max=255"`
	Description string          `json:"description" binding:"required,min=1,max=255"`
	StateID     *uuid.UUID      `json:"state_id"`
	UserMargin  decimal.Decimal `json:"user_margin"`
	Items       []ItemRequest   `json:"items" binding:"dive"`
}

// DuplicateRequest represents a request to copy a calculation
type DuplicateRequest struct {
	Description string `json:"description" binding:"max=255"`
}

// ChangeStateRequest represents a request to move a calculation to another state
type ChangeStateRequest struct {
	StateID uuid.UUID `json:"state_id" binding:"required"`
}

// CalculationQuery is the payload of the totals preview. With Adjust the user
// margin is raised to the lowest value reaching the minimum margin.
type CalculationQuery struct {
	Adjust     bool            `json:"adjust"`
	UserMargin decimal.Decimal `json:"user_margin"`
	Items      []ItemRequest   `json:"items" binding:"dive"`
}

// UpdateQuery represents the options of the bulk totals update
type UpdateQuery struct {
	DryRun         bool       `json:"dry_run" form:"dry_run"`
	Since          *time.Time `json:"since" form:"since" time_format:"2006-01-02"`
	EmptyItems     bool       `json:"empty_items" form:"empty_items"`
	DuplicateItems bool       `json:"duplicate_items" form:"duplicate_items"`
	Sort           bool       `json:"sort" form:"sort"`
}

// ArchiveQuery represents the options of the archive job
type ArchiveQuery struct {
	Before         time.Time   `json:"before" form:"before" time_format:"2006-01-02"`
	TargetStateID  uuid.UUID   `json:"target_state_id" form:"target_state_id" binding:"required"`
	SourceStateIDs []uuid.UUID `json:"source_state_ids" form:"source_state_ids"`
	DryRun         bool        `json:"dry_run" form:"dry_run"`
}

// CalculationListResponse represents a list item for calculations
type CalculationListResponse struct {
	ID            uuid.UUID       `json:"id"`
	Date          time.Time       `json:"date"`
	Customer      string          `json:"customer"`
	Description   string          `json:"description"`
	StateID       uuid.UUID       `json:"state_id"`
	StateCode     string          `json:"state_code"`
	StateColor    string          `json:"state_color"`
	Editable      bool            `json:"editable"`
	ItemsTotal    decimal.Decimal `json:"items_total"`
	OverallTotal  decimal.Decimal `json:"overall_total"`
	OverallMargin decimal.Decimal `json:"overall_margin"`
	BelowMargin   bool            `json:"below_margin"`
	CreatedBy     string          `json:"created_by"`
	UpdatedBy     string          `json:"updated_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ItemResponse represents a calculation item in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	Empty       bool            `json:"empty"`
}

// CategoryResponse represents a calculation category in API responses
type CategoryResponse struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Code       string          `json:"code"`
	Amount     decimal.Decimal `json:"amount"`
	Items      []ItemResponse  `json:"items"`
}

// GroupResponse represents a calculation group in API responses
type GroupResponse struct {
	ID         uuid.UUID          `json:"id"`
	GroupID    uuid.UUID          `json:"group_id"`
	Code       string             `json:"code"`
	Amount     decimal.Decimal    `json:"amount"`
	Margin     decimal.Decimal    `json:"margin"`
	Total      decimal.Decimal    `json:"total"`
	Categories []CategoryResponse `json:"categories"`
}

// CalculationResponse represents a calculation with its items in API responses
type CalculationResponse struct {
	CalculationListResponse
	UserMargin   decimal.Decimal        `json:"user_margin"`
	GlobalMargin decimal.Decimal        `json:"global_margin"`
	Groups       []GroupResponse        `json:"groups"`
	Totals       []calculation.TotalRow `json:"totals,omitempty"`
	Version      int                    `json:"version"`
}

// TotalsResponse represents computed totals
type TotalsResponse struct {
	Totals     *calculation.Totals    `json:"totals"`
	Rows       []calculation.TotalRow `json:"rows"`
	UserMargin decimal.Decimal        `json:"user_margin"`
	Adjusted   bool                   `json:"adjusted"`
}

// ItemLineResponse represents an item located in a calculation
type ItemLineResponse struct {
	GroupCode    string          `json:"group_code"`
	CategoryCode string          `json:"category_code"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
}

// CalculationItemsResponse represents a calculation with a subset of its items,
// used by the empty and duplicate item reports
type CalculationItemsResponse struct {
	ID          uuid.UUID          `json:"id"`
	Date        time.Time          `json:"date"`
	Customer    string             `json:"customer"`
	Description string             `json:"description"`
	StateCode   string             `json:"state_code"`
	StateColor  string             `json:"state_color"`
	Items       []ItemLineResponse `json:"items"`
}

// UpdateChange describes a calculation modified by the bulk update
type UpdateChange struct {
	ID           uuid.UUID       `json:"id"`
	Customer     string          `json:"customer"`
	Description  string          `json:"description"`
	OldTotal     decimal.Decimal `json:"old_total"`
	NewTotal     decimal.Decimal `json:"new_total"`
	RemovedItems int             `json:"removed_items"`
}

// UpdateResult summarizes the bulk update
type UpdateResult struct {
	Total    int            `json:"total"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	DryRun   bool           `json:"dry_run"`
	Duration time.Duration  `json:"duration"`
	Changes  []UpdateChange `json:"changes"`
}

// ArchiveResult summarizes the archive job
type ArchiveResult struct {
	Before      time.Time   `json:"before"`
	TargetState string      `json:"target_state"`
	Count       int64       `json:"count"`
	DryRun      bool        `json:"dry_run"`
	IDs         []uuid.UUID `json:"ids"`
}

// ToCalculationListResponse converts a domain Calculation to CalculationListResponse
func ToCalculationListResponse(c *calculation.Calculation, minMargin decimal.Decimal) CalculationListResponse {
	return CalculationListResponse{
		ID:            c.ID,
		Date:          c.Date,
		Customer:      c.Customer,
		Description:   c.Description,
		StateID:       c.StateID,
		StateCode:     c.StateCode,
		StateColor:    c.StateColor,
		Editable:      c.IsEditable(),
		ItemsTotal:    c.ItemsTotal,
		OverallTotal:  c.OverallTotal,
		OverallMargin: c.OverallMargin(),
		BelowMargin:   c.IsBelowMargin(minMargin),
		CreatedBy:     c.CreatedBy,
		UpdatedBy:     c.UpdatedBy,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToCalculationListResponses converts a slice of calculations
func ToCalculationListResponses(calcs []calculation.Calculation, minMargin decimal.Decimal) []CalculationListResponse {
	responses := make([]CalculationListResponse, len(calcs))
	for i := range calcs {
		responses[i] = ToCalculationListResponse(&calcs[i], minMargin)
	}
	return responses
}

// ToCalculationResponse converts a domain Calculation to CalculationResponse
func ToCalculationResponse(c *calculation.Calculation, minMargin decimal.Decimal, totals *calculation.Totals) CalculationResponse {
	groups := make([]GroupResponse, 0, len(c.Groups))
	for gi := range c.Groups {
		g := &c.Groups[gi]
		categories := make([]CategoryResponse, 0, len(g.Categories))
		for _, cat := range g.Categories {
			items := make([]ItemResponse, 0, len(cat.Items))
			for _, item := range cat.Items {
				items = append(items, ItemResponse{
					ID:          item.ID,
					Description: item.Description,
					Unit:        item.Unit,
					Price:       item.Price,
					Quantity:    item.Quantity,
					Total:       item.Total(),
					Empty:       item.IsEmpty(),
				})
			}
			categories = append(categories, CategoryResponse{
				ID:         cat.ID,
				CategoryID: cat.CategoryID,
				Code:       cat.Code,
				Amount:     cat.Amount,
				Items:      items,
			})
		}
		groups = append(groups, GroupResponse{
			ID:         g.ID,
			GroupID:    g.GroupID,
			Code:       g.Code,
			Amount:     g.Amount,
			Margin:     g.Margin,
			Total:      g.Total(),
			Categories: categories,
		})
	}

	response := CalculationResponse{
		CalculationListResponse: ToCalculationListResponse(c, minMargin),
		UserMargin:              c.UserMargin,
		GlobalMargin:            c.GlobalMargin,
		Groups:                  groups,
		Version:                 c.Version,
	}
	if totals != nil {
		response.Totals = totals.Rows()
	}
	return response
}

// ToCalculationItemsResponse converts a calculation and some of its items
func ToCalculationItemsResponse(c *calculation.Calculation, refs []calculation.ItemRef) CalculationItemsResponse {
	items := make([]ItemLineResponse, 0, len(refs))
	for _, ref := range refs {
		items = append(items, ItemLineResponse{
			GroupCode:    ref.GroupCode,
			CategoryCode: ref.CategoryCode,
			Description:  ref.Item.Description,
			Unit:         ref.Item.Unit,
			Price:        ref.Item.Price,
			Quantity:     ref.Item.Quantity,
			Total:        ref.Item.Total(),
		})
	}
	return CalculationItemsResponse{
		ID:          c.ID,
		Date:        c.Date,
		Customer:    c.Customer,
		Description: c.Description,
		StateCode:   c.StateCode,
		StateColor:  c.StateColor,
		Items:       items,
	}
}

func toTotalsResponse(totals *calculation.Totals, adjusted bool) *TotalsResponse {
	return &TotalsResponse{
		Totals:     totals,
		Rows:       totals.Rows(),
		UserMargin: totals.UserMargin,
		Adjusted:   adjusted,
	}
}
