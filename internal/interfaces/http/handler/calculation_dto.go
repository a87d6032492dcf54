package handler

import (
	"time"

	calcapp "github.com/calculation/backend/internal/application/calculation"
	"github.com/google/uuid"
)

// CalculationListQuery holds the filters of the calculation lists
type CalculationListQuery struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string     `form:"search"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	StateID  string     `form:"state_id" binding:"omitempty,uuid"`
	Editable *bool      `form:"editable"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// Normalize applies the default paging
func (q *CalculationListQuery) Normalize() {
	q.Page, q.PageSize = pageOf(q.Page, q.PageSize)
}

func (q CalculationListQuery) toFilter() calcapp.ListCalculationsFilter {
	filter := calcapp.ListCalculationsFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
		Editable: q.Editable,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
	}
	if q.StateID != "" {
		stateID := uuid.MustParse(q.StateID)
		filter.StateID = &stateID
	}
	return filter
}
