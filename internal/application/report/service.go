package report

import (
	"context"
	"strings"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/pivot"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Record fields of the calculation pivot
const (
	FieldState        = "state"
	FieldDate         = "date"
	FieldItemsTotal   = "items_total"
	FieldOverallTotal = "overall_total"
	FieldMarginAmount = "margin_amount"
)

// DefaultStatsMonths is the period of StatsByMonth when none is given
const DefaultStatsMonths = 6

// PivotQuery selects the pivot table options
type PivotQuery struct {
	Aggregator string     `form:"aggregator" binding:"omitempty,oneof=sum count average"`
	Data       string     `form:"data" binding:"omitempty,oneof=items_total overall_total margin_amount"`
	Columns    string     `form:"columns" binding:"omitempty,oneof=month quarter semester week"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// Normalize applies the defaults
func (q *PivotQuery) Normalize() {
	if q.Aggregator == "" {
		q.Aggregator = pivot.AggregatorSum
	}
	if q.Data == "" {
		q.Data = FieldOverallTotal
	}
	if q.Columns == "" {
		q.Columns = string(pivot.MethodMonth)
	}
}

// MonthStatResponse is one month of the calculation statistics
type MonthStatResponse struct {
	calculation.MonthStat
	Margin decimal.Decimal `json:"margin"`
}

// StateStatResponse is one state of the calculation statistics
type StateStatResponse struct {
	calculation.StateStat
	Margin  decimal.Decimal `json:"margin"`
	Percent decimal.Decimal `json:"percent"`
}

// StatsResponse wraps statistics with their totals
type StatsResponse[T any] struct {
	Items        []T             `json:"items"`
	Count        int64           `json:"count"`
	ItemsTotal   decimal.Decimal `json:"items_total"`
	OverallTotal decimal.Decimal `json:"overall_total"`
	Margin       decimal.Decimal `json:"margin"`
}

// ReportService builds the calculation reports
type ReportService struct {
	calcRepo calculation.CalculationRepository
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(calcRepo calculation.CalculationRepository, logger *zap.Logger) *ReportService {
	return &ReportService{calcRepo: calcRepo, logger: logger}
}

// CalculationPivot aggregates the calculations with the state and the year as rows
// and the month, or another period of the year, as columns
func (s *ReportService) CalculationPivot(ctx context.Context, query PivotQuery) (*pivot.Table, error) {
	query.Normalize()
	aggregator, err := pivot.NewAggregator(query.Aggregator)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AGGREGATOR", err.Error())
	}

	filter := shared.Filter{Filters: make(map[string]interface{})}
	if query.DateFrom != nil {
		filter.Filters["date_from"] = *query.DateFrom
	}
	if query.DateTo != nil {
		filter.Filters["date_to"] = *query.DateTo
	}
	calcs, err := s.calcRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]pivot.Record, len(calcs))
	for i := range calcs {
		records[i] = toRecord(&calcs[i])
	}

	dataField := query.Data
	if query.Aggregator == pivot.AggregatorCount {
		dataField = ""
	}
	table, err := pivot.NewBuilder(aggregator, dataField).
		Rows(
			pivot.NewField(FieldState, "State"),
			pivot.NewField(FieldDate, "Year").WithMethod(pivot.MethodYear),
		).
		Columns(pivot.NewField(FieldDate, strings.ToUpper(query.Columns[:1])+query.Columns[1:]).
			WithMethod(pivot.Method(query.Columns))).
		Build(records)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Calculation pivot built",
		zap.Int("records", len(records)),
		zap.String("aggregator", query.Aggregator),
		zap.String("data", query.Data))
	return table, nil
}

// StatsByMonth returns the totals of the last months, oldest first
func (s *ReportService) StatsByMonth(ctx context.Context, months int) (*StatsResponse[MonthStatResponse], error) {
	if months <= 0 {
		months = DefaultStatsMonths
	}
	now := time.Now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	stats, err := s.calcRepo.StatsByMonth(ctx, since)
	if err != nil {
		return nil, err
	}
	response := &StatsResponse[MonthStatResponse]{Items: make([]MonthStatResponse, len(stats))}
	for i, stat := range stats {
		response.Items[i] = MonthStatResponse{MonthStat: stat, Margin: stat.Margin()}
		response.add(stat.Count, stat.ItemsTotal, stat.OverallTotal)
	}
	response.finish()
	return response, nil
}

// StatsByState returns the totals of each state with its share of the overall total
func (s *ReportService) StatsByState(ctx context.Context) (*StatsResponse[StateStatResponse], error) {
	stats, err := s.calcRepo.StatsByState(ctx)
	if err != nil {
		return nil, err
	}
	response := &StatsResponse[StateStatResponse]{Items: make([]StateStatResponse, len(stats))}
	for i, stat := range stats {
		response.Items[i] = StateStatResponse{StateStat: stat, Margin: stat.Margin()}
		response.add(stat.Count, stat.ItemsTotal, stat.OverallTotal)
	}
	for i := range response.Items {
		if !response.OverallTotal.IsZero() {
			response.Items[i].Percent = response.Items[i].OverallTotal.Div(response.OverallTotal).Round(4)
		}
	}
	response.finish()
	return response, nil
}

func (r *StatsResponse[T]) add(count int64, items, overall decimal.Decimal) {
	r.Count += count
	r.ItemsTotal = r.ItemsTotal.Add(items)
	r.OverallTotal = r.OverallTotal.Add(overall)
}

func (r *StatsResponse[T]) finish() {
	if !r.ItemsTotal.IsZero() {
		r.Margin = r.OverallTotal.Div(r.ItemsTotal).Round(4)
	}
}

func toRecord(c *calculation.Calculation) pivot.Record {
	return pivot.Record{
		FieldState:        c.StateCode,
		FieldDate:         c.Date,
		FieldItemsTotal:   c.ItemsTotal,
		FieldOverallTotal: c.OverallTotal,
		FieldMarginAmount: c.OverallTotal.Sub(c.ItemsTotal),
	}
}
