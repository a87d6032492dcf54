package handler

import (
	"github.com/calculation/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles the calculation statistics
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *report.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// MonthsQuery selects the number of months of the statistics
type MonthsQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=60"`
}

// Pivot godoc
// @Summary      Calculation pivot table
// @Description  Aggregate the calculations by state and year (rows) and by a period of the year (columns)
// @Tags         reports
// @Produce      json
// @Param        aggregator query string false "Aggregator" Enums(sum, count, average) default(sum)
// @Param        data       query string false "Aggregated value" Enums(items_total, overall_total, margin_amount) default(overall_total)
// @Param        columns    query string false "Column period" Enums(month, quarter, semester, week) default(month)
// @Param        date_from  query string false "First date (2006-01-02)"
// @Param        date_to    query string false "Last date, excluded (2006-01-02)"
// @Success      200 {object} dto.Response{data=pivot.Table}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/pivot [get]
func (h *ReportHandler) Pivot(c *gin.Context) {
	query, ok := bindQuery[report.PivotQuery](c)
	if !ok {
		return
	}
	table, err := h.reportService.CalculationPivot(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}

// ByMonth godoc
// @Summary      Statistics by month
// @Description  Totals of the last months, oldest first
// @Tags         reports
// @Produce      json
// @Param        months query int false "Number of months" default(6)
// @Success      200 {object} dto.Response{data=report.StatsResponse[report.MonthStatResponse]}
// @Security     BearerAuth
// @Router       /reports/by-month [get]
func (h *ReportHandler) ByMonth(c *gin.Context) {
	query, ok := bindQuery[MonthsQuery](c)
	if !ok {
		return
	}
	stats, err := h.reportService.StatsByMonth(c.Request.Context(), query.Months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ByState godoc
// @Summary      Statistics by state
// @Description  Totals of each state with its share of the overall total
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.StatsResponse[report.StateStatResponse]}
// @Security     BearerAuth
// @Router       /reports/by-state [get]
func (h *ReportHandler) ByState(c *gin.Context) {
	stats, err := h.reportService.StatsByState(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
