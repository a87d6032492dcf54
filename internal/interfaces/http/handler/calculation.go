package handler

import (
	calcapp "github.com/calculation/backend/internal/application/calculation"
	"github.com/calculation/backend/internal/application/export"
	"github.com/gin-gonic/gin"
)

// CalculationHandler handles calculation-related API endpoints
type CalculationHandler struct {
	BaseHandler
	calculationService *calcapp.CalculationService
	exportService      *export.Service
}

// NewCalculationHandler creates a new CalculationHandler
func NewCalculationHandler(calculationService *calcapp.CalculationService, exportService *export.Service) *CalculationHandler {
	return &CalculationHandler{
		calculationService: calculationService,
		exportService:      exportService,
	}
}

// List godoc
// @Summary      List calculations
// @Description  Retrieve calculations with search, state, editable and date filters
// @Tags         calculations
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20) maximum(100)
// @Param        search     query string false "Search in customer and description"
// @Param        order_by   query string false "Order by field" default(id)
// @Param        order_dir  query string false "Order direction" Enums(asc, desc)
// @Param        state_id   query string false "State ID" format(uuid)
// @Param        editable   query bool   false "Only calculations in an editable state"
// @Param        date_from  query string false "First date (2006-01-02)"
// @Param        date_to    query string false "Last date, excluded (2006-01-02)"
// @Success      200 {object} dto.Response{data=[]calcapp.CalculationListResponse,meta=dto.Meta}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations [get]
func (h *CalculationHandler) List(c *gin.Context) {
	query, ok := bindQuery[CalculationListQuery](c)
	if !ok {
		return
	}

	calcs, total, err := h.calculationService.List(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, calcs, total, query.Page, query.PageSize)
}

// GetByID godoc
// @Summary      Get calculation by ID
// @Description  Retrieve a calculation with its groups, categories, items and totals
// @Tags         calculations
// @Produce      json
// @Param        id path string true "Calculation ID" format(uuid)
// @Success      200 {object} dto.Response{data=calcapp.CalculationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id} [get]
func (h *CalculationHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	calc, err := h.calculationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calc)
}

// Create godoc
// @Summary      Create a calculation
// @Description  Create a calculation with its items. Items are merged by category, the totals are computed.
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        request body calcapp.SaveCalculationRequest true "Calculation"
// @Success      201 {object} dto.Response{data=calcapp.CalculationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations [post]
func (h *CalculationHandler) Create(c *gin.Context) {
	req, ok := bindJSON[calcapp.SaveCalculationRequest](c)
	if !ok {
		return
	}
	calc, err := h.calculationService.Create(c.Request.Context(), req, getUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, calc)
}

// Update godoc
// @Summary      Update a calculation
// @Description  Replace the fields and the items of an editable calculation
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        id path string true "Calculation ID" format(uuid)
// @Param        request body calcapp.SaveCalculationRequest true "Calculation"
// @Success      200 {object} dto.Response{data=calcapp.CalculationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id} [put]
func (h *CalculationHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindJSON[calcapp.SaveCalculationRequest](c)
	if !ok {
		return
	}
	calc, err := h.calculationService.Update(c.Request.Context(), id, req, getUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calc)
}

// Delete godoc
// @Summary      Delete a calculation
// @Tags         calculations
// @Param        id path string true "Calculation ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id} [delete]
func (h *CalculationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.calculationService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Duplicate godoc
// @Summary      Copy a calculation
// @Description  Create a copy of a calculation, dated today, in the default state
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        id path string true "Calculation ID" format(uuid)
// @Param        request body calcapp.DuplicateRequest false "Description of the copy"
// @Success      201 {object} dto.Response{data=calcapp.CalculationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id}/duplicate [post]
func (h *CalculationHandler) Duplicate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req calcapp.DuplicateRequest
	if c.Request.ContentLength > 0 {
		if req, ok = bindJSON[calcapp.DuplicateRequest](c); !ok {
			return
		}
	}
	calc, err := h.calculationService.Duplicate(c.Request.Context(), id, req, getUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, calc)
}

// ChangeState godoc
// @Summary      Change the state of a calculation
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        id path string true "Calculation ID" format(uuid)
// @Param        request body calcapp.ChangeStateRequest true "Target state"
// @Success      200 {object} dto.Response{data=calcapp.CalculationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id}/state [patch]
func (h *CalculationHandler) ChangeState(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindJSON[calcapp.ChangeStateRequest](c)
	if !ok {
		return
	}
	calc, err := h.calculationService.ChangeState(c.Request.Context(), id, req, getUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calc)
}

// Totals godoc
// @Summary      Get the totals of a calculation
// @Tags         calculations
// @Produce      json
// @Param        id path string true "Calculation ID" format(uuid)
// @Success      200 {object} dto.Response{data=calcapp.TotalsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id}/totals [get]
func (h *CalculationHandler) Totals(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	totals, err := h.calculationService.Totals(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// PreviewTotals godoc
// @Summary      Compute totals without saving
// @Description  Compute the totals of unsaved items. With adjust, the user margin is raised to reach the minimum margin.
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        request body calcapp.CalculationQuery true "Items and user margin"
// @Success      200 {object} dto.Response{data=calcapp.TotalsResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/totals [post]
func (h *CalculationHandler) PreviewTotals(c *gin.Context) {
	query, ok := bindJSON[calcapp.CalculationQuery](c)
	if !ok {
		return
	}
	totals, err := h.calculationService.PreviewTotals(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// Export godoc
// @Summary      Export a calculation
// @Description  Render a calculation as PDF, Word, Excel or CSV. With archive, the document is stored and a link is returned.
// @Tags         calculations
// @Produce      application/pdf,application/msword,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv,json
// @Param        id      path  string true  "Calculation ID" format(uuid)
// @Param        format  path  string true  "Output format" Enums(pdf, doc, docx, word, xlsx, excel, csv)
// @Param        archive query bool   false "Also store the document, the X-Archive-URL header links to the copy"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/{id}/export/{format} [get]
func (h *CalculationHandler) Export(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	query, ok := bindExportQuery(c)
	if !ok {
		return
	}
	result, err := h.exportService.Calculation(c.Request.Context(), id, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendDocument(c, result)
}

// BelowMargin godoc
// @Summary      List calculations below the minimum margin
// @Tags         calculations
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20) maximum(100)
// @Param        search     query string false "Search in customer and description"
// @Success      200 {object} dto.Response{data=[]calcapp.CalculationListResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /calculations/below-margin [get]
func (h *CalculationHandler) BelowMargin(c *gin.Context) {
	query, ok := bindQuery[CalculationListQuery](c)
	if !ok {
		return
	}
	calcs, total, err := h.calculationService.BelowMargin(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, calcs, total, query.Page, query.PageSize)
}

// EmptyItems godoc
// @Summary      List calculations with empty items
// @Description  Items with a zero price or a zero quantity
// @Tags         calculations
// @Produce      json
// @Param        page       query int false "Page number" default(1)
// @Param        page_size  query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]calcapp.CalculationItemsResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /calculations/empty-items [get]
func (h *CalculationHandler) EmptyItems(c *gin.Context) {
	query, ok := bindQuery[CalculationListQuery](c)
	if !ok {
		return
	}
	calcs, total, err := h.calculationService.EmptyItems(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, calcs, total, query.Page, query.PageSize)
}

// DuplicateItems godoc
// @Summary      List calculations with duplicate items
// @Description  Items sharing the same description in a calculation
// @Tags         calculations
// @Produce      json
// @Param        page       query int false "Page number" default(1)
// @Param        page_size  query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]calcapp.CalculationItemsResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /calculations/duplicate-items [get]
func (h *CalculationHandler) DuplicateItems(c *gin.Context) {
	query, ok := bindQuery[CalculationListQuery](c)
	if !ok {
		return
	}
	calcs, total, err := h.calculationService.DuplicateItems(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, calcs, total, query.Page, query.PageSize)
}

// UpdateAll godoc
// @Summary      Recompute the totals of the calculations
// @Description  Recompute the editable calculations with the current margins. Empty and duplicate items can be removed.
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        request body calcapp.UpdateQuery true "Update options"
// @Success      200 {object} dto.Response{data=calcapp.UpdateResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/update-all [post]
func (h *CalculationHandler) UpdateAll(c *gin.Context) {
	query, ok := bindJSON[calcapp.UpdateQuery](c)
	if !ok {
		return
	}
	result, err := h.calculationService.UpdateAll(c.Request.Context(), query, getUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Archive godoc
// @Summary      Archive old calculations
// @Description  Move the calculations older than a date to a non-editable state
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Param        request body calcapp.ArchiveQuery true "Archive options"
// @Success      200 {object} dto.Response{data=calcapp.ArchiveResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculations/archive [post]
func (h *CalculationHandler) Archive(c *gin.Context) {
	query, ok := bindJSON[calcapp.ArchiveQuery](c)
	if !ok {
		return
	}
	result, err := h.calculationService.Archive(c.Request.Context(), query, getUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
