package handler

import (
	calcapp "github.com/calculation/backend/internal/application/calculation"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CalculationStateHandler handles calculation state endpoints
type CalculationStateHandler struct {
	BaseHandler
	stateService *calcapp.StateService
}

// NewCalculationStateHandler creates a new CalculationStateHandler
func NewCalculationStateHandler(stateService *calcapp.StateService) *CalculationStateHandler {
	return &CalculationStateHandler{stateService: stateService}
}

// List godoc
// @Summary      List calculation states
// @Description  Retrieve the states with their number of calculations
// @Tags         calculation-states
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20) maximum(100)
// @Param        search     query string false "Search in code and description"
// @Param        sort       query string false "Order by field" default(code)
// @Param        order      query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]calcapp.StateResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /calculation-states [get]
func (h *CalculationStateHandler) List(c *gin.Context) {
	query, ok := bindQuery[dto.DataQuery](c)
	if !ok {
		return
	}
	states, total, err := h.stateService.List(c.Request.Context(), shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
		OrderBy:  query.Sort,
		OrderDir: query.Order,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, states, total, query.Page, query.PageSize)
}

// GetByID godoc
// @Summary      Get calculation state by ID
// @Tags         calculation-states
// @Produce      json
// @Param        id path string true "State ID" format(uuid)
// @Success      200 {object} dto.Response{data=calcapp.StateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculation-states/{id} [get]
func (h *CalculationStateHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	state, err := h.stateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// Create godoc
// @Summary      Create a calculation state
// @Tags         calculation-states
// @Accept       json
// @Produce      json
// @Param        request body calcapp.CreateStateRequest true "State"
// @Success      201 {object} dto.Response{data=calcapp.StateResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculation-states [post]
func (h *CalculationStateHandler) Create(c *gin.Context) {
	req, ok := bindJSON[calcapp.CreateStateRequest](c)
	if !ok {
		return
	}
	state, err := h.stateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, state)
}

// Update godoc
// @Summary      Update a calculation state
// @Tags         calculation-states
// @Accept       json
// @Produce      json
// @Param        id path string true "State ID" format(uuid)
// @Param        request body calcapp.CreateStateRequest true "State"
// @Success      200 {object} dto.Response{data=calcapp.StateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculation-states/{id} [put]
func (h *CalculationStateHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindJSON[calcapp.CreateStateRequest](c)
	if !ok {
		return
	}
	state, err := h.stateService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// Delete godoc
// @Summary      Delete a calculation state
// @Description  A state used by calculations cannot be deleted
// @Tags         calculation-states
// @Param        id path string true "State ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculation-states/{id} [delete]
func (h *CalculationStateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.stateService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
