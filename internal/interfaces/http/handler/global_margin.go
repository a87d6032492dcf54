package handler

import (
	"github.com/calculation/backend/internal/application/margin"
	"github.com/gin-gonic/gin"
)

// GlobalMarginHandler handles the global margin table
type GlobalMarginHandler struct {
	BaseHandler
	marginService *margin.GlobalMarginService
}

// NewGlobalMarginHandler creates a new GlobalMarginHandler
func NewGlobalMarginHandler(marginService *margin.GlobalMarginService) *GlobalMarginHandler {
	return &GlobalMarginHandler{marginService: marginService}
}

// List godoc
// @Summary      List global margins
// @Description  The whole table, ordered by minimum
// @Tags         global-margins
// @Produce      json
// @Success      200 {object} dto.Response{data=[]margin.GlobalMarginResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /global-margins [get]
func (h *GlobalMarginHandler) List(c *gin.Context) {
	margins, total, err := h.marginService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, margins, total, 1, 0)
}

// GetByID godoc
// @Summary      Get global margin by ID
// @Tags         global-margins
// @Produce      json
// @Param        id path string true "Global margin ID" format(uuid)
// @Success      200 {object} dto.Response{data=margin.GlobalMarginResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /global-margins/{id} [get]
func (h *GlobalMarginHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	gm, err := h.marginService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gm)
}

// Create godoc
// @Summary      Create a global margin
// @Description  The range must not overlap another range
// @Tags         global-margins
// @Accept       json
// @Produce      json
// @Param        request body margin.GlobalMarginRequest true "Global margin"
// @Success      201 {object} dto.Response{data=margin.GlobalMarginResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /global-margins [post]
func (h *GlobalMarginHandler) Create(c *gin.Context) {
	req, ok := bindJSON[margin.GlobalMarginRequest](c)
	if !ok {
		return
	}
	gm, err := h.marginService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gm)
}

// Update godoc
// @Summary      Update a global margin
// @Tags         global-margins
// @Accept       json
// @Produce      json
// @Param        id path string true "Global margin ID" format(uuid)
// @Param        request body margin.GlobalMarginRequest true "Global margin"
// @Success      200 {object} dto.Response{data=margin.GlobalMarginResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /global-margins/{id} [put]
func (h *GlobalMarginHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindJSON[margin.GlobalMarginRequest](c)
	if !ok {
		return
	}
	gm, err := h.marginService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gm)
}

// Delete godoc
// @Summary      Delete a global margin
// @Tags         global-margins
// @Param        id path string true "Global margin ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /global-margins/{id} [delete]
func (h *GlobalMarginHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.marginService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReplaceAll godoc
// @Summary      Replace the global margins
// @Description  Replace the whole table in one transaction. The ranges must not overlap.
// @Tags         global-margins
// @Accept       json
// @Produce      json
// @Param        request body margin.ReplaceGlobalMarginsRequest true "Global margins"
// @Success      200 {object} dto.Response{data=[]margin.GlobalMarginResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /global-margins [put]
func (h *GlobalMarginHandler) ReplaceAll(c *gin.Context) {
	req, ok := bindJSON[margin.ReplaceGlobalMarginsRequest](c)
	if !ok {
		return
	}
	margins, err := h.marginService.ReplaceAll(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, margins)
}
