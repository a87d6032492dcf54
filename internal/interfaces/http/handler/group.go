package handler

import (
	catalogapp "github.com/calculation/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles group endpoints
type GroupHandler struct {
	BaseHandler
	groupService *catalogapp.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService *catalogapp.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// List godoc
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Param        search      query string false "Search filter"
// @Param        order_by    query string false "Order by field"
// @Param        order_dir   query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.GroupResponse,meta=dto.Meta}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	filter, ok := bindQuery[catalogapp.ListFilter](c)
	if !ok {
		return
	}
	items, total, err := h.groupService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID godoc
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.GroupResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /groups/{id} [get]
func (h *GroupHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.groupService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create godoc
// @Summary      Create a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.GroupRequest true "Group"
// @Success      201 {object} dto.Response{data=catalogapp.GroupResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	req, ok := bindJSON[catalogapp.GroupRequest](c)
	if !ok {
		return
	}
	item, err := h.groupService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update godoc
// @Summary      Update a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body catalogapp.GroupRequest true "Group"
// @Success      200 {object} dto.Response{data=catalogapp.GroupResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.GroupRequest](c)
	if !ok {
		return
	}
	item, err := h.groupService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// @Summary      Delete a group
// @Tags         groups
// @Param        id path string true "Group ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
