package handler

import (
	"github.com/calculation/backend/internal/application/setting"
	"github.com/gin-gonic/gin"
)

// SettingHandler handles the application parameters
type SettingHandler struct {
	BaseHandler
	settingService *setting.Service
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settingService *setting.Service) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Get godoc
// @Summary      Get the parameters
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=setting.ParametersResponse}
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingHandler) Get(c *gin.Context) {
	params, err := h.settingService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, params)
}

// Update godoc
// @Summary      Update the parameters
// @Description  The default state and category must exist
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body setting.UpdateParametersRequest true "Parameters"
// @Success      200 {object} dto.Response{data=setting.ParametersResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingHandler) Update(c *gin.Context) {
	req, ok := bindJSON[setting.UpdateParametersRequest](c)
	if !ok {
		return
	}
	params, err := h.settingService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, params)
}
