package handler

import (
	"github.com/calculation/backend/internal/application/captcha"
	"github.com/gin-gonic/gin"
)

// CaptchaHandler issues the login challenges
type CaptchaHandler struct {
	BaseHandler
	captchaService *captcha.Service
}

// NewCaptchaHandler creates a new CaptchaHandler
func NewCaptchaHandler(captchaService *captcha.Service) *CaptchaHandler {
	return &CaptchaHandler{captchaService: captchaService}
}

// Issue godoc
// @Summary      Issue a captcha
// @Description  Create a new challenge. The answer is sent back with the login request.
// @Tags         captcha
// @Produce      json
// @Success      200 {object} dto.Response{data=captcha.ChallengeResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /captcha [get]
func (h *CaptchaHandler) Issue(c *gin.Context) {
	challenge, err := h.captchaService.Issue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, challenge)
}
