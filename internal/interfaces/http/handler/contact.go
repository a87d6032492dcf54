package handler

import (
	"errors"
	"io"

	"github.com/calculation/backend/internal/application/notification"
	"github.com/calculation/backend/internal/infrastructure/mail"
	"github.com/calculation/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const (
	maxAttachments    = 5
	maxAttachmentSize = 10 << 20
)

// ContactHandler sends the messages of the contact form
type ContactHandler struct {
	BaseHandler
	notificationService *notification.Service
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(notificationService *notification.Service) *ContactHandler {
	return &ContactHandler{notificationService: notificationService}
}

// Send godoc
// @Summary      Contact the administrator
// @Description  Send a message with optional attachments to the administrator
// @Tags         contact
// @Accept       multipart/form-data,json
// @Produce      json
// @Param        name        formData string false "Sender name"
// @Param        email       formData string true  "Sender email"
// @Param        subject     formData string true  "Subject"
// @Param        message     formData string true  "Message"
// @Param        attachments formData file   false "Attachments"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contact [post]
func (h *ContactHandler) Send(c *gin.Context) {
	var req notification.CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	attachments, err := readAttachments(c)
	if err != nil {
		h.ErrorWithCode(c, "INVALID_ATTACHMENT", err.Error())
		return
	}
	req.Attachments = attachments

	if err := h.notificationService.SendComment(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Message sent"})
}

func readAttachments(c *gin.Context) ([]mail.Attachment, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		// a JSON request has no attachments
		return nil, nil
	}
	files := form.File["attachments"]
	if len(files) > maxAttachments {
		return nil, errTooManyAttachments
	}

	attachments := make([]mail.Attachment, 0, len(files))
	for _, header := range files {
		if header.Size > maxAttachmentSize {
			return nil, errAttachmentTooLarge
		}
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, mail.Attachment{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return attachments, nil
}

var (
	errTooManyAttachments = errors.New("too many attachments")
	errAttachmentTooLarge = errors.New("attachment is too large")
)
