package handler

import (
	"mime"
	"net/http"

	"github.com/calculation/backend/internal/application/export"
	"github.com/calculation/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ExportHandler renders the entity lists as documents
type ExportHandler struct {
	BaseHandler
	exportService *export.Service
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *export.Service) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Formats godoc
// @Summary      List the export formats
// @Description  The PDF format is only available when the printing service is configured
// @Tags         export
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Security     BearerAuth
// @Router       /export/formats [get]
func (h *ExportHandler) Formats(c *gin.Context) {
	formats := h.exportService.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	h.Success(c, names)
}

// List returns the handler exporting one entity list. The entity is fixed by
// the route it is registered on.
//
// @Summary      Export a list
// @Description  Render a whole list (calculations, calculation-states, groups, categories, products, tasks, customers, global-margins)
// @Tags         export
// @Produce      application/pdf,application/msword,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv,json
// @Param        entity  path  string true  "Entity" Enums(calculations, calculation-states, groups, categories, products, tasks, customers, global-margins)
// @Param        format  path  string true  "Output format" Enums(pdf, doc, docx, word, xlsx, excel, csv)
// @Param        search  query string false "Search filter"
// @Param        archive query bool   false "Also store the document, the X-Archive-URL header links to the copy"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /{entity}/export/{format} [get]
func (h *ExportHandler) List(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, ok := bindExportQuery(c)
		if !ok {
			return
		}
		result, err := h.exportService.List(c.Request.Context(), entity, query)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		sendDocument(c, result)
	}
}

// bindExportQuery reads the format from the path and the options from the query string
func bindExportQuery(c *gin.Context) (export.ExportQuery, bool) {
	var query export.ExportQuery
	if err := c.ShouldBindUri(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return query, false
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return query, false
	}
	return query, true
}

// sendDocument streams the generated file. An archived copy is linked by the X-Archive-URL header.
func sendDocument(c *gin.Context, result *export.Result) {
	if result.ArchiveURL != "" {
		c.Header("X-Archive-URL", result.ArchiveURL)
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
