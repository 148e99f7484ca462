package handler

import (
	"net/http"

	"soggiorno/internal/middleware"
	"soggiorno/internal/model"
	"soggiorno/internal/service"
	"soggiorno/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleOperator)
	router.GET("/api/datasets/:id/export/csv", auth, h.ExportCSV)
	router.GET("/api/datasets/:id/export/pdf", auth, h.ExportPDF)
}

// ExportCSV streams the quarterly filing export as CSV
// @Summary      Export dataset as CSV
// @Description  Semicolon-separated UTF-8 CSV with per-quarter subtotals and filing deadlines
// @Tags         exports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id            path      string  true   "Dataset ID"
// @Param        municipality  query     string  false  "Municipality override"
// @Param        rate          query     string  false  "Rate override"
// @Success      200  {string}  string  "CSV content"
// @Failure      400  {object}  response.Response
// @Router       /api/datasets/{id}/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportCSV(c.Request.Context(), c.Param("id"), recomputeOptions(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportPDF streams the quarterly filing report as PDF
// @Summary      Export dataset as PDF
// @Description  Quarterly report grouped by filing deadline, ready to submit
// @Tags         exports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id            path      string  true   "Dataset ID"
// @Param        municipality  query     string  false  "Municipality override"
// @Param        rate          query     string  false  "Rate override"
// @Success      200  {string}  string  "PDF content"
// @Failure      400  {object}  response.Response
// @Router       /api/datasets/{id}/export/pdf [get]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	data, filename, err := h.exportService.ExportPDF(c.Request.Context(), c.Param("id"), recomputeOptions(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
