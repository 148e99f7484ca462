package handler

import (
	"net/http"

	"soggiorno/internal/middleware"
	"soggiorno/internal/model"
	"soggiorno/internal/service"
	"soggiorno/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleOperator)
	router.GET("/api/datasets/:id/report", auth, h.GetReport)
	router.GET("/api/municipalities", auth, h.ListMunicipalities)
}

// GetReport returns the full aggregation of a dataset
// @Summary      Dataset tax report
// @Description  Recomputes the dataset and returns overall, per-country, per-month and per-quarter totals
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true   "Dataset ID"
// @Param        municipality  query     string  false  "Municipality override"
// @Param        rate          query     string  false  "Rate override"
// @Success      200  {object}  response.Response{data=service.ReportResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/datasets/{id}/report [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.reportService.GetReport(c.Request.Context(), c.Param("id"), recomputeOptions(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ListMunicipalities returns the supported municipality rules grouped by region
// @Summary      List municipality rules
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RegionMunicipalities}
// @Router       /api/municipalities [get]
func (h *ReportHandler) ListMunicipalities(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.reportService.ListMunicipalities(c.Request.Context())))
}
