package handler

import (
	"net/http"

	"soggiorno/internal/middleware"
	"soggiorno/internal/model"
	"soggiorno/internal/service"
	"soggiorno/pkg/pagination"
	"soggiorno/pkg/response"

	"github.com/gin-gonic/gin"
)

type DatasetHandler struct {
	bookingService service.BookingService
}

func NewDatasetHandler(bookingService service.BookingService) *DatasetHandler {
	return &DatasetHandler{bookingService: bookingService}
}

func (h *DatasetHandler) RegisterRoutes(router *gin.RouterGroup) {
	datasets := router.Group("/api/datasets")
	datasets.Use(middleware.RequireRole(model.RoleAdmin, model.RoleOperator))
	{
		datasets.GET("", h.ListDatasets)
		datasets.POST("", h.CreateDataset)
		datasets.GET("/:id", h.GetDataset)
		datasets.PUT("/:id", h.UpdateDataset)
		datasets.DELETE("/:id", h.DeleteDataset)

		datasets.POST("/:id/bookings", h.ImportBookings)
		datasets.GET("/:id/bookings", h.ListBookings)
		datasets.POST("/:id/exemptions", h.ToggleExemption)
	}
}

// recomputeOptions reads the shared what-if override query params.
func recomputeOptions(c *gin.Context) service.RecomputeOptions {
	return service.RecomputeOptions{
		Municipality: c.Query("municipality"),
		Rate:         c.Query("rate"),
	}
}

// ListDatasets returns all datasets, newest first
// @Summary      List datasets
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.DatasetResponse}
// @Router       /api/datasets [get]
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.bookingService.ListDatasets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, datasets))
}

// CreateDataset creates a new dataset
// @Summary      Create dataset
// @Tags         datasets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDatasetRequest  true  "Create Dataset Payload"
// @Success      201      {object}  response.Response{data=service.DatasetResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/datasets [post]
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var req service.CreateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ds, err := h.bookingService.CreateDataset(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ds))
}

// GetDataset fetches one dataset by ID
// @Summary      Get dataset
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dataset ID"
// @Success      200  {object}  response.Response{data=service.DatasetResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/datasets/{id} [get]
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	ds, err := h.bookingService.GetDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ds))
}

// UpdateDataset updates dataset name, municipality or rate
// @Summary      Update dataset
// @Tags         datasets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Dataset ID"
// @Param        payload  body      service.UpdateDatasetRequest  true  "Update Dataset Payload"
// @Success      200      {object}  response.Response{data=service.DatasetResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/datasets/{id} [put]
func (h *DatasetHandler) UpdateDataset(c *gin.Context) {
	var req service.UpdateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	ds, err := h.bookingService.UpdateDataset(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ds))
}

// DeleteDataset removes a dataset and all its bookings
// @Summary      Delete dataset
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dataset ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/datasets/{id} [delete]
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	if err := h.bookingService.DeleteDataset(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Dataset deleted successfully"))
}

// ImportBookings ingests raw platform export rows into the dataset
// @Summary      Import bookings
// @Description  Normalizes and stores raw rows from a Booking.com, Airbnb or generic export
// @Tags         datasets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Dataset ID"
// @Param        payload  body      service.ImportBookingsRequest  true  "Raw rows"
// @Success      201      {object}  response.Response{data=service.ImportResult}
// @Failure      400      {object}  response.Response
// @Router       /api/datasets/{id}/bookings [post]
func (h *DatasetHandler) ImportBookings(c *gin.Context) {
	var req service.ImportBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.bookingService.ImportBookings(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListBookings returns the computed bookings of a dataset
// @Summary      List computed bookings
// @Description  Recomputes the dataset and returns paginated per-booking tax results
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true   "Dataset ID"
// @Param        month         query     string  false  "Arrival month filter (YYYY-MM)"
// @Param        municipality  query     string  false  "Municipality override"
// @Param        rate          query     string  false  "Rate override"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/datasets/{id}/bookings [get]
func (h *DatasetHandler) ListBookings(c *gin.Context) {
	params := pagination.Parse(c)
	opts := service.ListBookingsOptions{
		RecomputeOptions: recomputeOptions(c),
		Month:            c.Query("month"),
		Page:             params.Page,
		Limit:            params.Limit,
	}

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "bookings", bookings, total, params.Page, params.Limit))
}

// ToggleExemption flips the manual exemption flag for a guest
// @Summary      Toggle manual exemption
// @Description  Adds or removes a guest's manual exemption and recomputes downstream totals
// @Tags         datasets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Dataset ID"
// @Param        payload  body      service.ToggleExemptionRequest   true  "Guest name"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/datasets/{id}/exemptions [post]
func (h *DatasetHandler) ToggleExemption(c *gin.Context) {
	var req service.ToggleExemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	exempt, err := h.bookingService.ToggleExemption(c.Request.Context(), c.Param("id"), req.GuestName, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"guest_name": req.GuestName,
		"exempt":     exempt,
	}))
}
