package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/service"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// AvailabilityReader serves availability rows to booking/search flows.
type AvailabilityReader interface {
	GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.ProductDailyAvailability, error)
}

// AvailabilityHandler exposes availability reads, reconciliation triggers and
// manual adjustment writes.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
	mutations    *service.MutationService
	reader       AvailabilityReader
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService, mutations *service.MutationService, reader AvailabilityReader) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		mutations:    mutations,
		reader:       reader,
	}
}

// GetAvailability returns availability rows for a product and date range.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	var query struct {
		ProductID int64  `form:"productId" binding:"required"`
		From      string `form:"from" binding:"required"`
		To        string `form:"to" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "productId, from, and to are required")
		return
	}
	from, err := parseDate(query.From)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid from date")
		return
	}
	to, err := parseDate(query.To)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid to date")
		return
	}

	rows, err := h.reader.GetRange(c.Request.Context(), []int64{query.ProductID}, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Availability retrieved successfully", gin.H{"availability": rows})
}

// ReconcileRequest triggers recomputation for products over a date range.
type ReconcileRequest struct {
	HotelID    int64   `json:"hotelId" binding:"required"`
	ProductIDs []int64 `json:"productIds" binding:"required,min=1"`
	From       string  `json:"from" binding:"required"`
	To         string  `json:"to" binding:"required"`
}

// Reconcile recomputes availability for the requested (product, date) set.
func (h *AvailabilityHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, productIds, from, and to are required")
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid from date")
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid to date")
		return
	}

	if err := h.availability.Reconcile(c.Request.Context(), req.HotelID, req.ProductIDs, models.DateRange(from, to)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Availability reconciled", nil)
}

// AdjustmentRequest sets the manual capacity override over a date range.
type AdjustmentRequest struct {
	HotelID    int64  `json:"hotelId" binding:"required"`
	ProductID  int64  `json:"productId" binding:"required"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
	Adjustment *int   `json:"adjustment" binding:"required"`
}

// ApplyAdjustment handles manual/PMS availability adjustment pushes.
func (h *AvailabilityHandler) ApplyAdjustment(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, productId, from, to, and adjustment are required")
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid from date")
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid to date")
		return
	}

	if err := h.mutations.ApplyAdjustment(c.Request.Context(), req.HotelID, req.ProductID, from, to, *req.Adjustment); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Adjustment applied", nil)
}
