package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/service"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// SellingPriceReader serves composed selling price rows.
type SellingPriceReader interface {
	GetRange(ctx context.Context, productID, ratePlanID int64, from, to time.Time) ([]models.DailySellingPrice, error)
}

// BasePriceWriter persists feature-derived base price components.
type BasePriceWriter interface {
	UpsertRange(ctx context.Context, productID, ratePlanID int64, from, to time.Time, featureBase, featureAdjustment decimal.Decimal) error
}

// PricingHandler exposes selling price reads, base price writes and rate-plan
// adjustment pushes.
type PricingHandler struct {
	prices     SellingPriceReader
	basePrices BasePriceWriter
	reprice    *service.RepriceService
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(prices SellingPriceReader, basePrices BasePriceWriter, reprice *service.RepriceService) *PricingHandler {
	return &PricingHandler{
		prices:     prices,
		basePrices: basePrices,
		reprice:    reprice,
	}
}

// GetPrices returns selling price rows for a product, rate plan and range.
func (h *PricingHandler) GetPrices(c *gin.Context) {
	var query struct {
		ProductID  int64  `form:"productId" binding:"required"`
		RatePlanID int64  `form:"ratePlanId" binding:"required"`
		From       string `form:"from" binding:"required"`
		To         string `form:"to" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "productId, ratePlanId, from, and to are required")
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

	rows, err := h.prices.GetRange(c.Request.Context(), query.ProductID, query.RatePlanID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Prices retrieved successfully", gin.H{"prices": rows})
}

// RatePlanAdjustmentRequest pushes a daily adjustment onto a rate plan.
type RatePlanAdjustmentRequest struct {
	HotelID int64           `json:"hotelId" binding:"required"`
	From    string          `json:"from" binding:"required"`
	To      string          `json:"to" binding:"required"`
	Value   decimal.Decimal `json:"value"`
	Unit    string          `json:"unit" binding:"required"`
}

// ApplyRatePlanAdjustment persists a rate-plan adjustment and recomputes the
// affected selling prices synchronously.
func (h *PricingHandler) ApplyRatePlanAdjustment(c *gin.Context) {
	ratePlanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid rate plan id")
		return
	}

	var req RatePlanAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, from, to, and unit are required")
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

	unit := models.AdjustmentUnit(req.Unit)
	if err := h.reprice.ApplyRatePlanAdjustment(c.Request.Context(), req.HotelID, ratePlanID, from, to, req.Value, unit); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Rate plan adjustment applied", nil)
}

// BasePriceRequest sets the feature-derived base price components for a range.
type BasePriceRequest struct {
	HotelID           int64           `json:"hotelId" binding:"required"`
	ProductID         int64           `json:"productId" binding:"required"`
	RatePlanID        int64           `json:"ratePlanId" binding:"required"`
	From              string          `json:"from" binding:"required"`
	To                string          `json:"to" binding:"required"`
	FeatureBase       decimal.Decimal `json:"featureBase"`
	FeatureAdjustment decimal.Decimal `json:"featureAdjustment"`
}

// SetBasePrice persists base price components and triggers recomputation.
func (h *PricingHandler) SetBasePrice(c *gin.Context) {
	var req BasePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, productId, ratePlanId, from, and to are required")
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

	if err := h.basePrices.UpsertRange(c.Request.Context(), req.ProductID, req.RatePlanID, from, to, req.FeatureBase, req.FeatureAdjustment); err != nil {
		respondServiceError(c, err)
		return
	}

	days := models.DateRange(from, to)
	if err := h.reprice.RecomputeForProducts(c.Request.Context(), req.HotelID, []int64{req.ProductID}, days); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Base price updated", nil)
}
