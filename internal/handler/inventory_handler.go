package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/service"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// InventoryHandler accepts housekeeping and group-booking fact mutations.
type InventoryHandler struct {
	mutations *service.MutationService
}

// NewInventoryHandler constructs an InventoryHandler.
func NewInventoryHandler(mutations *service.MutationService) *InventoryHandler {
	return &InventoryHandler{mutations: mutations}
}

// UnitStatusRequest transitions a physical unit's per-date status.
type UnitStatusRequest struct {
	HotelID int64  `json:"hotelId" binding:"required"`
	UnitID  int64  `json:"unitId" binding:"required"`
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// SetUnitStatus handles housekeeping status pushes (out of order, back in
// service, manual assignment).
func (h *InventoryHandler) SetUnitStatus(c *gin.Context) {
	var req UnitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, unitId, from, to, and status are required")
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

	status := models.UnitDailyStatus(req.Status)
	if err := h.mutations.SetUnitStatus(c.Request.Context(), req.HotelID, req.UnitID, from, to, status); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Unit status updated", nil)
}

// BlockHoldRequest replaces a product's group-booking hold counts.
type BlockHoldRequest struct {
	HotelID   int64  `json:"hotelId" binding:"required"`
	ProductID int64  `json:"productId" binding:"required"`
	From      string `json:"from" binding:"required"`
	To        string `json:"to" binding:"required"`
	Tentative int    `json:"tentative"`
	Definite  int    `json:"definite"`
	Picked    int    `json:"picked"`
}

// SetBlockHold handles group-booking block changes.
func (h *InventoryHandler) SetBlockHold(c *gin.Context) {
	var req BlockHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, productId, from, and to are required")
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

	if err := h.mutations.SetBlockHold(c.Request.Context(), req.HotelID, req.ProductID, from, to, req.Tentative, req.Definite, req.Picked); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Block hold updated", nil)
}
