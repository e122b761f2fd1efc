package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lodgio/lodgio-api/internal/service"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// ReservationHandler accepts reservation lifecycle events from the booking
// flow and distribution channels.
type ReservationHandler struct {
	reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// ReservationRequest describes a stay of [arrival, departure) nights. UnitIDs
// may be empty for oversell bookings.
type ReservationRequest struct {
	HotelID       int64   `json:"hotelId" binding:"required"`
	ProductID     int64   `json:"productId" binding:"required"`
	ReservationID string  `json:"reservationId" binding:"required"`
	Arrival       string  `json:"arrival" binding:"required"`
	Departure     string  `json:"departure" binding:"required"`
	UnitIDs       []int64 `json:"unitIds"`
}

// Commit books a stay.
func (h *ReservationHandler) Commit(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	arrival, _ := parseDate(req.Arrival)
	departure, _ := parseDate(req.Departure)

	if err := h.reservations.Commit(c.Request.Context(), req.HotelID, req.ProductID, arrival, departure, req.UnitIDs, req.ReservationID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Reservation committed", nil)
}

// Cancel releases a stay.
func (h *ReservationHandler) Cancel(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	arrival, _ := parseDate(req.Arrival)
	departure, _ := parseDate(req.Departure)

	if err := h.reservations.Cancel(c.Request.Context(), req.HotelID, req.ProductID, arrival, departure, req.UnitIDs, req.ReservationID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Reservation cancelled", nil)
}

func (h *ReservationHandler) bind(c *gin.Context) (*ReservationRequest, bool) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "hotelId, productId, reservationId, arrival, and departure are required")
		return nil, false
	}
	if _, err := parseDate(req.Arrival); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid arrival date")
		return nil, false
	}
	if _, err := parseDate(req.Departure); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "invalid departure date")
		return nil, false
	}
	return &req, true
}
