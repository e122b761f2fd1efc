package sse

import (
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
)

// AvailabilityNotifier is the interface services use to emit change events.
type AvailabilityNotifier interface {
	NotifyAvailabilityChanged(rows []models.ProductDailyAvailability)
}

// HubNotifier implements AvailabilityNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyAvailabilityChanged(rows []models.ProductDailyAvailability) {
	if n.hub.ClientCount() == 0 {
		return
	}
	for i := range rows {
		n.hub.Broadcast(rowToEvent(&rows[i]))
	}
}

func rowToEvent(row *models.ProductDailyAvailability) *AvailabilityEvent {
	return &AvailabilityEvent{
		Event:      EventAvailabilityChanged,
		HotelID:    row.HotelID,
		ProductID:  row.ProductID,
		Date:       models.DateKey(row.Date),
		Available:  row.Available,
		Sold:       row.Sold,
		SellLimit:  row.SellLimit,
		Adjustment: row.Adjustment,
		Timestamp:  time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyAvailabilityChanged(rows []models.ProductDailyAvailability) {}
