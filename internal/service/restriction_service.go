package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RestrictionService is the boundary to the restriction automation engine.
// The rules themselves live outside this service; the engine only notifies it
// after availability changes persist. Kept as a logging pass-through until a
// real automation backend is wired.
type RestrictionService struct{}

// NewRestrictionService constructs a RestrictionService.
func NewRestrictionService() *RestrictionService {
	return &RestrictionService{}
}

// Apply notifies the restriction engine of changed (product, date) rows.
func (s *RestrictionService) Apply(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error {
	log.Debug().
		Int64("hotel_id", hotelID).
		Int("products", len(productIDs)).
		Int("dates", len(dates)).
		Msg("restriction automation triggered")
	return nil
}
