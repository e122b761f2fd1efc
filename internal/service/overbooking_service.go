package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// OverbookingRepository is the ledger's persistence contract. Increment and
// Decrement are single-statement, clamped arithmetic updates; they return the
// number of rows affected so the service can distinguish a capacity rejection
// from a missing row.
type OverbookingRepository interface {
	Get(ctx context.Context, hotelID, productID int64, date time.Time) (*models.ProductDailyAvailability, error)
	IncrementSold(ctx context.Context, hotelID, productID int64, date time.Time) (int64, error)
	DecrementSold(ctx context.Context, hotelID, productID int64, date time.Time) (int64, error)
}

// OverbookingService handles the POOL oversell path: a reservation that
// consumes adjustment capacity instead of a specific physical unit.
type OverbookingService struct {
	repo OverbookingRepository
}

// NewOverbookingService constructs an OverbookingService.
func NewOverbookingService(repo OverbookingRepository) *OverbookingService {
	return &OverbookingService{repo: repo}
}

// IncrementSold books one oversold unit. The update only applies while
// sold+1 <= sellLimit+adjustment and available > 0; a zero-row update means
// capacity was exhausted, possibly by a concurrent writer, and the mutation is
// rejected rather than clamped.
func (s *OverbookingService) IncrementSold(ctx context.Context, hotelID, productID int64, date time.Time) error {
	date = models.Day(date)

	affected, err := s.repo.IncrementSold(ctx, hotelID, productID, date)
	if err != nil {
		return fmt.Errorf("increment sold: %w", err)
	}
	if affected > 0 {
		log.Debug().
			Int64("hotel_id", hotelID).
			Int64("product_id", productID).
			Str("date", models.DateKey(date)).
			Msg("oversell booked")
		return nil
	}

	// Rejected. Re-read the row so the error carries the competing figures.
	row, err := s.repo.Get(ctx, hotelID, productID, date)
	if err != nil {
		return fmt.Errorf("increment sold rejected, figures unavailable: %w", err)
	}
	if row == nil {
		return fmt.Errorf("increment sold: %w", utils.ErrAvailabilityNotFound)
	}
	return &CapacityExceededError{
		HotelID:   hotelID,
		ProductID: productID,
		Date:      date,
		Sold:      row.Sold,
		Capacity:  row.Capacity(),
	}
}

// DecrementSold reverts one oversold unit after a cancellation. The clamped
// arithmetic keeps sold inside [0, capacity] even when racing a concurrent
// manual adjustment change.
func (s *OverbookingService) DecrementSold(ctx context.Context, hotelID, productID int64, date time.Time) error {
	date = models.Day(date)

	affected, err := s.repo.DecrementSold(ctx, hotelID, productID, date)
	if err != nil {
		return fmt.Errorf("decrement sold: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("decrement sold: %w", utils.ErrAvailabilityNotFound)
	}
	log.Debug().
		Int64("hotel_id", hotelID).
		Int64("product_id", productID).
		Str("date", models.DateKey(date)).
		Msg("oversell reverted")
	return nil
}
