package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// UnassignedSaleWriter records and removes sold-but-unassigned stay slices.
type UnassignedSaleWriter interface {
	CreateRange(ctx context.Context, hotelID, productID int64, from, to time.Time, reservationID string) error
	DeleteByReservation(ctx context.Context, reservationID string) error
}

// ReservationService translates reservation lifecycle events into inventory
// mutations. Reservations pinned to physical units drive unit status
// transitions; unit-less reservations take the oversell path through the
// overbooking ledger.
type ReservationService struct {
	statuses     UnitStatusWriter
	unassigned   UnassignedSaleWriter
	overbooking  *OverbookingService
	availability *AvailabilityService
}

// NewReservationService constructs a ReservationService.
func NewReservationService(statuses UnitStatusWriter, unassigned UnassignedSaleWriter, overbooking *OverbookingService, availability *AvailabilityService) *ReservationService {
	return &ReservationService{
		statuses:     statuses,
		unassigned:   unassigned,
		overbooking:  overbooking,
		availability: availability,
	}
}

// Commit books a stay of [arrival, departure) nights. With unit ids the units
// are marked ASSIGNED per night; without, each night consumes oversell
// capacity through the ledger and is recorded as an unassigned sale. A
// capacity rejection on any night aborts and reverts the nights already
// booked.
func (s *ReservationService) Commit(ctx context.Context, hotelID, productID int64, arrival, departure time.Time, unitIDs []int64, reservationID string) error {
	nights := stayNights(arrival, departure)
	if len(nights) == 0 {
		return fmt.Errorf("reservation commit: %w", utils.ErrInvalidDateRange)
	}
	first, last := nights[0], nights[len(nights)-1]

	if len(unitIDs) > 0 {
		for _, unitID := range unitIDs {
			if err := s.statuses.SetStatusRange(ctx, unitID, first, last, models.UnitStatusAssigned); err != nil {
				return fmt.Errorf("assign unit %d: %w", unitID, err)
			}
		}
		return s.availability.Reconcile(ctx, hotelID, []int64{productID}, nights)
	}

	// Oversell path: no physical unit consumed, capacity comes from the
	// manual adjustment. Booked night by night so a rejection reverts
	// cleanly.
	for i, night := range nights {
		if err := s.overbooking.IncrementSold(ctx, hotelID, productID, night); err != nil {
			s.revertNights(ctx, hotelID, productID, nights[:i])
			return err
		}
	}
	if err := s.unassigned.CreateRange(ctx, hotelID, productID, first, last, reservationID); err != nil {
		s.revertNights(ctx, hotelID, productID, nights)
		return fmt.Errorf("record unassigned sale: %w", err)
	}
	log.Info().
		Int64("hotel_id", hotelID).
		Int64("product_id", productID).
		Str("reservation_id", reservationID).
		Int("nights", len(nights)).
		Msg("oversell reservation committed")
	return nil
}

// Cancel releases a stay. Unit-pinned reservations free their units; oversell
// reservations remove their unassigned sales and revert the ledger night by
// night.
func (s *ReservationService) Cancel(ctx context.Context, hotelID, productID int64, arrival, departure time.Time, unitIDs []int64, reservationID string) error {
	nights := stayNights(arrival, departure)
	if len(nights) == 0 {
		return fmt.Errorf("reservation cancel: %w", utils.ErrInvalidDateRange)
	}
	first, last := nights[0], nights[len(nights)-1]

	if len(unitIDs) > 0 {
		for _, unitID := range unitIDs {
			if err := s.statuses.SetStatusRange(ctx, unitID, first, last, models.UnitStatusAvailable); err != nil {
				return fmt.Errorf("release unit %d: %w", unitID, err)
			}
		}
		return s.availability.Reconcile(ctx, hotelID, []int64{productID}, nights)
	}

	if err := s.unassigned.DeleteByReservation(ctx, reservationID); err != nil {
		return fmt.Errorf("remove unassigned sale: %w", err)
	}
	s.revertNights(ctx, hotelID, productID, nights)
	return nil
}

// revertNights decrements the ledger for already-booked nights. Failures are
// logged only: the clamped arithmetic and the next reconciliation keep the
// rows consistent.
func (s *ReservationService) revertNights(ctx context.Context, hotelID, productID int64, nights []time.Time) {
	for _, night := range nights {
		if err := s.overbooking.DecrementSold(ctx, hotelID, productID, night); err != nil {
			log.Error().Err(err).
				Int64("product_id", productID).
				Str("date", models.DateKey(night)).
				Msg("oversell revert failed")
		}
	}
}

// stayNights expands [arrival, departure) into occupied nights.
func stayNights(arrival, departure time.Time) []time.Time {
	arrival, departure = models.Day(arrival), models.Day(departure)
	if !departure.After(arrival) {
		return nil
	}
	return models.DateRange(arrival, departure.AddDate(0, 0, -1))
}
