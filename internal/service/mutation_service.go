package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// Write-side contracts for inventory facts.
type UnitStatusWriter interface {
	SetStatusRange(ctx context.Context, unitID int64, from, to time.Time, status models.UnitDailyStatus) error
}

type BlockHoldWriter interface {
	SetRange(ctx context.Context, hotelID, productID int64, from, to time.Time, tentative, definite, picked int) error
}

type AdjustmentWriter interface {
	UpdateAdjustment(ctx context.Context, hotelID, productID int64, from, to time.Time, adjustment int) error
}

type UnitProductLookup interface {
	ListProductsByUnit(ctx context.Context, unitID int64) ([]int64, error)
}

// MutationService is the intake for fact mutations: housekeeping status
// transitions, group-booking block changes and manual/PMS availability
// adjustments. Every accepted mutation reconciles the affected rows.
type MutationService struct {
	statuses     UnitStatusWriter
	blocks       BlockHoldWriter
	adjustments  AdjustmentWriter
	unitProducts UnitProductLookup
	availability *AvailabilityService
}

// NewMutationService constructs a MutationService.
func NewMutationService(statuses UnitStatusWriter, blocks BlockHoldWriter, adjustments AdjustmentWriter, unitProducts UnitProductLookup, availability *AvailabilityService) *MutationService {
	return &MutationService{
		statuses:     statuses,
		blocks:       blocks,
		adjustments:  adjustments,
		unitProducts: unitProducts,
		availability: availability,
	}
}

// SetUnitStatus transitions a physical unit's per-date status and reconciles
// every product the unit is assigned to.
func (s *MutationService) SetUnitStatus(ctx context.Context, hotelID, unitID int64, from, to time.Time, status models.UnitDailyStatus) error {
	days := models.DateRange(from, to)
	if len(days) == 0 {
		return fmt.Errorf("set unit status: %w", utils.ErrInvalidDateRange)
	}
	switch status {
	case models.UnitStatusAvailable, models.UnitStatusAssigned, models.UnitStatusOutOfOrder, models.UnitStatusOutOfInventory:
	default:
		return fmt.Errorf("set unit status %q: %w", status, utils.ErrMissingInput)
	}

	if err := s.statuses.SetStatusRange(ctx, unitID, days[0], days[len(days)-1], status); err != nil {
		return fmt.Errorf("persist unit status: %w", err)
	}

	productIDs, err := s.unitProducts.ListProductsByUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("resolve affected products: %w", err)
	}
	if len(productIDs) == 0 {
		return nil
	}
	return s.availability.Reconcile(ctx, hotelID, productIDs, days)
}

// SetBlockHold replaces a product's group-booking hold counts for a date
// range and reconciles.
func (s *MutationService) SetBlockHold(ctx context.Context, hotelID, productID int64, from, to time.Time, tentative, definite, picked int) error {
	days := models.DateRange(from, to)
	if len(days) == 0 {
		return fmt.Errorf("set block hold: %w", utils.ErrInvalidDateRange)
	}
	if tentative < 0 || definite < 0 || picked < 0 || picked > definite {
		return fmt.Errorf("set block hold counts: %w", utils.ErrMissingInput)
	}

	if err := s.blocks.SetRange(ctx, hotelID, productID, days[0], days[len(days)-1], tentative, definite, picked); err != nil {
		return fmt.Errorf("persist block hold: %w", err)
	}
	return s.availability.Reconcile(ctx, hotelID, []int64{productID}, days)
}

// ApplyAdjustment sets the manual/PMS capacity override for a date range and
// reconciles so derived fields and downstream pushes follow. The adjustment
// may be negative to restrict sale below physical capacity.
func (s *MutationService) ApplyAdjustment(ctx context.Context, hotelID, productID int64, from, to time.Time, adjustment int) error {
	days := models.DateRange(from, to)
	if len(days) == 0 {
		return fmt.Errorf("apply adjustment: %w", utils.ErrInvalidDateRange)
	}

	if err := s.adjustments.UpdateAdjustment(ctx, hotelID, productID, days[0], days[len(days)-1], adjustment); err != nil {
		return fmt.Errorf("persist adjustment: %w", err)
	}
	return s.availability.Reconcile(ctx, hotelID, []int64{productID}, days)
}
