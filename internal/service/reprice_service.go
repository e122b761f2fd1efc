package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/pricing"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// Catalog contracts the repricer needs to resolve products and plans.
type ProductCatalog interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	ListRatePlanIDs(ctx context.Context, productID int64) ([]int64, error)
	ListActiveByHotel(ctx context.Context, hotelID int64) ([]models.Product, error)
}

type RatePlanCatalog interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.RatePlan, error)
	GetByID(ctx context.Context, id int64) (*models.RatePlan, error)
}

// RatePlanAdjustmentWriter persists rate-plan daily adjustments.
type RatePlanAdjustmentWriter interface {
	UpsertAdjustmentRange(ctx context.Context, ratePlanID int64, from, to time.Time, value decimal.Decimal, unit models.AdjustmentUnit) error
}

// RepriceService drives selling price recomputation when price-affecting
// inputs change: rate-plan adjustments, feature edits, base prices, or
// availability-triggered recomputes from the aggregator.
type RepriceService struct {
	products    ProductCatalog
	ratePlans   RatePlanCatalog
	adjustments RatePlanAdjustmentWriter
	composer    *pricing.Composer
}

// NewRepriceService constructs a RepriceService.
func NewRepriceService(products ProductCatalog, ratePlans RatePlanCatalog, adjustments RatePlanAdjustmentWriter, composer *pricing.Composer) *RepriceService {
	return &RepriceService{
		products:    products,
		ratePlans:   ratePlans,
		adjustments: adjustments,
		composer:    composer,
	}
}

// RecomputeForProducts recomputes prices for every rate plan assigned to the
// given products over the given dates. Invoked fire-and-forget after
// availability changes persist.
func (s *RepriceService) RecomputeForProducts(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error {
	if len(productIDs) == 0 || len(dates) == 0 {
		return nil
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	from, to := sorted[0], sorted[len(sorted)-1]

	products, err := s.products.ListByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	for i := range products {
		product := &products[i]
		planIDs, err := s.products.ListRatePlanIDs(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("load rate plan assignments: %w", err)
		}
		if len(planIDs) == 0 {
			continue
		}
		plans, err := s.ratePlans.ListByIDs(ctx, planIDs)
		if err != nil {
			return fmt.Errorf("load rate plans: %w", err)
		}
		for j := range plans {
			plan := &plans[j]
			if plan.PricingMethodology != models.PricingFeatureBased {
				continue
			}
			if err := s.composer.ComposeRange(ctx, product, plan, from, to, nil); err != nil {
				return fmt.Errorf("recompute product %d plan %d: %w", product.ID, plan.ID, err)
			}
		}
	}
	return nil
}

// ApplyRatePlanAdjustment persists a rate-plan daily adjustment over a date
// range and synchronously recomputes the affected selling prices.
func (s *RepriceService) ApplyRatePlanAdjustment(ctx context.Context, hotelID, ratePlanID int64, from, to time.Time, value decimal.Decimal, unit models.AdjustmentUnit) error {
	days := models.DateRange(from, to)
	if len(days) == 0 {
		return fmt.Errorf("apply rate plan adjustment: %w", utils.ErrInvalidDateRange)
	}
	if unit != models.AdjustmentFixed && unit != models.AdjustmentPercentage {
		return fmt.Errorf("apply rate plan adjustment unit %q: %w", unit, utils.ErrInvalidAdjustment)
	}

	plan, err := s.ratePlans.GetByID(ctx, ratePlanID)
	if err != nil {
		return fmt.Errorf("load rate plan: %w", err)
	}
	if plan == nil {
		return fmt.Errorf("apply rate plan adjustment: %w", utils.ErrRatePlanNotFound)
	}

	if err := s.adjustments.UpsertAdjustmentRange(ctx, ratePlanID, days[0], days[len(days)-1], value, unit); err != nil {
		return fmt.Errorf("persist rate plan adjustment: %w", err)
	}

	products, err := s.products.ListActiveByHotel(ctx, hotelID)
	if err != nil {
		return fmt.Errorf("load hotel products: %w", err)
	}
	for i := range products {
		product := &products[i]
		planIDs, err := s.products.ListRatePlanIDs(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("load rate plan assignments: %w", err)
		}
		for _, id := range planIDs {
			if id != ratePlanID {
				continue
			}
			if err := s.composer.ComposeRange(ctx, product, plan, days[0], days[len(days)-1], nil); err != nil {
				return fmt.Errorf("recompute product %d: %w", product.ID, err)
			}
		}
	}
	log.Info().
		Int64("rate_plan_id", ratePlanID).
		Int("days", len(days)).
		Msg("rate plan adjustment applied")
	return nil
}
