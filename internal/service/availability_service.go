package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// upsertChunkSize bounds the rows per availability upsert transaction. Each
// chunk commits independently; reconciliation is idempotent and safe to re-run
// after a partial failure.
const upsertChunkSize = 400

// Repository contracts consumed by the aggregator. Implemented by the sqlx
// repositories; tests substitute in-memory fakes.
type ProductReader interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

type AssignmentReader interface {
	ListByProducts(ctx context.Context, productIDs []int64) ([]models.ProductUnitAssignment, error)
}

type UnitStatusReader interface {
	GetStatuses(ctx context.Context, unitIDs []int64, from, to time.Time) ([]models.UnitDailyStatusRow, error)
}

type BlockHoldReader interface {
	GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.BlockHold, error)
}

type UnassignedSaleReader interface {
	CountRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.UnassignedSaleCount, error)
}

type AvailabilityRepository interface {
	GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.ProductDailyAvailability, error)
	UpsertBatch(ctx context.Context, rows []models.ProductDailyAvailability) error
}

// ChangeCache suppresses writes whose content hash matches the last persisted
// state. Best-effort: a missing or failing cache only costs extra writes.
type ChangeCache interface {
	FilterChanged(ctx context.Context, rows []models.ProductDailyAvailability) []models.ProductDailyAvailability
	Store(ctx context.Context, rows []models.ProductDailyAvailability)
}

// Dispatcher accepts fire-and-forget follow-up work. Failures are logged by
// the dispatcher, never surfaced to the triggering caller.
type Dispatcher interface {
	Submit(name string, task func(ctx context.Context) error)
}

// RestrictionAutomation is the downstream restriction engine, triggered after
// availability changes persist. External to this engine; best-effort.
type RestrictionAutomation interface {
	Apply(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error
}

// PriceRecomputer recomputes feature-based selling prices for the affected
// products and dates after availability changes persist.
type PriceRecomputer interface {
	RecomputeForProducts(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error
}

// AdjustmentQueuer receives debounced external-channel availability updates.
type AdjustmentQueuer interface {
	QueueAdjustmentChange(hotelID int64, productMappingCode string, date time.Time, bookingLimit int)
}

// ChangeNotifier streams persisted availability changes to connected clients.
type ChangeNotifier interface {
	NotifyAvailabilityChanged(rows []models.ProductDailyAvailability)
}

// AvailabilityService aggregates per-unit facts into per (product, date)
// availability counters and persists them with bounded write amplification.
type AvailabilityService struct {
	products     ProductReader
	assignments  AssignmentReader
	unitStatuses UnitStatusReader
	blocks       BlockHoldReader
	unassigned   UnassignedSaleReader
	availability AvailabilityRepository
	cache        ChangeCache
	dispatcher   Dispatcher
	restrictions RestrictionAutomation
	repricer     PriceRecomputer
	debouncer    AdjustmentQueuer
	notifier     ChangeNotifier
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(
	products ProductReader,
	assignments AssignmentReader,
	unitStatuses UnitStatusReader,
	blocks BlockHoldReader,
	unassigned UnassignedSaleReader,
	availability AvailabilityRepository,
	cache ChangeCache,
	dispatcher Dispatcher,
	restrictions RestrictionAutomation,
	repricer PriceRecomputer,
	debouncer AdjustmentQueuer,
	notifier ChangeNotifier,
) *AvailabilityService {
	return &AvailabilityService{
		products:     products,
		assignments:  assignments,
		unitStatuses: unitStatuses,
		blocks:       blocks,
		unassigned:   unassigned,
		availability: availability,
		cache:        cache,
		dispatcher:   dispatcher,
		restrictions: restrictions,
		repricer:     repricer,
		debouncer:    debouncer,
		notifier:     notifier,
	}
}

// Reconcile recomputes availability for every (product, date) in the cross
// product of productIDs and dates, writing only rows whose content actually
// changed. Writes are chunked, deterministically ordered and deadlock-retried.
func (s *AvailabilityService) Reconcile(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error {
	if hotelID == 0 || len(productIDs) == 0 || len(dates) == 0 {
		return fmt.Errorf("reconcile: %w", utils.ErrInvalidDateRange)
	}

	days := normalizeDates(dates)
	from, to := days[0], days[len(days)-1]

	products, err := s.products.ListByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	productByID := make(map[int64]*models.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	// Static unit assignments, grouped per product.
	assignments, err := s.assignments.ListByProducts(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("load unit assignments: %w", err)
	}
	unitsByProduct := make(map[int64][]int64, len(productIDs))
	allUnits := make([]int64, 0, len(assignments))
	seenUnits := make(map[int64]struct{}, len(assignments))
	for _, a := range assignments {
		unitsByProduct[a.ProductID] = append(unitsByProduct[a.ProductID], a.UnitID)
		if _, ok := seenUnits[a.UnitID]; !ok {
			seenUnits[a.UnitID] = struct{}{}
			allUnits = append(allUnits, a.UnitID)
		}
	}

	// One range query per fact class for the whole (unit x date) /
	// (product x date) cross product.
	var statusRows []models.UnitDailyStatusRow
	if len(allUnits) > 0 {
		statusRows, err = s.unitStatuses.GetStatuses(ctx, allUnits, from, to)
		if err != nil {
			return fmt.Errorf("load unit statuses: %w", err)
		}
	}
	holds, err := s.blocks.GetRange(ctx, productIDs, from, to)
	if err != nil {
		return fmt.Errorf("load block holds: %w", err)
	}
	sales, err := s.unassigned.CountRange(ctx, productIDs, from, to)
	if err != nil {
		return fmt.Errorf("load unassigned sales: %w", err)
	}
	idx := NewUnitStatusIndex(statusRows, holds, sales)

	// Prior rows carry the one externally-writable field: adjustment.
	prior, err := s.availability.GetRange(ctx, productIDs, from, to)
	if err != nil {
		return fmt.Errorf("load prior availability: %w", err)
	}
	adjustments := make(map[productDateKey]int, len(prior))
	for _, p := range prior {
		adjustments[productDateKey{p.ProductID, models.DateKey(p.Date)}] = p.Adjustment
	}

	rows := make([]models.ProductDailyAvailability, 0, len(productIDs)*len(days))
	for _, pid := range productIDs {
		product, ok := productByID[pid]
		if !ok {
			log.Warn().Int64("product_id", pid).Msg("unknown product in reconcile, skipping")
			continue
		}
		units := unitsByProduct[pid]
		for _, day := range days {
			adj := adjustments[productDateKey{pid, models.DateKey(day)}]
			rows = append(rows, s.computeRow(product, units, day, adj, idx))
		}
	}

	// Diff against the last persisted content; unchanged rows cost nothing.
	changed := s.cache.FilterChanged(ctx, rows)
	if len(changed) == 0 {
		log.Debug().Int64("hotel_id", hotelID).Int("rows", len(rows)).Msg("reconcile: no changes")
		return nil
	}

	// Fixed sort order keeps lock acquisition deterministic across
	// concurrent reconciliations touching overlapping rows.
	sort.Slice(changed, func(i, j int) bool {
		a, b := changed[i], changed[j]
		if a.HotelID != b.HotelID {
			return a.HotelID < b.HotelID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Date.Before(b.Date)
	})

	for start := 0; start < len(changed); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(changed) {
			end = len(changed)
		}
		chunk := changed[start:end]
		if err := WithDeadlockRetry(ctx, func() error {
			return s.availability.UpsertBatch(ctx, chunk)
		}); err != nil {
			return fmt.Errorf("upsert availability chunk: %w", err)
		}
	}

	s.cache.Store(ctx, changed)
	s.fanOut(hotelID, productByID, changed)

	log.Info().
		Int64("hotel_id", hotelID).
		Int("computed", len(rows)).
		Int("written", len(changed)).
		Msg("availability reconciled")
	return nil
}

// computeRow derives one (product, date) aggregate under the product's
// allocation policy.
func (s *AvailabilityService) computeRow(product *models.Product, units []int64, day time.Time, adjustment int, idx *UnitStatusIndex) models.ProductDailyAvailability {
	row := models.ProductDailyAvailability{
		HotelID:        product.HotelID,
		ProductID:      product.ID,
		Date:           day,
		Adjustment:     adjustment,
		SoldUnassigned: idx.UnassignedSold(product.ID, day),
	}

	if product.AllocationPolicy == models.AllocationAll {
		// Sellable only when every assigned unit is free. Effective
		// capacity is 0 or 1 and the manual adjustment does not apply.
		row.SellLimit = 1
		if len(units) > 0 && idx.AllAvailable(units, day) {
			row.Available = 1
		}
		row.Sold = 1 - row.Available
		return row
	}

	counts := idx.StatusCounts(units, day)
	row.SellLimit = len(units)
	row.Sold = counts[models.UnitStatusAssigned] + row.SoldUnassigned

	availableWithAdjustment := counts[models.UnitStatusAvailable] + adjustment -
		idx.NetHold(product.ID, day) - row.SoldUnassigned
	if availableWithAdjustment > 0 {
		row.Available = availableWithAdjustment
	}
	return row
}

// fanOut triggers downstream consumers of persisted availability changes.
// All of it is fire-and-forget: failures improve nothing by failing the
// original mutation.
func (s *AvailabilityService) fanOut(hotelID int64, products map[int64]*models.Product, written []models.ProductDailyAvailability) {
	productIDs := make([]int64, 0, len(written))
	seenProducts := make(map[int64]struct{}, len(written))
	dates := make([]time.Time, 0, len(written))
	seenDates := make(map[string]struct{}, len(written))
	for _, row := range written {
		if _, ok := seenProducts[row.ProductID]; !ok {
			seenProducts[row.ProductID] = struct{}{}
			productIDs = append(productIDs, row.ProductID)
		}
		key := models.DateKey(row.Date)
		if _, ok := seenDates[key]; !ok {
			seenDates[key] = struct{}{}
			dates = append(dates, row.Date)
		}

		if product, ok := products[row.ProductID]; ok && product.MappingCode != "" {
			s.debouncer.QueueAdjustmentChange(hotelID, product.MappingCode, row.Date, row.Available)
		}
	}

	s.notifier.NotifyAvailabilityChanged(written)

	s.dispatcher.Submit("restriction-automation", func(ctx context.Context) error {
		return s.restrictions.Apply(ctx, hotelID, productIDs, dates)
	})
	s.dispatcher.Submit("price-recompute", func(ctx context.Context) error {
		return s.repricer.RecomputeForProducts(ctx, hotelID, productIDs, dates)
	})
}

// normalizeDates truncates, de-duplicates and sorts the requested dates.
func normalizeDates(dates []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := models.Day(d)
		key := models.DateKey(day)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
