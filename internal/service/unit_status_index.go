package service

import (
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
)

// statusKey identifies one (unit, date) status fact.
type statusKey struct {
	unitID int64
	date   string
}

// productDateKey identifies one (product, date) fact.
type productDateKey struct {
	productID int64
	date      string
}

// UnitStatusIndex is a read-only lookup over the facts one reconciliation run
// needs: per (unit, date) status, per (product, date) block holds and
// unassigned-sale counts. Built once per run from batched range queries.
type UnitStatusIndex struct {
	statuses   map[statusKey]models.UnitDailyStatus
	holds      map[productDateKey]models.BlockHold
	unassigned map[productDateKey]int
}

// NewUnitStatusIndex builds the index from pre-loaded fact rows.
func NewUnitStatusIndex(statuses []models.UnitDailyStatusRow, holds []models.BlockHold, sales []models.UnassignedSaleCount) *UnitStatusIndex {
	idx := &UnitStatusIndex{
		statuses:   make(map[statusKey]models.UnitDailyStatus, len(statuses)),
		holds:      make(map[productDateKey]models.BlockHold, len(holds)),
		unassigned: make(map[productDateKey]int, len(sales)),
	}
	for _, row := range statuses {
		idx.statuses[statusKey{row.UnitID, models.DateKey(row.Date)}] = row.Status
	}
	for _, h := range holds {
		idx.holds[productDateKey{h.ProductID, models.DateKey(h.Date)}] = h
	}
	for _, s := range sales {
		idx.unassigned[productDateKey{s.ProductID, models.DateKey(s.Date)}] = s.Count
	}
	return idx
}

// Status returns a unit's status on a date. A unit with no stored row for the
// date is available: status rows are written only when something happens to
// the unit.
func (idx *UnitStatusIndex) Status(unitID int64, date time.Time) models.UnitDailyStatus {
	if s, ok := idx.statuses[statusKey{unitID, models.DateKey(date)}]; ok {
		return s
	}
	return models.UnitStatusAvailable
}

// StatusCounts tallies the given units by status for one date.
func (idx *UnitStatusIndex) StatusCounts(unitIDs []int64, date time.Time) map[models.UnitDailyStatus]int {
	counts := make(map[models.UnitDailyStatus]int, 4)
	for _, id := range unitIDs {
		counts[idx.Status(id, date)]++
	}
	return counts
}

// AllAvailable reports whether every given unit is AVAILABLE on the date.
func (idx *UnitStatusIndex) AllAvailable(unitIDs []int64, date time.Time) bool {
	for _, id := range unitIDs {
		if idx.Status(id, date) != models.UnitStatusAvailable {
			return false
		}
	}
	return true
}

// NetHold returns the group-booking capacity withheld for (product, date).
func (idx *UnitStatusIndex) NetHold(productID int64, date time.Time) int {
	if h, ok := idx.holds[productDateKey{productID, models.DateKey(date)}]; ok {
		return h.NetHold()
	}
	return 0
}

// UnassignedSold returns the count of sold-but-unassigned units for
// (product, date).
func (idx *UnitStatusIndex) UnassignedSold(productID int64, date time.Time) int {
	return idx.unassigned[productDateKey{productID, models.DateKey(date)}]
}
