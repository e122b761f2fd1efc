package service

import (
	"testing"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
)

var day = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

func TestStatusDefaultsToAvailable(t *testing.T) {
	idx := NewUnitStatusIndex(nil, nil, nil)
	if got := idx.Status(42, day); got != models.UnitStatusAvailable {
		t.Fatalf("missing row status = %s, want AVAILABLE", got)
	}
}

func TestStatusCounts(t *testing.T) {
	idx := NewUnitStatusIndex([]models.UnitDailyStatusRow{
		{UnitID: 1, Date: day, Status: models.UnitStatusAssigned},
		{UnitID: 2, Date: day, Status: models.UnitStatusOutOfOrder},
		{UnitID: 3, Date: day, Status: models.UnitStatusOutOfInventory},
	}, nil, nil)

	counts := idx.StatusCounts([]int64{1, 2, 3, 4, 5}, day)
	if counts[models.UnitStatusAssigned] != 1 {
		t.Fatalf("assigned = %d, want 1", counts[models.UnitStatusAssigned])
	}
	if counts[models.UnitStatusOutOfOrder] != 1 {
		t.Fatalf("out of order = %d, want 1", counts[models.UnitStatusOutOfOrder])
	}
	if counts[models.UnitStatusOutOfInventory] != 1 {
		t.Fatalf("out of inventory = %d, want 1", counts[models.UnitStatusOutOfInventory])
	}
	// Units 4 and 5 have no rows and count as available.
	if counts[models.UnitStatusAvailable] != 2 {
		t.Fatalf("available = %d, want 2", counts[models.UnitStatusAvailable])
	}
}

func TestStatusIsPerDate(t *testing.T) {
	idx := NewUnitStatusIndex([]models.UnitDailyStatusRow{
		{UnitID: 1, Date: day, Status: models.UnitStatusAssigned},
	}, nil, nil)

	if got := idx.Status(1, day); got != models.UnitStatusAssigned {
		t.Fatalf("status on stored date = %s, want ASSIGNED", got)
	}
	if got := idx.Status(1, day.AddDate(0, 0, 1)); got != models.UnitStatusAvailable {
		t.Fatalf("status on other date = %s, want AVAILABLE", got)
	}
}

func TestAllAvailable(t *testing.T) {
	idx := NewUnitStatusIndex([]models.UnitDailyStatusRow{
		{UnitID: 2, Date: day, Status: models.UnitStatusOutOfOrder},
	}, nil, nil)

	if !idx.AllAvailable([]int64{1, 3}, day) {
		t.Fatal("units without rows should all be available")
	}
	if idx.AllAvailable([]int64{1, 2, 3}, day) {
		t.Fatal("an out-of-order unit must fail AllAvailable")
	}
}

func TestNetHold(t *testing.T) {
	idx := NewUnitStatusIndex(nil, []models.BlockHold{
		{ProductID: 9, Date: day, Tentative: 5, Definite: 4, Picked: 1},
	}, nil)

	if got := idx.NetHold(9, day); got != 3 {
		t.Fatalf("net hold = %d, want 3 (definite-picked, tentative ignored)", got)
	}
	if got := idx.NetHold(9, day.AddDate(0, 0, 1)); got != 0 {
		t.Fatalf("net hold without row = %d, want 0", got)
	}
}

func TestNetHoldNeverNegative(t *testing.T) {
	idx := NewUnitStatusIndex(nil, []models.BlockHold{
		{ProductID: 9, Date: day, Definite: 1, Picked: 3},
	}, nil)
	if got := idx.NetHold(9, day); got != 0 {
		t.Fatalf("net hold = %d, want 0 when picked exceeds definite", got)
	}
}

func TestUnassignedSold(t *testing.T) {
	idx := NewUnitStatusIndex(nil, nil, []models.UnassignedSaleCount{
		{ProductID: 9, Date: day, Count: 2},
	})
	if got := idx.UnassignedSold(9, day); got != 2 {
		t.Fatalf("unassigned sold = %d, want 2", got)
	}
	if got := idx.UnassignedSold(10, day); got != 0 {
		t.Fatalf("unassigned sold for other product = %d, want 0", got)
	}
}
