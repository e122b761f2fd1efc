package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

type recordingStatusWriter struct {
	unitIDs  []int64
	statuses []models.UnitDailyStatus
}

func (w *recordingStatusWriter) SetStatusRange(ctx context.Context, unitID int64, from, to time.Time, status models.UnitDailyStatus) error {
	w.unitIDs = append(w.unitIDs, unitID)
	w.statuses = append(w.statuses, status)
	return nil
}

type recordingSaleWriter struct {
	created []string
	deleted []string
	failing bool
}

func (w *recordingSaleWriter) CreateRange(ctx context.Context, hotelID, productID int64, from, to time.Time, reservationID string) error {
	if w.failing {
		return errors.New("insert failed")
	}
	w.created = append(w.created, reservationID)
	return nil
}

func (w *recordingSaleWriter) DeleteByReservation(ctx context.Context, reservationID string) error {
	w.deleted = append(w.deleted, reservationID)
	return nil
}

func TestCommitOversellPath(t *testing.T) {
	night2 := day.AddDate(0, 0, 1)
	ledger := newFakeLedger(
		models.ProductDailyAvailability{HotelID: 1, ProductID: 2, Date: day, SellLimit: 0, Adjustment: 1, Available: 1},
		models.ProductDailyAvailability{HotelID: 1, ProductID: 2, Date: night2, SellLimit: 0, Adjustment: 1, Available: 1},
	)
	sales := &recordingSaleWriter{}
	svc := NewReservationService(&recordingStatusWriter{}, sales, NewOverbookingService(ledger), nil)

	// Two-night stay: arrival day, departure day+2.
	err := svc.Commit(context.Background(), 1, 2, day, day.AddDate(0, 0, 2), nil, "RES-1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ledger.increments != 2 {
		t.Fatalf("increments = %d, want 2 (one per night)", ledger.increments)
	}
	if len(sales.created) != 1 || sales.created[0] != "RES-1" {
		t.Fatalf("created sales = %v, want [RES-1]", sales.created)
	}
}

func TestCommitOversellRevertsOnCapacityFailure(t *testing.T) {
	night2 := day.AddDate(0, 0, 1)
	// Night one has oversell capacity, night two is already full.
	ledger := newFakeLedger(
		models.ProductDailyAvailability{HotelID: 1, ProductID: 2, Date: day, SellLimit: 0, Adjustment: 1, Available: 1},
		models.ProductDailyAvailability{HotelID: 1, ProductID: 2, Date: night2, SellLimit: 0, Adjustment: 1, Sold: 1, Available: 0},
	)
	sales := &recordingSaleWriter{}
	svc := NewReservationService(&recordingStatusWriter{}, sales, NewOverbookingService(ledger), nil)

	err := svc.Commit(context.Background(), 1, 2, day, day.AddDate(0, 0, 2), nil, "RES-2")
	var capErr *CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("got %v, want CapacityExceededError", err)
	}
	if len(sales.created) != 0 {
		t.Fatalf("sales created on failed commit: %v", sales.created)
	}
	// The first night's increment must have been reverted.
	row, _ := ledger.Get(context.Background(), 1, 2, day)
	if row.Sold != 0 {
		t.Fatalf("night one sold = %d, want 0 after revert", row.Sold)
	}
}

func TestCommitOversellRevertsWhenSaleInsertFails(t *testing.T) {
	ledger := newFakeLedger(
		models.ProductDailyAvailability{HotelID: 1, ProductID: 2, Date: day, SellLimit: 0, Adjustment: 2, Available: 2},
	)
	sales := &recordingSaleWriter{failing: true}
	svc := NewReservationService(&recordingStatusWriter{}, sales, NewOverbookingService(ledger), nil)

	err := svc.Commit(context.Background(), 1, 2, day, day.AddDate(0, 0, 1), nil, "RES-3")
	if err == nil {
		t.Fatal("expected error from failing sale insert")
	}
	row, _ := ledger.Get(context.Background(), 1, 2, day)
	if row.Sold != 0 {
		t.Fatalf("sold = %d, want 0 after revert", row.Sold)
	}
}

func TestCancelOversellPath(t *testing.T) {
	ledger := newFakeLedger(
		models.ProductDailyAvailability{HotelID: 1, ProductID: 2, Date: day, SellLimit: 0, Adjustment: 1, Sold: 1, Available: 0},
	)
	sales := &recordingSaleWriter{}
	svc := NewReservationService(&recordingStatusWriter{}, sales, NewOverbookingService(ledger), nil)

	if err := svc.Cancel(context.Background(), 1, 2, day, day.AddDate(0, 0, 1), nil, "RES-4"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(sales.deleted) != 1 || sales.deleted[0] != "RES-4" {
		t.Fatalf("deleted = %v, want [RES-4]", sales.deleted)
	}
	row, _ := ledger.Get(context.Background(), 1, 2, day)
	if row.Sold != 0 {
		t.Fatalf("sold = %d, want 0 after cancel", row.Sold)
	}
}

func TestCommitUnitPathMarksUnitsAssigned(t *testing.T) {
	f := newAggregatorFixture(
		[]models.Product{poolProduct(2)},
		assignUnits(2, 7, 8),
		nil, nil, nil,
	)
	statuses := &recordingStatusWriter{}
	svc := NewReservationService(statuses, &recordingSaleWriter{}, NewOverbookingService(newFakeLedger()), f.svc)

	err := svc.Commit(context.Background(), 1, 2, day, day.AddDate(0, 0, 1), []int64{7, 8}, "RES-5")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(statuses.unitIDs) != 2 {
		t.Fatalf("status writes = %d, want 2", len(statuses.unitIDs))
	}
	for _, s := range statuses.statuses {
		if s != models.UnitStatusAssigned {
			t.Fatalf("status = %s, want ASSIGNED", s)
		}
	}
}

func TestCommitInvalidStay(t *testing.T) {
	svc := NewReservationService(&recordingStatusWriter{}, &recordingSaleWriter{}, NewOverbookingService(newFakeLedger()), nil)
	err := svc.Commit(context.Background(), 1, 2, day, day, nil, "RES-6")
	if !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("got %v, want ErrInvalidDateRange (zero-night stay)", err)
	}
}

func TestStayNights(t *testing.T) {
	nights := stayNights(day, day.AddDate(0, 0, 3))
	if len(nights) != 3 {
		t.Fatalf("nights = %d, want 3 (departure day not occupied)", len(nights))
	}
	if !nights[2].Equal(day.AddDate(0, 0, 2)) {
		t.Fatalf("last night = %s, want %s", nights[2], day.AddDate(0, 0, 2))
	}
	if stayNights(day, day) != nil {
		t.Fatal("same-day stay should have no nights")
	}
}
