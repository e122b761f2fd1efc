package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

type recordingBlockWriter struct {
	calls     int
	tentative int
	definite  int
	picked    int
}

func (w *recordingBlockWriter) SetRange(ctx context.Context, hotelID, productID int64, from, to time.Time, tentative, definite, picked int) error {
	w.calls++
	w.tentative, w.definite, w.picked = tentative, definite, picked
	return nil
}

type recordingAdjustmentWriter struct {
	calls      int
	adjustment int
}

func (w *recordingAdjustmentWriter) UpdateAdjustment(ctx context.Context, hotelID, productID int64, from, to time.Time, adjustment int) error {
	w.calls++
	w.adjustment = adjustment
	return nil
}

type fakeUnitLookup struct{ productIDs []int64 }

func (f *fakeUnitLookup) ListProductsByUnit(ctx context.Context, unitID int64) ([]int64, error) {
	return f.productIDs, nil
}

func newMutationFixture(productIDs []int64) (*MutationService, *recordingStatusWriter, *recordingBlockWriter, *recordingAdjustmentWriter, *aggregatorFixture) {
	agg := newAggregatorFixture(
		[]models.Product{poolProduct(10)},
		assignUnits(10, 1, 2),
		nil, nil, nil,
	)
	statuses := &recordingStatusWriter{}
	blocks := &recordingBlockWriter{}
	adjustments := &recordingAdjustmentWriter{}
	svc := NewMutationService(statuses, blocks, adjustments, &fakeUnitLookup{productIDs: productIDs}, agg.svc)
	return svc, statuses, blocks, adjustments, agg
}

func TestSetUnitStatusReconcilesAffectedProducts(t *testing.T) {
	svc, statuses, _, _, agg := newMutationFixture([]int64{10})

	err := svc.SetUnitStatus(context.Background(), 1, 1, day, day.AddDate(0, 0, 2), models.UnitStatusOutOfOrder)
	if err != nil {
		t.Fatalf("SetUnitStatus: %v", err)
	}
	if len(statuses.unitIDs) != 1 || statuses.statuses[0] != models.UnitStatusOutOfOrder {
		t.Fatalf("status writes = %v %v", statuses.unitIDs, statuses.statuses)
	}
	if agg.repo.upserts == 0 {
		t.Fatal("reconciliation wrote nothing")
	}
}

func TestSetUnitStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _, _ := newMutationFixture([]int64{10})
	err := svc.SetUnitStatus(context.Background(), 1, 1, day, day, models.UnitDailyStatus("BROKEN"))
	if !errors.Is(err, utils.ErrMissingInput) {
		t.Fatalf("got %v, want ErrMissingInput", err)
	}
}

func TestSetUnitStatusNoAssignedProducts(t *testing.T) {
	svc, _, _, _, agg := newMutationFixture(nil)
	if err := svc.SetUnitStatus(context.Background(), 1, 99, day, day, models.UnitStatusAvailable); err != nil {
		t.Fatalf("SetUnitStatus: %v", err)
	}
	if agg.repo.upserts != 0 {
		t.Fatal("reconciliation should be skipped when the unit serves no products")
	}
}

func TestSetBlockHoldValidation(t *testing.T) {
	svc, _, blocks, _, _ := newMutationFixture([]int64{10})

	// picked may not exceed definite
	err := svc.SetBlockHold(context.Background(), 1, 10, day, day, 0, 1, 2)
	if !errors.Is(err, utils.ErrMissingInput) {
		t.Fatalf("got %v, want ErrMissingInput", err)
	}
	if blocks.calls != 0 {
		t.Fatal("invalid hold must not be persisted")
	}

	if err := svc.SetBlockHold(context.Background(), 1, 10, day, day, 3, 2, 1); err != nil {
		t.Fatalf("SetBlockHold: %v", err)
	}
	if blocks.calls != 1 || blocks.definite != 2 {
		t.Fatalf("block write calls=%d definite=%d", blocks.calls, blocks.definite)
	}
}

func TestApplyAdjustmentPersistsAndReconciles(t *testing.T) {
	svc, _, _, adjustments, agg := newMutationFixture([]int64{10})

	if err := svc.ApplyAdjustment(context.Background(), 1, 10, day, day.AddDate(0, 0, 1), -2); err != nil {
		t.Fatalf("ApplyAdjustment: %v", err)
	}
	if adjustments.calls != 1 || adjustments.adjustment != -2 {
		t.Fatalf("adjustment write calls=%d value=%d", adjustments.calls, adjustments.adjustment)
	}
	if agg.repo.upserts == 0 {
		t.Fatal("reconciliation wrote nothing")
	}
}

func TestMutationInvalidRanges(t *testing.T) {
	svc, _, _, _, _ := newMutationFixture([]int64{10})
	bad := day.AddDate(0, 0, -1)

	if err := svc.SetUnitStatus(context.Background(), 1, 1, day, bad, models.UnitStatusAvailable); !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("SetUnitStatus: got %v, want ErrInvalidDateRange", err)
	}
	if err := svc.SetBlockHold(context.Background(), 1, 10, day, bad, 0, 0, 0); !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("SetBlockHold: got %v, want ErrInvalidDateRange", err)
	}
	if err := svc.ApplyAdjustment(context.Background(), 1, 10, day, bad, 1); !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("ApplyAdjustment: got %v, want ErrInvalidDateRange", err)
	}
}
