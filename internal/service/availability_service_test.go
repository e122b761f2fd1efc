package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// In-memory fakes for the aggregator's dependencies.

type fakeProducts struct{ products []models.Product }

func (f *fakeProducts) ListByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	return f.products, nil
}

type fakeAssignments struct{ rows []models.ProductUnitAssignment }

func (f *fakeAssignments) ListByProducts(ctx context.Context, productIDs []int64) ([]models.ProductUnitAssignment, error) {
	return f.rows, nil
}

type fakeStatuses struct{ rows []models.UnitDailyStatusRow }

func (f *fakeStatuses) GetStatuses(ctx context.Context, unitIDs []int64, from, to time.Time) ([]models.UnitDailyStatusRow, error) {
	return f.rows, nil
}

type fakeBlocks struct{ rows []models.BlockHold }

func (f *fakeBlocks) GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.BlockHold, error) {
	return f.rows, nil
}

type fakeUnassigned struct{ rows []models.UnassignedSaleCount }

func (f *fakeUnassigned) CountRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.UnassignedSaleCount, error) {
	return f.rows, nil
}

type fakeAvailabilityRepo struct {
	stored  map[string]models.ProductDailyAvailability
	upserts int
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{stored: make(map[string]models.ProductDailyAvailability)}
}

func availKey(r *models.ProductDailyAvailability) string {
	return fmt.Sprintf("%d|%d|%s", r.HotelID, r.ProductID, models.DateKey(r.Date))
}

func (f *fakeAvailabilityRepo) GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.ProductDailyAvailability, error) {
	out := make([]models.ProductDailyAvailability, 0, len(f.stored))
	for _, r := range f.stored {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) UpsertBatch(ctx context.Context, rows []models.ProductDailyAvailability) error {
	f.upserts += len(rows)
	for i := range rows {
		f.stored[availKey(&rows[i])] = rows[i]
	}
	return nil
}

// memoryChangeCache mirrors the Redis-backed cache's diffing contract with a
// plain map of content tuples.
type memoryChangeCache struct{ hashes map[string]string }

func newMemoryChangeCache() *memoryChangeCache {
	return &memoryChangeCache{hashes: make(map[string]string)}
}

func contentTuple(r *models.ProductDailyAvailability) string {
	return fmt.Sprintf("%d|%d|%d|%d|%d", r.Available, r.Sold, r.SoldUnassigned, r.SellLimit, r.Adjustment)
}

func (c *memoryChangeCache) FilterChanged(ctx context.Context, rows []models.ProductDailyAvailability) []models.ProductDailyAvailability {
	changed := make([]models.ProductDailyAvailability, 0, len(rows))
	for i := range rows {
		if c.hashes[availKey(&rows[i])] != contentTuple(&rows[i]) {
			changed = append(changed, rows[i])
		}
	}
	return changed
}

func (c *memoryChangeCache) Store(ctx context.Context, rows []models.ProductDailyAvailability) {
	for i := range rows {
		c.hashes[availKey(&rows[i])] = contentTuple(&rows[i])
	}
}

// inlineDispatcher runs submitted tasks synchronously.
type inlineDispatcher struct{ names []string }

func (d *inlineDispatcher) Submit(name string, task func(ctx context.Context) error) {
	d.names = append(d.names, name)
	_ = task(context.Background())
}

type noopRestrictions struct{ calls int }

func (r *noopRestrictions) Apply(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error {
	r.calls++
	return nil
}

type noopRepricer struct{ calls int }

func (r *noopRepricer) RecomputeForProducts(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error {
	r.calls++
	return nil
}

type recordingQueuer struct {
	codes  []string
	limits []int
}

func (q *recordingQueuer) QueueAdjustmentChange(hotelID int64, code string, date time.Time, limit int) {
	q.codes = append(q.codes, code)
	q.limits = append(q.limits, limit)
}

type noopNotifier struct{ rows int }

func (n *noopNotifier) NotifyAvailabilityChanged(rows []models.ProductDailyAvailability) {
	n.rows += len(rows)
}

type aggregatorFixture struct {
	svc          *AvailabilityService
	repo         *fakeAvailabilityRepo
	cache        *memoryChangeCache
	dispatcher   *inlineDispatcher
	restrictions *noopRestrictions
	repricer     *noopRepricer
	queuer       *recordingQueuer
	notifier     *noopNotifier
}

func newAggregatorFixture(products []models.Product, assignments []models.ProductUnitAssignment, statuses []models.UnitDailyStatusRow, holds []models.BlockHold, sales []models.UnassignedSaleCount) *aggregatorFixture {
	f := &aggregatorFixture{
		repo:         newFakeAvailabilityRepo(),
		cache:        newMemoryChangeCache(),
		dispatcher:   &inlineDispatcher{},
		restrictions: &noopRestrictions{},
		repricer:     &noopRepricer{},
		queuer:       &recordingQueuer{},
		notifier:     &noopNotifier{},
	}
	f.svc = NewAvailabilityService(
		&fakeProducts{products: products},
		&fakeAssignments{rows: assignments},
		&fakeStatuses{rows: statuses},
		&fakeBlocks{rows: holds},
		&fakeUnassigned{rows: sales},
		f.repo,
		f.cache,
		f.dispatcher,
		f.restrictions,
		f.repricer,
		f.queuer,
		f.notifier,
	)
	return f
}

func poolProduct(id int64) models.Product {
	return models.Product{
		ID: id, HotelID: 1, Code: fmt.Sprintf("P%d", id),
		Type: models.ProductTypeBase, AllocationPolicy: models.AllocationPool,
		MappingCode: fmt.Sprintf("MAP%d", id), IsActive: true,
	}
}

func assignUnits(productID int64, unitIDs ...int64) []models.ProductUnitAssignment {
	out := make([]models.ProductUnitAssignment, 0, len(unitIDs))
	for _, u := range unitIDs {
		out = append(out, models.ProductUnitAssignment{ProductID: productID, UnitID: u})
	}
	return out
}

func TestReconcilePoolMath(t *testing.T) {
	// 10 units: 2 assigned, 1 out of order, 7 free. Block hold withholds
	// definite-picked = 1. One unassigned sale. Expect:
	//   sold = 2 assigned + 1 unassigned = 3
	//   available = 7 + 0 - 1 - 1 = 5
	f := newAggregatorFixture(
		[]models.Product{poolProduct(10)},
		assignUnits(10, 1, 2, 3, 4, 5, 6, 7, 8, 9, 11),
		[]models.UnitDailyStatusRow{
			{UnitID: 1, Date: day, Status: models.UnitStatusAssigned},
			{UnitID: 2, Date: day, Status: models.UnitStatusAssigned},
			{UnitID: 3, Date: day, Status: models.UnitStatusOutOfOrder},
		},
		[]models.BlockHold{{ProductID: 10, Date: day, Definite: 2, Picked: 1}},
		[]models.UnassignedSaleCount{{ProductID: 10, Date: day, Count: 1}},
	)

	if err := f.svc.Reconcile(context.Background(), 1, []int64{10}, []time.Time{day}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	row, ok := f.repo.stored["1|10|"+models.DateKey(day)]
	if !ok {
		t.Fatal("no row written")
	}
	if row.SellLimit != 10 {
		t.Fatalf("SellLimit = %d, want 10", row.SellLimit)
	}
	if row.Sold != 3 {
		t.Fatalf("Sold = %d, want 3", row.Sold)
	}
	if row.SoldUnassigned != 1 {
		t.Fatalf("SoldUnassigned = %d, want 1", row.SoldUnassigned)
	}
	if row.Available != 5 {
		t.Fatalf("Available = %d, want 5", row.Available)
	}
}

func TestReconcileAvailableNeverNegative(t *testing.T) {
	// A strongly negative adjustment clamps available at zero.
	repo := newFakeAvailabilityRepo()
	prior := models.ProductDailyAvailability{HotelID: 1, ProductID: 10, Date: day, Adjustment: -50}
	repo.stored[availKey(&prior)] = prior

	f := newAggregatorFixture([]models.Product{poolProduct(10)}, assignUnits(10, 1, 2, 3), nil, nil, nil)
	f.svc.availability = repo
	f.repo = repo

	if err := f.svc.Reconcile(context.Background(), 1, []int64{10}, []time.Time{day}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	row := f.repo.stored["1|10|"+models.DateKey(day)]
	if row.Available != 0 {
		t.Fatalf("Available = %d, want 0", row.Available)
	}
	if row.Adjustment != -50 {
		t.Fatalf("Adjustment = %d, want -50 (carried over)", row.Adjustment)
	}
}

func TestReconcileAllPolicy(t *testing.T) {
	product := poolProduct(20)
	product.AllocationPolicy = models.AllocationAll
	product.Type = models.ProductTypeMerged

	f := newAggregatorFixture(
		[]models.Product{product},
		assignUnits(20, 1, 2, 3),
		nil, nil, nil,
	)
	if err := f.svc.Reconcile(context.Background(), 1, []int64{20}, []time.Time{day}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	row := f.repo.stored["1|20|"+models.DateKey(day)]
	if row.Available != 1 || row.Sold != 0 || row.SellLimit != 1 {
		t.Fatalf("all free: available/sold/sellLimit = %d/%d/%d, want 1/0/1", row.Available, row.Sold, row.SellLimit)
	}

	// One unit becomes assigned: the whole combination product closes.
	f2 := newAggregatorFixture(
		[]models.Product{product},
		assignUnits(20, 1, 2, 3),
		[]models.UnitDailyStatusRow{{UnitID: 2, Date: day, Status: models.UnitStatusAssigned}},
		nil, nil,
	)
	if err := f2.svc.Reconcile(context.Background(), 1, []int64{20}, []time.Time{day}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	row = f2.repo.stored["1|20|"+models.DateKey(day)]
	if row.Available != 0 || row.Sold != 1 {
		t.Fatalf("one assigned: available/sold = %d/%d, want 0/1", row.Available, row.Sold)
	}
}

func TestReconcileDiffSuppression(t *testing.T) {
	f := newAggregatorFixture(
		[]models.Product{poolProduct(10)},
		assignUnits(10, 1, 2, 3),
		nil, nil, nil,
	)
	ctx := context.Background()
	dates := models.DateRange(day, day.AddDate(0, 0, 6))

	if err := f.svc.Reconcile(ctx, 1, []int64{10}, dates); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	first := f.repo.upserts
	if first != 7 {
		t.Fatalf("first run wrote %d rows, want 7", first)
	}

	// Nothing changed: the second run must not write at all.
	if err := f.svc.Reconcile(ctx, 1, []int64{10}, dates); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if f.repo.upserts != first {
		t.Fatalf("second run wrote %d extra rows, want 0", f.repo.upserts-first)
	}
	if f.notifier.rows != 7 {
		t.Fatalf("notifier saw %d rows, want 7 (only the first run)", f.notifier.rows)
	}
}

func TestReconcileFanOut(t *testing.T) {
	f := newAggregatorFixture(
		[]models.Product{poolProduct(10)},
		assignUnits(10, 1, 2),
		nil, nil, nil,
	)
	if err := f.svc.Reconcile(context.Background(), 1, []int64{10}, []time.Time{day}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(f.queuer.codes) != 1 || f.queuer.codes[0] != "MAP10" {
		t.Fatalf("queued codes = %v, want [MAP10]", f.queuer.codes)
	}
	if f.queuer.limits[0] != 2 {
		t.Fatalf("queued booking limit = %d, want 2", f.queuer.limits[0])
	}
	if f.restrictions.calls != 1 {
		t.Fatalf("restriction automation calls = %d, want 1", f.restrictions.calls)
	}
	if f.repricer.calls != 1 {
		t.Fatalf("repricer calls = %d, want 1", f.repricer.calls)
	}
}

func TestReconcileValidation(t *testing.T) {
	f := newAggregatorFixture(nil, nil, nil, nil, nil)
	err := f.svc.Reconcile(context.Background(), 1, nil, []time.Time{day})
	if !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("got %v, want ErrInvalidDateRange", err)
	}
	err = f.svc.Reconcile(context.Background(), 1, []int64{10}, nil)
	if !errors.Is(err, utils.ErrInvalidDateRange) {
		t.Fatalf("got %v, want ErrInvalidDateRange", err)
	}
}

func TestNormalizeDates(t *testing.T) {
	noon := time.Date(2026, 9, 16, 12, 30, 0, 0, time.UTC)
	days := normalizeDates([]time.Time{noon, day, day, noon.AddDate(0, 0, -1)})
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	if !days[0].Equal(day) {
		t.Fatalf("first day = %s, want %s", days[0], day)
	}
	for _, d := range days {
		if d.Hour() != 0 || d.Location() != time.UTC {
			t.Fatalf("day %s not truncated to UTC midnight", d)
		}
	}
}
