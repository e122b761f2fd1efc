package models

import (
	"testing"
	"time"
)

func TestDayTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	got := Day(time.Date(2026, 9, 14, 23, 45, 0, 0, loc))
	want := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Day = %s, want %s", got, want)
	}
}

func TestDateRangeInclusive(t *testing.T) {
	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	days := DateRange(from, from.AddDate(0, 0, 2))
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	if DateKey(days[0]) != "2026-09-14" || DateKey(days[2]) != "2026-09-16" {
		t.Fatalf("range = %s..%s", DateKey(days[0]), DateKey(days[2]))
	}
}

func TestDateRangeReversedIsEmpty(t *testing.T) {
	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	if days := DateRange(from, from.AddDate(0, 0, -1)); days != nil {
		t.Fatalf("reversed range = %v, want nil", days)
	}
}

func TestBlockHoldNetHold(t *testing.T) {
	h := BlockHold{Tentative: 9, Definite: 5, Picked: 2}
	if got := h.NetHold(); got != 3 {
		t.Fatalf("NetHold = %d, want 3", got)
	}
}

func TestAvailabilityCapacity(t *testing.T) {
	a := ProductDailyAvailability{SellLimit: 10, Adjustment: -3}
	if got := a.Capacity(); got != 7 {
		t.Fatalf("Capacity = %d, want 7", got)
	}
}

func TestTaxAppliesOn(t *testing.T) {
	tax := Tax{
		ValidFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if !tax.AppliesOn(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("date inside window should apply")
	}
	if tax.AppliesOn(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("date after window should not apply")
	}
}
