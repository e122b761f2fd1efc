package cache

import (
	"testing"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
)

func availRow() models.ProductDailyAvailability {
	return models.ProductDailyAvailability{
		HotelID:        1,
		ProductID:      2,
		Date:           time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Available:      5,
		Sold:           3,
		SoldUnassigned: 1,
		SellLimit:      10,
		Adjustment:     -2,
	}
}

func TestContentHashStable(t *testing.T) {
	a, b := availRow(), availRow()
	if ContentHash(&a) != ContentHash(&b) {
		t.Fatal("identical rows must hash equal")
	}

	// Fields outside the content tuple do not affect the hash.
	b.ID = 999
	b.UpdatedAt = time.Now()
	if ContentHash(&a) != ContentHash(&b) {
		t.Fatal("id/updated_at must not affect the hash")
	}
}

func TestContentHashSensitivity(t *testing.T) {
	base := availRow()
	mutations := []func(*models.ProductDailyAvailability){
		func(r *models.ProductDailyAvailability) { r.Available++ },
		func(r *models.ProductDailyAvailability) { r.Sold++ },
		func(r *models.ProductDailyAvailability) { r.SoldUnassigned++ },
		func(r *models.ProductDailyAvailability) { r.SellLimit++ },
		func(r *models.ProductDailyAvailability) { r.Adjustment++ },
		func(r *models.ProductDailyAvailability) { r.Date = r.Date.AddDate(0, 0, 1) },
		func(r *models.ProductDailyAvailability) { r.ProductID++ },
		func(r *models.ProductDailyAvailability) { r.HotelID++ },
	}
	for i, mutate := range mutations {
		row := availRow()
		mutate(&row)
		if ContentHash(&row) == ContentHash(&base) {
			t.Fatalf("mutation %d did not change the hash", i)
		}
	}
}

func TestChangeKeyFormat(t *testing.T) {
	got := changeKey(1, 2, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))
	if got != "avail:hash:1:2:2026-09-14" {
		t.Fatalf("changeKey = %q", got)
	}
}
