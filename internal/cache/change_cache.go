package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/models"
)

// changeCacheTTL bounds how long content hashes live. Stale entries only cost
// one redundant write when they age out.
const changeCacheTTL = 7 * 24 * time.Hour

// AvailabilityChangeCache suppresses redundant availability writes by
// comparing a content hash per (hotel, product, date) against the hash of the
// last persisted row. It is a best-effort optimization: any cache failure is
// logged and treated as a miss, never as truth about capacity.
type AvailabilityChangeCache struct {
	redis *RedisClient
}

// NewAvailabilityChangeCache creates an AvailabilityChangeCache.
func NewAvailabilityChangeCache(redis *RedisClient) *AvailabilityChangeCache {
	return &AvailabilityChangeCache{redis: redis}
}

func changeKey(hotelID, productID int64, date time.Time) string {
	return fmt.Sprintf("avail:hash:%d:%d:%s", hotelID, productID, models.DateKey(date))
}

// ContentHash produces a stable hash over the output tuple of one
// availability row. Adjustment participates: an adjustment-only change must
// still be written and pushed downstream.
func ContentHash(row *models.ProductDailyAvailability) uint64 {
	var h xxhash.Digest
	_, _ = fmt.Fprintf(&h, "%d|%d|%s|%d|%d|%d|%d|%d",
		row.HotelID, row.ProductID, models.DateKey(row.Date),
		row.Available, row.Sold, row.SoldUnassigned, row.SellLimit, row.Adjustment)
	return h.Sum64()
}

// FilterChanged returns the subset of rows whose content hash differs from the
// cached hash of the last persisted state.
func (c *AvailabilityChangeCache) FilterChanged(ctx context.Context, rows []models.ProductDailyAvailability) []models.ProductDailyAvailability {
	changed := make([]models.ProductDailyAvailability, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		hash := strconv.FormatUint(ContentHash(row), 16)

		cached, err := c.redis.Get(ctx, changeKey(row.HotelID, row.ProductID, row.Date))
		if err != nil {
			// Miss or cache failure: write the row. Correctness never
			// depends on the cache.
			changed = append(changed, *row)
			continue
		}
		if cached != hash {
			changed = append(changed, *row)
		}
	}
	return changed
}

// Store records the content hashes of rows that were just persisted.
func (c *AvailabilityChangeCache) Store(ctx context.Context, rows []models.ProductDailyAvailability) {
	for i := range rows {
		row := &rows[i]
		hash := strconv.FormatUint(ContentHash(row), 16)
		if err := c.redis.Set(ctx, changeKey(row.HotelID, row.ProductID, row.Date), hash, changeCacheTTL); err != nil {
			log.Warn().Err(err).
				Int64("product_id", row.ProductID).
				Str("date", models.DateKey(row.Date)).
				Msg("change cache store failed")
			return
		}
	}
}

// Invalidate drops cached hashes for a product over a date range. Used when a
// product's configuration changes and its derived rows are regenerated
// wholesale.
func (c *AvailabilityChangeCache) Invalidate(ctx context.Context, hotelID, productID int64, from, to time.Time) {
	keys := make([]string, 0)
	for _, day := range models.DateRange(from, to) {
		keys = append(keys, changeKey(hotelID, productID, day))
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Msg("change cache invalidate failed")
	}
}
