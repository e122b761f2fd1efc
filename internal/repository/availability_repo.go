package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lodgio/lodgio-api/internal/models"
)

// AvailabilityRepository handles the derived per (product, date) availability
// aggregates. Rows are materialized views: created lazily, continuously
// overwritten, regenerable wholesale.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Get returns one availability row, or nil when none exists yet.
func (r *AvailabilityRepository) Get(ctx context.Context, hotelID, productID int64, date time.Time) (*models.ProductDailyAvailability, error) {
	const q = `
        SELECT * FROM product_daily_availability
        WHERE hotel_id = $1 AND product_id = $2 AND date = $3 LIMIT 1`

	var row models.ProductDailyAvailability
	if err := r.db.GetContext(ctx, &row, q, hotelID, productID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetRange loads availability rows for (productIDs x dates).
func (r *AvailabilityRepository) GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.ProductDailyAvailability, error) {
	const q = `
        SELECT * FROM product_daily_availability
        WHERE product_id = ANY($1) AND date BETWEEN $2 AND $3
        ORDER BY product_id, date`

	var rows []models.ProductDailyAvailability
	if err := r.db.SelectContext(ctx, &rows, q, pq.Array(productIDs), from, to); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertBatch writes one chunk of availability rows in a single multi-row
// INSERT ... ON CONFLICT statement inside its own transaction. Callers order
// rows deterministically and wrap the call in the deadlock retry.
func (r *AvailabilityRepository) UpsertBatch(ctx context.Context, rows []models.ProductDailyAvailability) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
        INSERT INTO product_daily_availability
            (hotel_id, product_id, date, available, sold, sold_unassigned, sell_limit, adjustment, updated_at)
        VALUES `)

	args := make([]interface{}, 0, len(rows)*8)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args,
			row.HotelID, row.ProductID, row.Date,
			row.Available, row.Sold, row.SoldUnassigned, row.SellLimit, row.Adjustment)
	}
	sb.WriteString(`
        ON CONFLICT (hotel_id, product_id, date) DO UPDATE SET
            available = EXCLUDED.available,
            sold = EXCLUDED.sold,
            sold_unassigned = EXCLUDED.sold_unassigned,
            sell_limit = EXCLUDED.sell_limit,
            adjustment = EXCLUDED.adjustment,
            updated_at = NOW()`)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpdateAdjustment sets the manual/PMS capacity override for a date range.
// Rows not yet materialized for a date are created so the override survives
// the next reconciliation, which re-derives every other field. Adjustment is
// the one externally-writable field on these rows.
func (r *AvailabilityRepository) UpdateAdjustment(ctx context.Context, hotelID, productID int64, from, to time.Time, adjustment int) error {
	const q = `
        INSERT INTO product_daily_availability
            (hotel_id, product_id, date, available, sold, sold_unassigned, sell_limit, adjustment, updated_at)
        SELECT $1, $2, d::date, GREATEST($5, 0), 0, 0, 0, $5, NOW()
        FROM generate_series($3::date, $4::date, '1 day') AS d
        ON CONFLICT (hotel_id, product_id, date) DO UPDATE SET
            adjustment = EXCLUDED.adjustment,
            available = GREATEST(product_daily_availability.sell_limit + EXCLUDED.adjustment - product_daily_availability.sold, 0),
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q, hotelID, productID, from, to, adjustment)
	return err
}

// IncrementSold atomically books one oversold unit with clamped arithmetic.
// The WHERE guard rejects the update when capacity is exhausted; the clamp
// keeps the row consistent even when racing a concurrent adjustment change.
func (r *AvailabilityRepository) IncrementSold(ctx context.Context, hotelID, productID int64, date time.Time) (int64, error) {
	const q = `
        UPDATE product_daily_availability SET
            sold = LEAST(sold + 1, sell_limit + adjustment),
            available = GREATEST(sell_limit + adjustment - LEAST(sold + 1, sell_limit + adjustment), 0),
            updated_at = NOW()
        WHERE hotel_id = $1 AND product_id = $2 AND date = $3
          AND sold + 1 <= sell_limit + adjustment
          AND available > 0`

	res, err := r.db.ExecContext(ctx, q, hotelID, productID, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DecrementSold is the mirror of IncrementSold: reverts one oversold unit,
// clamped so sold never goes negative or above capacity.
func (r *AvailabilityRepository) DecrementSold(ctx context.Context, hotelID, productID int64, date time.Time) (int64, error) {
	const q = `
        UPDATE product_daily_availability SET
            sold = LEAST(GREATEST(sold - 1, 0), GREATEST(sell_limit + adjustment, 0)),
            available = GREATEST(sell_limit + adjustment - LEAST(GREATEST(sold - 1, 0), GREATEST(sell_limit + adjustment, 0)), 0),
            updated_at = NOW()
        WHERE hotel_id = $1 AND product_id = $2 AND date = $3`

	res, err := r.db.ExecContext(ctx, q, hotelID, productID, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteForProduct drops all derived rows of a product so they can be
// regenerated after a configuration change.
func (r *AvailabilityRepository) DeleteForProduct(ctx context.Context, productID int64) error {
	const q = `DELETE FROM product_daily_availability WHERE product_id = $1`

	_, err := r.db.ExecContext(ctx, q, productID)
	return err
}
