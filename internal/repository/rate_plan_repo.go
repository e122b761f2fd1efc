package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/lodgio/lodgio-api/internal/models"
)

// RatePlanRepository handles rate plans and their daily adjustments.
type RatePlanRepository struct {
	db *sqlx.DB
}

// NewRatePlanRepository creates a new RatePlanRepository.
func NewRatePlanRepository(db *sqlx.DB) *RatePlanRepository {
	return &RatePlanRepository{db: db}
}

// GetByID returns a rate plan by id, or nil when not found.
func (r *RatePlanRepository) GetByID(ctx context.Context, id int64) (*models.RatePlan, error) {
	const q = `SELECT * FROM rate_plans WHERE id = $1 LIMIT 1`

	var plan models.RatePlan
	if err := r.db.GetContext(ctx, &plan, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// ListByIDs returns the rate plans with the given ids.
func (r *RatePlanRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.RatePlan, error) {
	const q = `SELECT * FROM rate_plans WHERE id = ANY($1)`

	var plans []models.RatePlan
	if err := r.db.SelectContext(ctx, &plans, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	return plans, nil
}

// ListActiveByHotel returns all active rate plans of a hotel.
func (r *RatePlanRepository) ListActiveByHotel(ctx context.Context, hotelID int64) ([]models.RatePlan, error) {
	const q = `SELECT * FROM rate_plans WHERE hotel_id = $1 AND is_active = true ORDER BY id`

	var plans []models.RatePlan
	if err := r.db.SelectContext(ctx, &plans, q, hotelID); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetRange returns the rate plan's daily adjustments inside [from, to].
func (r *RatePlanRepository) GetRange(ctx context.Context, ratePlanID int64, from, to time.Time) ([]models.DailyAdjustment, error) {
	const q = `
        SELECT * FROM rate_plan_daily_adjustments
        WHERE rate_plan_id = $1 AND date BETWEEN $2 AND $3
        ORDER BY date`

	var adjustments []models.DailyAdjustment
	if err := r.db.SelectContext(ctx, &adjustments, q, ratePlanID, from, to); err != nil {
		return nil, err
	}
	return adjustments, nil
}

// UpsertAdjustmentRange sets the rate-plan adjustment for every date in
// [from, to].
func (r *RatePlanRepository) UpsertAdjustmentRange(ctx context.Context, ratePlanID int64, from, to time.Time, value decimal.Decimal, unit models.AdjustmentUnit) error {
	const q = `
        INSERT INTO rate_plan_daily_adjustments (rate_plan_id, date, value, unit, updated_at)
        SELECT $1, d::date, $4, $5, NOW()
        FROM generate_series($2::date, $3::date, '1 day') AS d
        ON CONFLICT (rate_plan_id, date) DO UPDATE SET
            value = EXCLUDED.value,
            unit = EXCLUDED.unit,
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q, ratePlanID, from, to, value, unit)
	return err
}
