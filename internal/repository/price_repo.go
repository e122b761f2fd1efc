package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/lodgio/lodgio-api/internal/models"
)

// BasePriceRepository handles the pre-adjustment price inputs.
type BasePriceRepository struct {
	db *sqlx.DB
}

// NewBasePriceRepository creates a new BasePriceRepository.
func NewBasePriceRepository(db *sqlx.DB) *BasePriceRepository {
	return &BasePriceRepository{db: db}
}

// GetRange returns base prices for (product, ratePlan) inside [from, to].
func (r *BasePriceRepository) GetRange(ctx context.Context, productID, ratePlanID int64, from, to time.Time) ([]models.DailyBasePrice, error) {
	const q = `
        SELECT * FROM daily_base_prices
        WHERE product_id = $1 AND rate_plan_id = $2 AND date BETWEEN $3 AND $4
        ORDER BY date`

	var prices []models.DailyBasePrice
	if err := r.db.SelectContext(ctx, &prices, q, productID, ratePlanID, from, to); err != nil {
		return nil, err
	}
	return prices, nil
}

// UpsertRange writes the feature-derived base price for every date in
// [from, to]. base_price is kept as the stored sum of the two inputs.
func (r *BasePriceRepository) UpsertRange(ctx context.Context, productID, ratePlanID int64, from, to time.Time, featureBase, featureAdjustment decimal.Decimal) error {
	const q = `
        INSERT INTO daily_base_prices
            (product_id, rate_plan_id, date, feature_base_price, feature_price_adjustment, base_price)
        SELECT $1, $2, d::date, $5, $6, $5 + $6
        FROM generate_series($3::date, $4::date, '1 day') AS d
        ON CONFLICT (product_id, rate_plan_id, date) DO UPDATE SET
            feature_base_price = EXCLUDED.feature_base_price,
            feature_price_adjustment = EXCLUDED.feature_price_adjustment,
            base_price = EXCLUDED.base_price`

	_, err := r.db.ExecContext(ctx, q, productID, ratePlanID, from, to, featureBase, featureAdjustment)
	return err
}

// ListFeatureAdjustments returns manual feature-rate overrides for a product
// inside [from, to].
func (r *BasePriceRepository) ListFeatureAdjustments(ctx context.Context, productID int64, from, to time.Time) ([]models.FeatureRateAdjustment, error) {
	const q = `
        SELECT * FROM feature_rate_adjustments
        WHERE product_id = $1 AND date BETWEEN $2 AND $3
        ORDER BY feature_id, date`

	var adjustments []models.FeatureRateAdjustment
	if err := r.db.SelectContext(ctx, &adjustments, q, productID, from, to); err != nil {
		return nil, err
	}
	return adjustments, nil
}

// SellingPriceRepository handles the derived selling price output rows.
type SellingPriceRepository struct {
	db *sqlx.DB
}

// NewSellingPriceRepository creates a new SellingPriceRepository.
func NewSellingPriceRepository(db *sqlx.DB) *SellingPriceRepository {
	return &SellingPriceRepository{db: db}
}

// GetRange returns selling prices for (product, ratePlan) inside [from, to].
func (r *SellingPriceRepository) GetRange(ctx context.Context, productID, ratePlanID int64, from, to time.Time) ([]models.DailySellingPrice, error) {
	const q = `
        SELECT * FROM daily_selling_prices
        WHERE product_id = $1 AND rate_plan_id = $2 AND date BETWEEN $3 AND $4
        ORDER BY date`

	var prices []models.DailySellingPrice
	if err := r.db.SelectContext(ctx, &prices, q, productID, ratePlanID, from, to); err != nil {
		return nil, err
	}
	return prices, nil
}

// UpsertBatch replaces whole selling price rows. Rows are never patched field
// by field: a recompute always writes the complete derived tuple.
func (r *SellingPriceRepository) UpsertBatch(ctx context.Context, rows []models.DailySellingPrice) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
        INSERT INTO daily_selling_prices
            (hotel_id, product_id, rate_plan_id, date, base_price, feature_adjustments,
             rate_plan_adjustment, net_price, gross_price, tax_amount, rounding_gap, metadata, updated_at)
        VALUES `)

	args := make([]interface{}, 0, len(rows)*12)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 12
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11, base+12)
		args = append(args,
			row.HotelID, row.ProductID, row.RatePlanID, row.Date,
			row.BasePrice, row.FeatureAdjustments, row.RatePlanAdjustment,
			row.NetPrice, row.GrossPrice, row.TaxAmount, row.RoundingGap, row.Metadata)
	}
	sb.WriteString(`
        ON CONFLICT (product_id, rate_plan_id, date) DO UPDATE SET
            hotel_id = EXCLUDED.hotel_id,
            base_price = EXCLUDED.base_price,
            feature_adjustments = EXCLUDED.feature_adjustments,
            rate_plan_adjustment = EXCLUDED.rate_plan_adjustment,
            net_price = EXCLUDED.net_price,
            gross_price = EXCLUDED.gross_price,
            tax_amount = EXCLUDED.tax_amount,
            rounding_gap = EXCLUDED.rounding_gap,
            metadata = EXCLUDED.metadata,
            updated_at = NOW()`)

	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// DeleteForProduct drops all derived price rows of a product so they can be
// regenerated after a configuration change.
func (r *SellingPriceRepository) DeleteForProduct(ctx context.Context, productID int64) error {
	const q = `DELETE FROM daily_selling_prices WHERE product_id = $1`

	_, err := r.db.ExecContext(ctx, q, productID)
	return err
}

// ListProductsWithPrices returns the distinct products having selling prices
// for a hotel, used by full-resync sweeps.
func (r *SellingPriceRepository) ListProductsWithPrices(ctx context.Context, hotelID int64) ([]int64, error) {
	const q = `SELECT DISTINCT product_id FROM daily_selling_prices WHERE hotel_id = $1 ORDER BY product_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q, hotelID); err != nil {
		return nil, err
	}
	return ids, nil
}
