package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lodgio/lodgio-api/internal/models"
)

// TaxRepository handles hotel tax configuration.
type TaxRepository struct {
	db *sqlx.DB
}

// NewTaxRepository creates a new TaxRepository.
func NewTaxRepository(db *sqlx.DB) *TaxRepository {
	return &TaxRepository{db: db}
}

// ListForHotel returns all taxes configured for a hotel. Validity-window
// filtering happens per date in the composer.
func (r *TaxRepository) ListForHotel(ctx context.Context, hotelID int64) ([]models.Tax, error) {
	const q = `SELECT * FROM taxes WHERE hotel_id = $1 ORDER BY service_code, valid_from`

	var taxes []models.Tax
	if err := r.db.SelectContext(ctx, &taxes, q, hotelID); err != nil {
		return nil, err
	}
	return taxes, nil
}

// GetSetting returns the hotel's tax inclusion setting, or nil when the hotel
// has none configured.
func (r *TaxRepository) GetSetting(ctx context.Context, hotelID int64) (*models.TaxSetting, error) {
	const q = `SELECT * FROM tax_settings WHERE hotel_id = $1 LIMIT 1`

	var setting models.TaxSetting
	if err := r.db.GetContext(ctx, &setting, q, hotelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// OccupancyRateRepository handles extra-occupancy surcharge tables.
type OccupancyRateRepository struct {
	db *sqlx.DB
}

// NewOccupancyRateRepository creates a new OccupancyRateRepository.
func NewOccupancyRateRepository(db *sqlx.DB) *OccupancyRateRepository {
	return &OccupancyRateRepository{db: db}
}

// ListForProduct returns a product's base rate table (date IS NULL) together
// with date-scoped overrides inside [from, to].
func (r *OccupancyRateRepository) ListForProduct(ctx context.Context, productID int64, from, to time.Time) ([]models.ExtraOccupancyRate, error) {
	const q = `
        SELECT * FROM extra_occupancy_rates
        WHERE product_id = $1 AND (date IS NULL OR date BETWEEN $2 AND $3)
        ORDER BY age_category, slot`

	var rates []models.ExtraOccupancyRate
	if err := r.db.SelectContext(ctx, &rates, q, productID, from, to); err != nil {
		return nil, err
	}
	return rates, nil
}

// AmenityRepository handles rate-plan included amenities.
type AmenityRepository struct {
	db *sqlx.DB
}

// NewAmenityRepository creates a new AmenityRepository.
func NewAmenityRepository(db *sqlx.DB) *AmenityRepository {
	return &AmenityRepository{db: db}
}

// ListForRatePlan returns a rate plan's included amenities. Date validity is
// evaluated per date in the composer.
func (r *AmenityRepository) ListForRatePlan(ctx context.Context, ratePlanID int64) ([]models.IncludedAmenity, error) {
	const q = `SELECT * FROM included_amenities WHERE rate_plan_id = $1 ORDER BY id`

	var amenities []models.IncludedAmenity
	if err := r.db.SelectContext(ctx, &amenities, q, ratePlanID); err != nil {
		return nil, err
	}
	return amenities, nil
}
