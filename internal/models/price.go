package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DailyBasePrice is the pre-adjustment price input for (product, ratePlan, date).
// BasePrice = FeatureBasePrice + FeaturePriceAdjustment.
type DailyBasePrice struct {
	ID                     int64           `db:"id" json:"id"`
	ProductID              int64           `db:"product_id" json:"productId"`
	RatePlanID             int64           `db:"rate_plan_id" json:"ratePlanId"`
	Date                   time.Time       `db:"date" json:"date"`
	FeatureBasePrice       decimal.Decimal `db:"feature_base_price" json:"featureBasePrice"`
	FeaturePriceAdjustment decimal.Decimal `db:"feature_price_adjustment" json:"featurePriceAdjustment"`
	BasePrice              decimal.Decimal `db:"base_price" json:"basePrice"`
}

// FeatureRateAdjustment is a manual per-feature override layered on top of
// feature-based pricing. When present for a (feature, date), it wins over the
// feature's base rate.
type FeatureRateAdjustment struct {
	ID                   int64           `db:"id" json:"id"`
	ProductID            int64           `db:"product_id" json:"productId"`
	FeatureID            int64           `db:"feature_id" json:"featureId"`
	RatePlanAssignmentID int64           `db:"rate_plan_assignment_id" json:"ratePlanAssignmentId"`
	Date                 time.Time       `db:"date" json:"date"`
	RateOriginal         decimal.Decimal `db:"rate_original" json:"rateOriginal"`
	RateAdjustment       decimal.Decimal `db:"rate_adjustment" json:"rateAdjustment"`
}

// DailySellingPrice is the derived output row for (product, ratePlan, date).
// Always recomputed and replaced as a whole, never patched field by field.
type DailySellingPrice struct {
	ID                 int64           `db:"id" json:"id"`
	HotelID            int64           `db:"hotel_id" json:"hotelId"`
	ProductID          int64           `db:"product_id" json:"productId"`
	RatePlanID         int64           `db:"rate_plan_id" json:"ratePlanId"`
	Date               time.Time       `db:"date" json:"date"`
	BasePrice          decimal.Decimal `db:"base_price" json:"basePrice"`
	FeatureAdjustments decimal.Decimal `db:"feature_adjustments" json:"featureAdjustments"`
	RatePlanAdjustment decimal.Decimal `db:"rate_plan_adjustment" json:"ratePlanAdjustments"`
	NetPrice           decimal.Decimal `db:"net_price" json:"netPrice"`
	GrossPrice         decimal.Decimal `db:"gross_price" json:"grossPrice"`
	TaxAmount          decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	RoundingGap        decimal.Decimal `db:"rounding_gap" json:"roundingGap"`
	Metadata           json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`
}

// ExtraOccupancyRate is a per-age-category surcharge for occupancy above the
// base slot. Date-scoped override rows fall back to the product's base rate
// table when absent.
type ExtraOccupancyRate struct {
	ID          int64           `db:"id" json:"id"`
	ProductID   int64           `db:"product_id" json:"productId"`
	AgeCategory string          `db:"age_category" json:"ageCategory"`
	Slot        int             `db:"slot" json:"slot"`
	Date        *time.Time      `db:"date" json:"date,omitempty"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
}

// IncludedAmenity is an amenity bundled into a rate plan's selling price for
// a validity window.
type IncludedAmenity struct {
	ID         int64           `db:"id" json:"id"`
	RatePlanID int64           `db:"rate_plan_id" json:"ratePlanId"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	TaxCode    string          `db:"tax_code" json:"taxCode"`
	ValidFrom  time.Time       `db:"valid_from" json:"validFrom"`
	ValidTo    time.Time       `db:"valid_to" json:"validTo"`
}
