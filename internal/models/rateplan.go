package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingMethodology enumerates how a rate plan derives its prices.
type PricingMethodology string

const (
	PricingFeatureBased PricingMethodology = "FEATURE_BASED"
	PricingDerived      PricingMethodology = "DERIVED"
)

// RoundingMode enumerates the rounding strategies a rate plan may apply to
// its derived selling prices.
type RoundingMode string

const (
	RoundingNone     RoundingMode = "NO_ROUNDING"
	RoundingHalfUp   RoundingMode = "HALF_UP"
	RoundingHalfDown RoundingMode = "HALF_DOWN"
	RoundingUp       RoundingMode = "UP"
	RoundingDown     RoundingMode = "DOWN"
)

// AdjustmentUnit enumerates how an adjustment value is applied.
type AdjustmentUnit string

const (
	AdjustmentFixed      AdjustmentUnit = "FIXED"
	AdjustmentPercentage AdjustmentUnit = "PERCENTAGE"
)

// RatePlan defines a pricing scheme over room products.
type RatePlan struct {
	ID                 int64              `db:"id" json:"id"`
	HotelID            int64              `db:"hotel_id" json:"hotelId"`
	Code               string             `db:"code" json:"code"`
	Name               string             `db:"name" json:"name"`
	PricingMethodology PricingMethodology `db:"pricing_methodology" json:"pricingMethodology"`
	RoundingMode       RoundingMode       `db:"rounding_mode" json:"roundingMode"`
	DecimalPlaces      int32              `db:"decimal_places" json:"decimalPlaces"`
	ServiceCode        string             `db:"service_code" json:"serviceCode"`
	IsActive           bool               `db:"is_active" json:"isActive"`
	CreatedAt          time.Time          `db:"created_at" json:"-"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
}

// DailyAdjustment is the rate-plan level adjustment for one date.
type DailyAdjustment struct {
	ID         int64           `db:"id" json:"id"`
	RatePlanID int64           `db:"rate_plan_id" json:"ratePlanId"`
	Date       time.Time       `db:"date" json:"date"`
	Value      decimal.Decimal `db:"value" json:"value"`
	Unit       AdjustmentUnit  `db:"unit" json:"unit"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}
