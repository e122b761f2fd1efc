package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxInclusionMode controls whether configured amenity prices are gross
// (tax included) or net.
type TaxInclusionMode string

const (
	TaxInclusive TaxInclusionMode = "GROSS"
	TaxExclusive TaxInclusionMode = "NET"
)

// TaxSetting is the hotel-level tax configuration.
type TaxSetting struct {
	ID            int64            `db:"id" json:"id"`
	HotelID       int64            `db:"hotel_id" json:"hotelId"`
	InclusionMode TaxInclusionMode `db:"inclusion_mode" json:"inclusionMode"`
}

// Tax is a serviceType-scoped tax rate with a validity window. Accommodation
// and extras taxes are applied independently.
type Tax struct {
	ID          int64           `db:"id" json:"id"`
	HotelID     int64           `db:"hotel_id" json:"hotelId"`
	ServiceCode string          `db:"service_code" json:"serviceCode"`
	Name        string          `db:"name" json:"name"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	ValidFrom   time.Time       `db:"valid_from" json:"validFrom"`
	ValidTo     time.Time       `db:"valid_to" json:"validTo"`
}

// AppliesOn reports whether the tax is in force on the given date.
func (t *Tax) AppliesOn(date time.Time) bool {
	return !date.Before(t.ValidFrom) && !date.After(t.ValidTo)
}
