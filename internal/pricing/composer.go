package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// Repository contracts consumed by the composer. Implemented by the sqlx
// repositories; tests substitute in-memory fakes.
type BasePriceReader interface {
	GetRange(ctx context.Context, productID, ratePlanID int64, from, to time.Time) ([]models.DailyBasePrice, error)
}

type AdjustmentReader interface {
	GetRange(ctx context.Context, ratePlanID int64, from, to time.Time) ([]models.DailyAdjustment, error)
}

type OccupancyRateReader interface {
	ListForProduct(ctx context.Context, productID int64, from, to time.Time) ([]models.ExtraOccupancyRate, error)
}

type AmenityReader interface {
	ListForRatePlan(ctx context.Context, ratePlanID int64) ([]models.IncludedAmenity, error)
}

type TaxReader interface {
	ListForHotel(ctx context.Context, hotelID int64) ([]models.Tax, error)
	GetSetting(ctx context.Context, hotelID int64) (*models.TaxSetting, error)
}

type SellingPriceWriter interface {
	UpsertBatch(ctx context.Context, rows []models.DailySellingPrice) error
}

// Occupancy describes one requested occupant slot. Slot 0 is the base
// occupancy covered by the room rate itself.
type Occupancy struct {
	AgeCategory string
	Slot        int
}

// DayInputs carries everything needed to derive one selling price row.
type DayInputs struct {
	BasePrice  *models.DailyBasePrice
	Adjustment *models.DailyAdjustment

	OccupancyRates []models.ExtraOccupancyRate
	Occupancy      []Occupancy

	Amenities  []models.IncludedAmenity
	Taxes      []models.Tax
	TaxSetting *models.TaxSetting
}

// priceMetadata is the audit payload persisted alongside each derived row.
type priceMetadata struct {
	SellingRateUnrounded decimal.Decimal     `json:"sellingRateUnrounded"`
	ExtraOccupancy       decimal.Decimal     `json:"extraOccupancy"`
	IncludedAmenities    decimal.Decimal     `json:"includedAmenities"`
	AccommodationTax     decimal.Decimal     `json:"accommodationTax"`
	ExtrasTax            decimal.Decimal     `json:"extrasTax"`
	RoundingMode         models.RoundingMode `json:"roundingMode"`
}

// ComposeDailyPrice derives a full DailySellingPrice row for one date. The
// result is always a complete row; callers persist it wholesale and never
// patch individual fields.
func ComposeDailyPrice(product *models.Product, ratePlan *models.RatePlan, date time.Time, in DayInputs) (models.DailySellingPrice, error) {
	if product == nil || ratePlan == nil {
		return models.DailySellingPrice{}, fmt.Errorf("compose price: %w", utils.ErrMissingInput)
	}
	date = models.Day(date)

	// 1. Base price from feature pricing plus manual feature overrides.
	basePrice := zero
	featureAdj := zero
	if in.BasePrice != nil {
		basePrice = in.BasePrice.FeatureBasePrice.Add(in.BasePrice.FeaturePriceAdjustment)
		featureAdj = in.BasePrice.FeaturePriceAdjustment
	}

	// 2-3. Rate-plan daily adjustment; absent adjustment is zero.
	ratePlanAdj := zero
	if in.Adjustment != nil {
		ratePlanAdj = ApplyAdjustment(basePrice, in.Adjustment.Value, in.Adjustment.Unit).Sub(basePrice)
	}
	grossPrice := basePrice.Add(ratePlanAdj)

	// 4. Extra-occupancy surcharge. Date-scoped overrides win over the base
	// rate table; the base slot itself carries no surcharge.
	surcharge := extraOccupancySurcharge(date, in.Occupancy, in.OccupancyRates)

	// 5. Included amenities valid on the date, gross per the hotel tax setting.
	amenityRate, extrasTax := includedAmenityTotals(date, in.Amenities, in.Taxes, in.TaxSetting)

	// 6-7. Rounding per rate plan; the gap is retained for audit.
	unrounded := grossPrice.Add(amenityRate).Add(surcharge)
	rounded, gap := ApplyRounding(unrounded, ratePlan.RoundingMode, ratePlan.DecimalPlaces)

	// 8. Accommodation tax on the base price for every tax window containing
	// the date whose service code matches the rate plan.
	accommodationTax := zero
	for i := range in.Taxes {
		t := &in.Taxes[i]
		if t.ServiceCode == ratePlan.ServiceCode && t.AppliesOn(date) {
			accommodationTax = accommodationTax.Add(PercentOf(basePrice, t.Rate))
		}
	}
	taxAmount := accommodationTax.Add(extrasTax)

	meta, err := json.Marshal(priceMetadata{
		SellingRateUnrounded: unrounded,
		ExtraOccupancy:       surcharge,
		IncludedAmenities:    amenityRate,
		AccommodationTax:     accommodationTax,
		ExtrasTax:            extrasTax,
		RoundingMode:         ratePlan.RoundingMode,
	})
	if err != nil {
		return models.DailySellingPrice{}, fmt.Errorf("marshal price metadata: %w", err)
	}

	return models.DailySellingPrice{
		HotelID:            product.HotelID,
		ProductID:          product.ID,
		RatePlanID:         ratePlan.ID,
		Date:               date,
		BasePrice:          basePrice,
		FeatureAdjustments: featureAdj,
		RatePlanAdjustment: ratePlanAdj,
		GrossPrice:         rounded,
		NetPrice:           rounded.Sub(taxAmount),
		TaxAmount:          taxAmount,
		RoundingGap:        gap,
		Metadata:           meta,
	}, nil
}

// extraOccupancySurcharge sums the per-slot rates for the requested occupancy.
// For each slot the date-scoped override row is preferred; the undated base
// row is the fallback; a missing rate means zero.
func extraOccupancySurcharge(date time.Time, occupancy []Occupancy, rates []models.ExtraOccupancyRate) decimal.Decimal {
	total := zero
	for _, occ := range occupancy {
		if occ.Slot == 0 {
			continue
		}
		var base, override *models.ExtraOccupancyRate
		for i := range rates {
			r := &rates[i]
			if r.AgeCategory != occ.AgeCategory || r.Slot != occ.Slot {
				continue
			}
			if r.Date == nil {
				base = r
			} else if models.Day(*r.Date).Equal(date) {
				override = r
			}
		}
		switch {
		case override != nil:
			total = total.Add(override.Rate)
		case base != nil:
			total = total.Add(base.Rate)
		}
	}
	return total
}

// includedAmenityTotals returns the gross amenity amount added to the selling
// rate and the extras tax contained in it. Under NET configuration the stored
// amenity price excludes tax, so tax is added on top; under GROSS it is
// extracted from the stored price.
func includedAmenityTotals(date time.Time, amenities []models.IncludedAmenity, taxes []models.Tax, setting *models.TaxSetting) (decimal.Decimal, decimal.Decimal) {
	grossTotal := zero
	taxTotal := zero

	for i := range amenities {
		a := &amenities[i]
		if date.Before(models.Day(a.ValidFrom)) || date.After(models.Day(a.ValidTo)) {
			continue
		}
		rate := amenityTaxRate(a.TaxCode, date, taxes)

		if setting != nil && setting.InclusionMode == models.TaxExclusive {
			tax := PercentOf(a.Price, rate)
			grossTotal = grossTotal.Add(a.Price).Add(tax)
			taxTotal = taxTotal.Add(tax)
			continue
		}
		// Gross configuration: stored price already includes tax.
		grossTotal = grossTotal.Add(a.Price)
		if !rate.IsZero() {
			net := a.Price.Div(one.Add(rate.Div(oneHundred)))
			taxTotal = taxTotal.Add(a.Price.Sub(net))
		}
	}
	return grossTotal, taxTotal
}

// amenityTaxRate resolves the tax percentage for an amenity's tax code on a date.
func amenityTaxRate(taxCode string, date time.Time, taxes []models.Tax) decimal.Decimal {
	for i := range taxes {
		t := &taxes[i]
		if t.ServiceCode == taxCode && t.AppliesOn(date) {
			return t.Rate
		}
	}
	return zero
}

// Composer loads pricing inputs and derives selling price rows over date
// ranges, persisting them via the selling price repository.
type Composer struct {
	basePrices BasePriceReader
	adjusts    AdjustmentReader
	occupancy  OccupancyRateReader
	amenities  AmenityReader
	taxes      TaxReader
	prices     SellingPriceWriter
}

// NewComposer constructs a Composer.
func NewComposer(basePrices BasePriceReader, adjusts AdjustmentReader, occupancy OccupancyRateReader, amenities AmenityReader, taxes TaxReader, prices SellingPriceWriter) *Composer {
	return &Composer{
		basePrices: basePrices,
		adjusts:    adjusts,
		occupancy:  occupancy,
		amenities:  amenities,
		taxes:      taxes,
		prices:     prices,
	}
}

// ComposeRange recomputes and persists selling prices for every date in
// [from, to]. Rows for dates with no base price input are skipped rather than
// zero-priced; stale rows for untouched dates are left as-is.
func (c *Composer) ComposeRange(ctx context.Context, product *models.Product, ratePlan *models.RatePlan, from, to time.Time, occupancy []Occupancy) error {
	days := models.DateRange(from, to)
	if len(days) == 0 {
		return fmt.Errorf("compose range: %w", utils.ErrInvalidDateRange)
	}
	from, to = days[0], days[len(days)-1]

	basePrices, err := c.basePrices.GetRange(ctx, product.ID, ratePlan.ID, from, to)
	if err != nil {
		return fmt.Errorf("load base prices: %w", err)
	}
	adjustments, err := c.adjusts.GetRange(ctx, ratePlan.ID, from, to)
	if err != nil {
		return fmt.Errorf("load adjustments: %w", err)
	}
	occupancyRates, err := c.occupancy.ListForProduct(ctx, product.ID, from, to)
	if err != nil {
		return fmt.Errorf("load occupancy rates: %w", err)
	}
	amenities, err := c.amenities.ListForRatePlan(ctx, ratePlan.ID)
	if err != nil {
		return fmt.Errorf("load amenities: %w", err)
	}
	taxes, err := c.taxes.ListForHotel(ctx, product.HotelID)
	if err != nil {
		return fmt.Errorf("load taxes: %w", err)
	}
	setting, err := c.taxes.GetSetting(ctx, product.HotelID)
	if err != nil {
		return fmt.Errorf("load tax setting: %w", err)
	}

	baseByDate := make(map[string]*models.DailyBasePrice, len(basePrices))
	for i := range basePrices {
		baseByDate[models.DateKey(basePrices[i].Date)] = &basePrices[i]
	}
	adjByDate := make(map[string]*models.DailyAdjustment, len(adjustments))
	for i := range adjustments {
		adjByDate[models.DateKey(adjustments[i].Date)] = &adjustments[i]
	}

	rows := make([]models.DailySellingPrice, 0, len(days))
	for _, day := range days {
		key := models.DateKey(day)
		base, ok := baseByDate[key]
		if !ok {
			log.Debug().
				Int64("product_id", product.ID).
				Int64("rate_plan_id", ratePlan.ID).
				Str("date", key).
				Msg("no base price for date, skipping")
			continue
		}
		row, err := ComposeDailyPrice(product, ratePlan, day, DayInputs{
			BasePrice:      base,
			Adjustment:     adjByDate[key],
			OccupancyRates: occupancyRates,
			Occupancy:      occupancy,
			Amenities:      amenities,
			Taxes:          taxes,
			TaxSetting:     setting,
		})
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil
	}
	if err := c.prices.UpsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("persist selling prices: %w", err)
	}
	log.Debug().
		Int64("product_id", product.ID).
		Int64("rate_plan_id", ratePlan.ID).
		Int("rows", len(rows)).
		Msg("selling prices recomputed")
	return nil
}
