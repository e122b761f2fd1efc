package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/lodgio/lodgio-api/internal/models"
)

var (
	zero       = decimal.Zero
	one        = decimal.NewFromInt(1)
	oneHundred = decimal.NewFromInt(100)
)

// ApplyRounding applies a rate plan's rounding mode at the given number of
// decimal places and returns the rounded value together with the rounding gap
// (unrounded minus rounded). NO_ROUNDING is the identity with a zero gap.
// Rounding is idempotent: applying the same mode to an already-rounded value
// returns it unchanged.
func ApplyRounding(v decimal.Decimal, mode models.RoundingMode, places int32) (decimal.Decimal, decimal.Decimal) {
	var rounded decimal.Decimal
	switch mode {
	case models.RoundingHalfUp:
		rounded = v.Round(places)
	case models.RoundingHalfDown:
		rounded = roundHalfDown(v, places)
	case models.RoundingUp:
		rounded = v.RoundUp(places)
	case models.RoundingDown:
		rounded = v.RoundDown(places)
	case models.RoundingNone:
		return v, zero
	default:
		return v, zero
	}
	return rounded, v.Sub(rounded)
}

// roundHalfDown rounds to places with ties going toward zero.
func roundHalfDown(v decimal.Decimal, places int32) decimal.Decimal {
	neg := v.IsNegative()
	abs := v.Abs()

	shifted := abs.Shift(places)
	floor := shifted.Floor()
	if shifted.Sub(floor).GreaterThan(decimal.NewFromFloat(0.5)) {
		floor = floor.Add(one)
	}
	out := floor.Shift(-places)
	if neg {
		return out.Neg()
	}
	return out
}

// ApplyAdjustment applies a fixed or percentage adjustment to a base price.
// FIXED adds the raw value; PERCENTAGE adds value/100 * base. The value may be
// negative.
func ApplyAdjustment(base, value decimal.Decimal, unit models.AdjustmentUnit) decimal.Decimal {
	switch unit {
	case models.AdjustmentPercentage:
		return base.Add(value.Div(oneHundred).Mul(base))
	default:
		return base.Add(value)
	}
}

// RecalculateAdjustmentRate inverts ApplyAdjustment: given an already-adjusted
// price and the adjustment that produced it, it recovers the pre-adjustment
// price. Used when correlating a derived product's rate back to its master
// product's rate.
func RecalculateAdjustmentRate(adjusted, value decimal.Decimal, unit models.AdjustmentUnit) decimal.Decimal {
	switch unit {
	case models.AdjustmentPercentage:
		divisor := one.Add(value.Div(oneHundred))
		if divisor.IsZero() {
			return zero
		}
		return adjusted.Div(divisor)
	default:
		return adjusted.Sub(value)
	}
}

// PercentOf returns pct/100 * value.
func PercentOf(value, pct decimal.Decimal) decimal.Decimal {
	return pct.Div(oneHundred).Mul(value)
}

// Sum adds all values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// SumRoundedTerms rounds each term with the given mode before summing. Used
// where per-line rounding must match how downstream ledgers book the lines.
func SumRoundedTerms(mode models.RoundingMode, places int32, values ...decimal.Decimal) decimal.Decimal {
	total := zero
	for _, v := range values {
		r, _ := ApplyRounding(v, mode, places)
		total = total.Add(r)
	}
	return total
}
