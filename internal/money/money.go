// Package money holds the percentage and rounding rules shared by every
// invoice total.
//
// Derived values keep full float64 precision. Rounding to the currency's minor
// unit happens only when a value is shown, and the rounded value is never
// written back into a document.
package money

import (
	"math"

	"github.com/shopspring/decimal"

	"invoicer/pkg/models"
)

// MinorUnits is the number of decimals shown for every supported currency.
const MinorUnits = 2

// PercentOf returns rate percent of base.
func PercentOf(base, rate float64) float64 {
	return Sanitize(base * rate / 100)
}

// Sanitize maps NaN and infinities to zero so one bad input cannot poison
// the totals of sibling items.
func Sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// Coerce parses user-entered text. Anything non-numeric becomes zero.
func Coerce(text string) float64 {
	return models.ParseNumber(text).Float()
}

// Round rounds x half away from zero to MinorUnits decimals.
func Round(x float64) decimal.Decimal {
	return decimal.NewFromFloat(Sanitize(x)).Round(MinorUnits)
}

// Fixed returns x rounded and printed with exactly MinorUnits decimals.
func Fixed(x float64) string {
	return Round(x).StringFixed(MinorUnits)
}

// Format renders x for display with the currency symbol, e.g. "$83.16".
// Unknown currencies fall back to the code as a prefix.
func Format(x float64, currency models.Currency) string {
	r := Round(x)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Abs()
	}
	symbol := currency.Symbol()
	if symbol == "" && currency != "" {
		symbol = string(currency) + " "
	}
	return sign + symbol + r.StringFixed(MinorUnits)
}
