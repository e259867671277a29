// Package money converts between the int64 cents used internally and the
// decimal currency units used on the wire.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CentsFromUnits converts a currency-unit amount (e.g. 12.34) to cents,
// rounding half away from zero so float noise never shifts a cent.
func CentsFromUnits(units float64) int64 {
	return decimal.NewFromFloat(units).Mul(hundred).Round(0).IntPart()
}

// UnitsFromCents converts cents back to currency units for responses.
func UnitsFromCents(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(hundred).Float64()
	return f
}

// FormatCents renders cents as a fixed two-decimal string, e.g. "120.00".
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}
