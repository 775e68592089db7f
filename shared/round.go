package shared

import "github.com/shopspring/decimal"

// RoundPrice rounds the provided price to the instrument's digits precision. Only tradeable
// levels are rounded, indicator columns keep full precision.
func RoundPrice(price float64, digits int32) float64 {
	rounded, _ := decimal.NewFromFloat(price).Round(digits).Float64()
	return rounded
}
