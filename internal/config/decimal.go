package config

import (
	"github.com/shopspring/decimal"
)

// Decimal helpers for the exactness-sensitive validation sums.
var (
	decimalZero = decimal.Zero
	decimalOne  = decimal.NewFromInt(1)
)

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
