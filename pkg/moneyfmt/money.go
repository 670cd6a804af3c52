// Package moneyfmt formats monetary and rate quantities for display.
package moneyfmt

import (
	"github.com/shopspring/decimal"
)

// Amount renders a decimal as a dollar amount rounded to cents.
func Amount(d decimal.Decimal) string {
	return "$" + d.Round(2).StringFixed(2)
}

// PerUnit renders a per-unit-premium price with basis-point precision.
func PerUnit(d decimal.Decimal) string {
	return d.Round(6).StringFixed(6)
}

// Percent renders a fraction as a percentage with two decimals.
func Percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).Round(2).StringFixed(2) + "%"
}
