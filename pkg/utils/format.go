package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatFixed renders value with exactly places decimals, rounding half
// away from zero. NaN and infinities are rendered as Go formats them.
func FormatFixed(value float64, places int32) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nonFiniteString(value)
	}
	return decimal.NewFromFloat(value).StringFixed(places)
}

// FormatThroughput renders a rate as a whole number with no decimals.
func FormatThroughput(perSecond float64) string {
	if math.IsNaN(perSecond) || math.IsInf(perSecond, 0) {
		return nonFiniteString(perSecond)
	}
	return decimal.NewFromFloat(perSecond).Truncate(0).String()
}

func nonFiniteString(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	default:
		return "-Inf"
	}
}
