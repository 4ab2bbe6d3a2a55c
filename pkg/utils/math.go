package utils

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// MeanStdDev returns the mean and the unbiased sample standard deviation.
// A single value has zero deviation.
func MeanStdDev(values []float64) (float64, float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// Percentile returns the empirical percentile (0-100) of values.
func Percentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p := math.Min(math.Max(percentile/100, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// P50 is the median.
func P50(values []float64) float64 {
	return Percentile(values, 50)
}

// P95 is the 95th percentile.
func P95(values []float64) float64 {
	return Percentile(values, 95)
}

// P99 is the 99th percentile.
func P99(values []float64) float64 {
	return Percentile(values, 99)
}

// Sum adds values.
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}
