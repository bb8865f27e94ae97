package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Round1 rounds to one decimal place, halves away from zero
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// IndexOf expresses value relative to base on a 100 scale.
// A non-positive base yields 0.
func IndexOf(value, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return value / base * 100
}

// PercentChange returns the change from -> to in percent.
// Returns 0 when from is zero.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to/from - 1) * 100
}
