package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMASeries calculates the Simple Moving Average at every position of values.
// Positions before the first complete window are NaN.
func SMASeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}

	sma := talib.Sma(values, period)
	for i := period - 1; i < len(values) && i < len(sma); i++ {
		out[i] = sma[i]
	}
	return out
}
