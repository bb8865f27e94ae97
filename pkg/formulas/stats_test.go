package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42}, 42},
		{"several", []float64{100, 200, 300}, 200},
		{"fractional", []float64{1, 2}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Mean(tt.data), 1e-9)
		})
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{130.0, 130.0},
		{131.24, 131.2},
		{131.25, 131.3},
		{99.96, 100.0},
		{-4.96, -5.0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, Round1(tt.in), 1e-9, "Round1(%v)", tt.in)
	}
}

func TestIndexOf(t *testing.T) {
	assert.InDelta(t, 100.0, IndexOf(10000, 10000), 1e-9)
	assert.InDelta(t, 130.0, IndexOf(13000, 10000), 1e-9)
	assert.Equal(t, 0.0, IndexOf(5, 0))
	assert.Equal(t, 0.0, IndexOf(5, -1))
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 30.0, PercentChange(10000, 13000), 1e-9)
	assert.InDelta(t, -50.0, PercentChange(200, 100), 1e-9)
	assert.Equal(t, 0.0, PercentChange(0, 100))
}

func TestSMASeries(t *testing.T) {
	values := []float64{100, 102, 104, 106, 108}

	series := SMASeries(values, 3)
	require.Len(t, series, len(values))
	assert.True(t, math.IsNaN(series[0]))
	assert.True(t, math.IsNaN(series[1]))
	assert.InDelta(t, 102.0, series[2], 1e-9)
	assert.InDelta(t, 104.0, series[3], 1e-9)
	assert.InDelta(t, 106.0, series[4], 1e-9)
}

func TestSMASeries_InsufficientData(t *testing.T) {
	series := SMASeries([]float64{1, 2}, 3)
	require.Len(t, series, 2)
	for _, v := range series {
		assert.True(t, math.IsNaN(v))
	}
}
