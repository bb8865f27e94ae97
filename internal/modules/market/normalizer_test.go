package market

import (
	"testing"
	"time"

	"github.com/aristath/valveprice/internal/domain"
	testingpkg "github.com/aristath/valveprice/internal/testing"
	"github.com/aristath/valveprice/pkg/formulas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifies(t *testing.T) {
	tests := []struct {
		description string
		want        bool
	}{
		{"BC GLOBE VALVE 25A TR", true},
		{"BC GLOBE VALVE 25A TR  ", true},
		{"BC GLOBE VALVE LOCK TR", false},
		{"BC GLOBE VALVE 25A", false},
		{"BC TR GLOBE VALVE", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, Qualifies(domain.BCOrderRecord{Description: tt.description}))
		})
	}
}

func TestWeightedAndExpectedIndex(t *testing.T) {
	assert.InDelta(t, 131.2, WeightedIndex(130, 140), 1e-9)
	assert.InDelta(t, 100.0, ExpectedIndex(100), 1e-9)
	assert.InDelta(t, 124.96, ExpectedIndex(131.2), 1e-9)
	assert.InDelta(t, 92.0, ExpectedIndex(90), 1e-9)
}

func TestCommodityIndices_LinearYear(t *testing.T) {
	idx := commodityIndices(testingpkg.NewLMEFixture())
	require.Len(t, idx, 12)

	first := idx[0]
	assert.Equal(t, 100.0, first.cu)
	assert.Equal(t, 100.0, first.sn)
	assert.InDelta(t, 100.0, first.weighted, 1e-9)

	last := idx[11]
	assert.Equal(t, 130.0, formulas.Round1(last.cu))
	assert.Equal(t, 140.0, formulas.Round1(last.sn))
	assert.Equal(t, 131.2, formulas.Round1(last.weighted))

	for _, c := range idx {
		assert.InDelta(t, formulas.Round1(0.88*c.cu+0.12*c.sn), formulas.Round1(c.weighted), 1e-9)
	}
}

func TestMonthly_BaselineFallsBackToEarliestMonth(t *testing.T) {
	m := newMonthly()
	for _, o := range []domain.BCOrderRecord{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), OrderAmount: 200, Quantity: 2},
		{Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), OrderAmount: 300, Quantity: 1},
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), OrderAmount: 400, Quantity: 1},
	} {
		m.add(o)
	}

	base, ok := m.baseline()
	require.True(t, ok)
	assert.InDelta(t, 200.0, base, 1e-9)

	idx := m.indices()
	assert.Len(t, idx, 2)
	assert.Equal(t, 100.0, idx[3])
	assert.InDelta(t, 200.0, idx[5], 1e-9)
	assert.Equal(t, 2, m.count(3))
	assert.Equal(t, 0, m.count(1))
}

func TestMonthly_Empty(t *testing.T) {
	m := newMonthly()

	_, ok := m.baseline()
	assert.False(t, ok)
	assert.Empty(t, m.indices())
}
