// Package market indexes realized bronze valve prices against copper and tin prices.
package market

import (
	"strings"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/pkg/formulas"
)

// Bronze alloy composition
const (
	CuWeight = 0.88
	SnWeight = 0.12
)

// PassThrough is the share of a commodity move expected to reach the order price
const PassThrough = 0.8

// Order filter markers
const (
	lockMarker = "LOCK"
	trSuffix   = "TR"
)

// WeightedIndex blends copper and tin indices by alloy composition
func WeightedIndex(cuIndex, snIndex float64) float64 {
	return cuIndex*CuWeight + snIndex*SnWeight
}

// ExpectedIndex is the order index implied by a weighted commodity index
func ExpectedIndex(weighted float64) float64 {
	return 100 + (weighted-100)*PassThrough
}

// Qualifies reports whether a BC order enters the trend: no lock variant and a TR suffix
func Qualifies(o domain.BCOrderRecord) bool {
	return !strings.Contains(o.Description, lockMarker) &&
		strings.HasSuffix(strings.TrimSpace(o.Description), trSuffix)
}

// QualifyingOrders keeps the orders that enter the trend, in load order
func QualifyingOrders(orders []domain.BCOrderRecord) []domain.BCOrderRecord {
	var out []domain.BCOrderRecord
	for _, o := range orders {
		if Qualifies(o) {
			out = append(out, o)
		}
	}
	return out
}

// commodityIndex holds unrounded indices for one month
type commodityIndex struct {
	month    int
	label    string
	cu       float64
	sn       float64
	weighted float64
}

// commodityIndices indexes each month's prices to month 1.
// points must hold months 1..12 in order.
func commodityIndices(points []domain.CommodityPoint) []commodityIndex {
	if len(points) == 0 {
		return nil
	}
	base := points[0]
	out := make([]commodityIndex, len(points))
	for i, p := range points {
		cu := formulas.IndexOf(p.CuPricePerTon, base.CuPricePerTon)
		sn := formulas.IndexOf(p.SnPricePerTon, base.SnPricePerTon)
		out[i] = commodityIndex{
			month:    p.Month,
			label:    p.MonthLabel,
			cu:       cu,
			sn:       sn,
			weighted: WeightedIndex(cu, sn),
		}
	}
	return out
}

// monthly collects per-month unit prices of one series
type monthly struct {
	prices map[int][]float64
}

func newMonthly() *monthly {
	return &monthly{prices: make(map[int][]float64)}
}

func (m *monthly) add(o domain.BCOrderRecord) {
	month := int(o.Date.Month())
	m.prices[month] = append(m.prices[month], o.UnitPrice())
}

func (m *monthly) count(month int) int {
	return len(m.prices[month])
}

// average is the mean unit price of a month, or false when the month has no orders
func (m *monthly) average(month int) (float64, bool) {
	prices := m.prices[month]
	if len(prices) == 0 {
		return 0, false
	}
	return formulas.Mean(prices), true
}

// baseline is month 1's average, else the earliest month with orders
func (m *monthly) baseline() (float64, bool) {
	for month := 1; month <= 12; month++ {
		if avg, ok := m.average(month); ok {
			return avg, true
		}
	}
	return 0, false
}

// indices indexes every month with orders to the series baseline
func (m *monthly) indices() map[int]float64 {
	out := make(map[int]float64)
	base, ok := m.baseline()
	if !ok || base <= 0 {
		return out
	}
	for month := range m.prices {
		if avg, ok := m.average(month); ok {
			out[month] = formulas.IndexOf(avg, base)
		}
	}
	return out
}
