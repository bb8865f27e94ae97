package market

import (
	"fmt"
	"math"
)

// Verdict grades a month's order price against the commodity market
type Verdict string

const (
	VerdictGood   Verdict = "Good"
	VerdictNormal Verdict = "Normal"
	VerdictBad    Verdict = "Bad"
)

// Direction is the way a month-over-month index change moves
type Direction string

const (
	TrendFlat Direction = "flat"
	TrendUp   Direction = "up"
	TrendDown Direction = "down"
)

// Thresholds, in index points
const (
	GapThreshold  = 5.0
	FlatThreshold = 2.0
)

// Strategy names
const (
	StrategyTrend = "trend"
	StrategyGap   = "gap"
)

// ClassifyTrend maps an index change to a direction; |delta| <= FlatThreshold is flat
func ClassifyTrend(delta float64) Direction {
	switch {
	case math.Abs(delta) <= FlatThreshold:
		return TrendFlat
	case delta > 0:
		return TrendUp
	}
	return TrendDown
}

// trendMatrix[order trend][commodity trend]
var trendMatrix = map[Direction]map[Direction]Verdict{
	TrendFlat: {TrendFlat: VerdictNormal, TrendDown: VerdictBad, TrendUp: VerdictGood},
	TrendUp:   {TrendFlat: VerdictBad, TrendDown: VerdictBad, TrendUp: VerdictNormal},
	TrendDown: {TrendFlat: VerdictGood, TrendDown: VerdictBad, TrendUp: VerdictGood},
}

// MatrixVerdict resolves an order trend and a commodity trend to a verdict
func MatrixVerdict(order, commodity Direction) Verdict {
	if v, ok := trendMatrix[order][commodity]; ok {
		return v
	}
	return VerdictNormal
}

// Observation pairs a month's order index with the commodity index it is compared against
type Observation struct {
	Month     int
	Order     float64
	Commodity float64
}

// VerdictStrategy grades one observation, optionally against the previous month.
// ok is false when the strategy cannot grade the month.
type VerdictStrategy interface {
	Name() string
	Assess(cur Observation, prev *Observation) (v Verdict, ok bool)
}

// AbsoluteGap grades the gap between the order index and the expected index
type AbsoluteGap struct{}

func (AbsoluteGap) Name() string { return StrategyGap }

// Assess returns Good below -GapThreshold, Bad above GapThreshold, else Normal
func (AbsoluteGap) Assess(cur Observation, _ *Observation) (Verdict, bool) {
	gap := cur.Order - ExpectedIndex(cur.Commodity)
	switch {
	case gap < -GapThreshold:
		return VerdictGood, true
	case gap > GapThreshold:
		return VerdictBad, true
	}
	return VerdictNormal, true
}

// TrendMatrix grades month-over-month moves of both indices.
// It needs the immediately preceding month.
type TrendMatrix struct{}

func (TrendMatrix) Name() string { return StrategyTrend }

// Assess looks up the order and commodity trends in the verdict matrix
func (TrendMatrix) Assess(cur Observation, prev *Observation) (Verdict, bool) {
	if prev == nil || prev.Month != cur.Month-1 {
		return "", false
	}
	return MatrixVerdict(
		ClassifyTrend(cur.Order-prev.Order),
		ClassifyTrend(cur.Commodity-prev.Commodity),
	), true
}

// StrategyByName returns the named strategy; empty selects the trend matrix
func StrategyByName(name string) (VerdictStrategy, error) {
	switch name {
	case "", StrategyTrend:
		return TrendMatrix{}, nil
	case StrategyGap:
		return AbsoluteGap{}, nil
	}
	return nil, fmt.Errorf("%w: strategy %q", ErrInvalidOption, name)
}
