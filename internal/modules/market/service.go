package market

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/aristath/valveprice/pkg/formulas"
	"github.com/rs/zerolog"
)

// ErrInvalidOption is returned for an unknown strategy, series or vendor, or an out-of-range lag
var ErrInvalidOption = errors.New("invalid market trend option")

// Series selectors
const (
	SeriesAll  = "all"
	SeriesMain = "main"
)

// SMAPeriod is the window of the weighted commodity index moving average
const SMAPeriod = 3

// TrendOptions selects how the trend is computed. Zero values fall back to service defaults.
type TrendOptions struct {
	Strategy  string
	LagMonths *int
	Series    string
	Vendors   []string
}

// MonthTrend is one month of the market trend
type MonthTrend struct {
	Month          int                 `json:"month"`
	MonthLabel     string              `json:"monthLabel"`
	CuIndex        float64             `json:"cuIndex"`
	SnIndex        float64             `json:"snIndex"`
	WeightedIndex  float64             `json:"weightedIndex"`
	WeightedSMA    *float64            `json:"weightedSma3,omitempty"`
	CommodityMonth int                 `json:"commodityMonth,omitempty"`
	ExpectedIndex  *float64            `json:"expectedIndex,omitempty"`
	OrderIndex     *float64            `json:"orderIndex,omitempty"`
	OrderCount     int                 `json:"orderCount"`
	Gap            *float64            `json:"gap,omitempty"`
	Verdict        Verdict             `json:"verdict,omitempty"`
	VendorIndices  map[string]*float64 `json:"vendorIndices,omitempty"`
}

// YearOverYear is the December-over-January commodity change in whole percent
type YearOverYear struct {
	Cu float64 `json:"cu"`
	Sn float64 `json:"sn"`
}

// Trend is the full market analysis
type Trend struct {
	Strategy      string          `json:"strategy"`
	Series        string          `json:"series"`
	LagMonths     int             `json:"lagMonths"`
	MainVendor    string          `json:"mainVendor"`
	Vendors       []string        `json:"vendors"`
	TotalOrders   int             `json:"totalOrders"`
	PerMonth      []MonthTrend    `json:"perMonth"`
	YearOverYear  YearOverYear    `json:"yearOverYearChange"`
	VerdictCounts map[Verdict]int `json:"verdictCounts"`
}

// Service computes market trends over the loaded reference data
type Service struct {
	store    *refdata.Store
	strategy string
	lag      int
	log      zerolog.Logger
}

// NewService creates a market trend service with a default strategy and lag
func NewService(store *refdata.Store, strategy string, lagMonths int, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		strategy: strategy,
		lag:      lagMonths,
		log:      log.With().Str("service", "market").Logger(),
	}
}

// vendorSeries groups qualifying orders by vendor in order of first appearance
type vendorSeries struct {
	names  []string
	counts map[string]int
	byName map[string]*monthly
	all    *monthly
}

func groupOrders(orders []domain.BCOrderRecord) *vendorSeries {
	vs := &vendorSeries{
		counts: make(map[string]int),
		byName: make(map[string]*monthly),
		all:    newMonthly(),
	}
	for _, o := range orders {
		m, ok := vs.byName[o.Vendor]
		if !ok {
			m = newMonthly()
			vs.byName[o.Vendor] = m
			vs.names = append(vs.names, o.Vendor)
		}
		m.add(o)
		vs.all.add(o)
		vs.counts[o.Vendor]++
	}
	return vs
}

// main is the vendor with the most orders; ties go to the first seen
func (vs *vendorSeries) main() string {
	best := ""
	for _, name := range vs.names {
		if best == "" || vs.counts[name] > vs.counts[best] {
			best = name
		}
	}
	return best
}

func (vs *vendorSeries) lookup(name string) (*monthly, error) {
	m, ok := vs.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vendor %q", ErrInvalidOption, name)
	}
	return m, nil
}

// Trend computes the monthly commodity and order indices with verdicts
func (s *Service) Trend(opts TrendOptions) (*Trend, error) {
	strategyName := opts.Strategy
	if strategyName == "" {
		strategyName = s.strategy
	}
	strategy, err := StrategyByName(strategyName)
	if err != nil {
		return nil, err
	}

	lag := s.lag
	if opts.LagMonths != nil {
		lag = *opts.LagMonths
	}
	if lag < 0 || lag >= refdata.MonthsPerYear {
		return nil, fmt.Errorf("%w: lag %d outside 0..%d", ErrInvalidOption, lag, refdata.MonthsPerYear-1)
	}

	qualifying := QualifyingOrders(s.store.BCOrders())
	vs := groupOrders(qualifying)
	mainVendor := vs.main()

	seriesName := strings.TrimSpace(opts.Series)
	if seriesName == "" {
		seriesName = SeriesAll
	}
	series := vs.all
	switch seriesName {
	case SeriesAll:
	case SeriesMain:
		if mainVendor != "" {
			series = vs.byName[mainVendor]
		}
	default:
		if series, err = vs.lookup(seriesName); err != nil {
			return nil, err
		}
	}

	vendorIdx := make(map[string]map[int]float64, len(opts.Vendors))
	for _, name := range opts.Vendors {
		m, err := vs.lookup(name)
		if err != nil {
			return nil, err
		}
		vendorIdx[name] = m.indices()
	}

	commodity := commodityIndices(s.store.LME())
	weighted := make([]float64, len(commodity))
	for i, c := range commodity {
		weighted[i] = c.weighted
	}
	sma := formulas.SMASeries(weighted, SMAPeriod)
	orderIdx := series.indices()

	trend := &Trend{
		Strategy:      strategy.Name(),
		Series:        seriesName,
		LagMonths:     lag,
		MainVendor:    mainVendor,
		Vendors:       vs.names,
		TotalOrders:   len(qualifying),
		PerMonth:      make([]MonthTrend, 0, len(commodity)),
		VerdictCounts: map[Verdict]int{VerdictGood: 0, VerdictNormal: 0, VerdictBad: 0},
	}
	if trend.Vendors == nil {
		trend.Vendors = []string{}
	}

	var prev *Observation
	for i, c := range commodity {
		mt := MonthTrend{
			Month:         c.month,
			MonthLabel:    c.label,
			CuIndex:       formulas.Round1(c.cu),
			SnIndex:       formulas.Round1(c.sn),
			WeightedIndex: formulas.Round1(c.weighted),
			OrderCount:    series.count(c.month),
		}
		if !math.IsNaN(sma[i]) {
			mt.WeightedSMA = rounded(sma[i])
		}

		if len(vendorIdx) > 0 {
			mt.VendorIndices = make(map[string]*float64, len(vendorIdx))
			for name, idx := range vendorIdx {
				if v, ok := idx[c.month]; ok {
					mt.VendorIndices[name] = rounded(v)
				} else {
					mt.VendorIndices[name] = nil
				}
			}
		}

		order, hasOrder := orderIdx[c.month]
		if hasOrder {
			mt.OrderIndex = rounded(order)
		}

		if j := i - lag; j >= 0 {
			compared := commodity[j]
			mt.CommodityMonth = compared.month
			mt.ExpectedIndex = rounded(ExpectedIndex(compared.weighted))

			if hasOrder {
				obs := Observation{Month: c.month, Order: order, Commodity: compared.weighted}
				mt.Gap = rounded(order - ExpectedIndex(compared.weighted))
				if v, ok := strategy.Assess(obs, prev); ok {
					mt.Verdict = v
					trend.VerdictCounts[v]++
				}
				prev = &obs
			}
		}

		trend.PerMonth = append(trend.PerMonth, mt)
	}

	if lme := s.store.LME(); len(lme) > 0 {
		first, last := lme[0], lme[len(lme)-1]
		trend.YearOverYear = YearOverYear{
			Cu: math.Round(formulas.PercentChange(first.CuPricePerTon, last.CuPricePerTon)),
			Sn: math.Round(formulas.PercentChange(first.SnPricePerTon, last.SnPricePerTon)),
		}
	}

	s.log.Debug().
		Str("strategy", trend.Strategy).
		Str("series", seriesName).
		Int("lag", lag).
		Int("orders", trend.TotalOrders).
		Msg("Market trend computed")

	return trend, nil
}

func rounded(v float64) *float64 {
	r := formulas.Round1(v)
	return &r
}
