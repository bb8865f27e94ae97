package pricing

import (
	"strings"

	"github.com/aristath/valveprice/internal/modules/history"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/rs/zerolog"
)

// LineItem is one purchase requisition line to price.
// MaterialCore resolves the valve type when ValveType is empty.
type LineItem struct {
	ValveType    string `json:"valveType" validate:"required_without=MaterialCore"`
	MaterialCore string `json:"materialCore" validate:"required_without=ValveType"`
	Description  string `json:"description"`
	InnerPaint   string `json:"innerPaint"`
	OuterPaint   string `json:"outerPaint"`
	Spec         string `json:"spec"`
}

// Contract is the table-derived price of one line item
type Contract struct {
	BaseCode      string       `json:"baseCode"`
	Matched       bool         `json:"matched"`
	LookupStep    LookupStep   `json:"lookupStep"`
	MatchedType   string       `json:"matchedValveType,omitempty"`
	BodyUnitPrice *float64     `json:"bodyUnitPrice,omitempty"`
	Options       OptionResult `json:"options"`
	ContractPrice *float64     `json:"contractPrice,omitempty"`
}

// Recommendation is the reconciled price for one line item
type Recommendation struct {
	ValveType         string              `json:"valveType"`
	Description       string              `json:"description"`
	BaseCode          string              `json:"baseCode"`
	Matched           bool                `json:"matched"`
	LookupStep        LookupStep          `json:"lookupStep"`
	BodyUnitPrice     *float64            `json:"bodyUnitPrice,omitempty"`
	OptionTotal       float64             `json:"optionTotal"`
	AppliedSurcharges []Surcharge         `json:"appliedSurcharges"`
	OptionDetails     []string            `json:"optionDetails"`
	ContractPrice     *float64            `json:"contractPrice,omitempty"`
	RecentOrder       *history.Match      `json:"recentOrder,omitempty"`
	MatchCounts       history.MatchCounts `json:"matchCounts"`
	RecentPrice       *float64            `json:"recentPrice,omitempty"`
	Recent90          *float64            `json:"recent90,omitempty"`
	RecommendedPrice  *float64            `json:"recommendedPrice,omitempty"`
	Rationale         Rationale           `json:"rationale"`
}

// HistorySummary counts the outcome of a history-driven bulk run
type HistorySummary struct {
	Total    int `json:"total"`
	Mapped   int `json:"mapped"`
	Unmapped int `json:"unmapped"`
}

// HistoryRecommendations is the result of pricing every valve type seen in order history
type HistoryRecommendations struct {
	Summary HistorySummary   `json:"summary"`
	Results []Recommendation `json:"results"`
}

// Service prices line items against the reference data
type Service struct {
	store   *refdata.Store
	index   *PriceIndex
	matcher *history.Matcher
	log     zerolog.Logger
}

// NewService builds the price index and history matcher over a loaded store
func NewService(store *refdata.Store, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		index:   NewPriceIndex(store.PriceTable()),
		matcher: history.NewMatcher(store.Orders()),
		log:     log.With().Str("service", "pricing").Logger(),
	}
}

// Index exposes the shared price index
func (s *Service) Index() *PriceIndex {
	return s.index
}

// Matcher exposes the shared history matcher
func (s *Service) Matcher() *history.Matcher {
	return s.matcher
}

// ResolveValveType returns the explicit valve type or the material-core mapping
func (s *Service) ResolveValveType(valveType, materialCore string) string {
	if vt := strings.TrimSpace(valveType); vt != "" {
		return vt
	}
	return s.store.MaterialValveMap().ValveType(strings.TrimSpace(materialCore))
}

// Contract computes body unit price plus applicable options for a valve type
func (s *Service) Contract(valveType string, in OptionInput) Contract {
	base := BaseCode(valveType)
	lookup := s.index.LookupBase(base)

	c := Contract{
		BaseCode:   base,
		Matched:    lookup.Found(),
		LookupStep: lookup.Step,
		Options:    OptionResult{Applied: []Surcharge{}},
	}
	if !lookup.Found() {
		return c
	}

	unit := lookup.Entry.UnitPrice()
	c.MatchedType = lookup.Entry.ValveType
	c.BodyUnitPrice = &unit
	c.Options = ResolveOptions(lookup.Entry, in)
	total := unit + c.Options.Total
	c.ContractPrice = &total
	return c
}

// Recommend prices one line item
func (s *Service) Recommend(item LineItem) Recommendation {
	valveType := s.ResolveValveType(item.ValveType, item.MaterialCore)
	contract := s.Contract(valveType, OptionInput{
		Description: item.Description,
		InnerPaint:  item.InnerPaint,
		OuterPaint:  item.OuterPaint,
		Spec:        item.Spec,
	})
	match := s.matcher.Match(valveType, item.Description)

	rec := Recommendation{
		ValveType:         valveType,
		Description:       item.Description,
		BaseCode:          contract.BaseCode,
		Matched:           contract.Matched,
		LookupStep:        contract.LookupStep,
		BodyUnitPrice:     contract.BodyUnitPrice,
		OptionTotal:       contract.Options.Total,
		AppliedSurcharges: contract.Options.Applied,
		OptionDetails:     contract.Options.Details(),
		ContractPrice:     contract.ContractPrice,
		MatchCounts:       match.Counts,
	}

	if best := match.Best(); best != nil {
		amount := best.Amount
		rec.RecentOrder = best
		rec.RecentPrice = &amount
		rec.Recent90 = Recent90(&amount)
	}

	rec.RecommendedPrice, rec.Rationale = Recommend(rec.ContractPrice, rec.RecentPrice)
	return rec
}

// RecommendBulk prices every item, preserving input order
func (s *Service) RecommendBulk(items []LineItem) []Recommendation {
	out := make([]Recommendation, len(items))
	for i, item := range items {
		out[i] = s.Recommend(item)
	}

	unmapped := 0
	for _, r := range out {
		if !r.Matched {
			unmapped++
		}
	}
	s.log.Debug().Int("items", len(items)).Int("unmapped", unmapped).Msg("Bulk recommendation complete")

	return out
}

// RecommendFromHistory prices the latest order of every valve type in the order history,
// newest first. A positive limit caps the number of valve types.
func (s *Service) RecommendFromHistory(limit int) HistoryRecommendations {
	latest := history.LatestPerValveType(s.store.Orders())
	if limit > 0 && limit < len(latest) {
		latest = latest[:limit]
	}

	items := make([]LineItem, len(latest))
	for i, o := range latest {
		items[i] = LineItem{ValveType: o.ValveType, MaterialCore: o.MaterialCore, Description: o.Description}
	}

	results := s.RecommendBulk(items)
	summary := HistorySummary{Total: len(results)}
	for _, r := range results {
		if r.Matched {
			summary.Mapped++
		} else {
			summary.Unmapped++
		}
	}

	return HistoryRecommendations{Summary: summary, Results: results}
}
