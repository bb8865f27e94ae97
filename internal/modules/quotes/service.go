package quotes

import (
	"errors"
	"fmt"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/internal/modules/history"
	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/rs/zerolog"
)

// ErrQuoteNotFound is returned when a quote id matches no loaded quote
var ErrQuoteNotFound = errors.New("quote not found")

// InadequateThreshold is the inadequate share (percent) at which a quote set needs improvement
const InadequateThreshold = 20.0

// Assessments of a whole quote set
const (
	AssessmentAcceptable       = "acceptable"
	AssessmentNeedsImprovement = "needs improvement"
)

// Baseline sources reported with each verification
const (
	BaselineHistory   = "history"
	BaselineRelated   = "related_orders"
	BaselineQuoteUnit = "quote_unit_price"
	BaselineNone      = "none"
)

// Verification is the result of checking one quote
type Verification struct {
	Quote             domain.QuoteRecord `json:"quote"`
	ValveType         string             `json:"valveType"`
	Policy            Policy             `json:"policy"`
	Matched           bool               `json:"matched"`
	ContractPrice     *float64           `json:"contractPrice,omitempty"`
	OptionDetails     []string           `json:"optionDetails"`
	RecentOrder       *history.Match     `json:"recentOrder,omitempty"`
	RecentPrice       *float64           `json:"recentPrice,omitempty"`
	BaselineSource    string             `json:"baselineSource"`
	RelatedOrderCount int                `json:"relatedOrderCount,omitempty"`
	Classification
}

// Counts tallies verdicts over a set of quotes
type Counts struct {
	Excellent  int `json:"excellent"`
	Normal     int `json:"normal"`
	Inadequate int `json:"inadequate"`
}

func (c *Counts) add(v Verdict) {
	switch v {
	case VerdictExcellent:
		c.Excellent++
	case VerdictInadequate:
		c.Inadequate++
	default:
		c.Normal++
	}
}

// Summary is the result of verifying every loaded quote
type Summary struct {
	Results         []Verification `json:"results"`
	Counts          Counts         `json:"counts"`
	Total           int            `json:"total"`
	NoBaseline      int            `json:"noBaseline"`
	InadequateShare float64        `json:"inadequateShare"`
	Assessment      string         `json:"assessment"`
}

// Service verifies supplier quotes
type Service struct {
	store   *refdata.Store
	pricing *pricing.Service
	log     zerolog.Logger
}

// NewService creates a quote verification service sharing the pricing index and matcher
func NewService(store *refdata.Store, pricingService *pricing.Service, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		pricing: pricingService,
		log:     log.With().Str("service", "quotes").Logger(),
	}
}

// Verify checks one quote by its number
func (s *Service) Verify(id int, policy Policy) (Verification, error) {
	q, ok := s.store.Quote(id)
	if !ok {
		return Verification{}, fmt.Errorf("%w: %d", ErrQuoteNotFound, id)
	}
	return s.verify(q, policy), nil
}

// VerifyMany checks quotes in the order given. Any unknown id fails the whole call.
func (s *Service) VerifyMany(ids []int, policy Policy) ([]Verification, error) {
	quotes := make([]domain.QuoteRecord, len(ids))
	for i, id := range ids {
		q, ok := s.store.Quote(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrQuoteNotFound, id)
		}
		quotes[i] = q
	}

	out := make([]Verification, len(quotes))
	for i, q := range quotes {
		out[i] = s.verify(q, policy)
	}
	return out, nil
}

// VerifyAll checks every loaded quote and assesses the set
func (s *Service) VerifyAll(policy Policy) Summary {
	quotes := s.store.Quotes()
	sum := Summary{Results: make([]Verification, len(quotes)), Total: len(quotes)}
	for i, q := range quotes {
		v := s.verify(q, policy)
		sum.Results[i] = v
		sum.Counts.add(v.Verdict)
		if v.NoBaseline {
			sum.NoBaseline++
		}
	}

	sum.Assessment = AssessmentAcceptable
	if sum.Total > 0 {
		sum.InadequateShare = float64(sum.Counts.Inadequate) / float64(sum.Total) * 100
		if sum.InadequateShare >= InadequateThreshold {
			sum.Assessment = AssessmentNeedsImprovement
		}
	}

	s.log.Debug().
		Int("total", sum.Total).
		Int("excellent", sum.Counts.Excellent).
		Int("normal", sum.Counts.Normal).
		Int("inadequate", sum.Counts.Inadequate).
		Str("policy", string(policy)).
		Msg("Quote verification complete")

	return sum
}

func (s *Service) verify(q domain.QuoteRecord, policy Policy) Verification {
	valveType := s.store.MaterialValveMap().ValveType(q.MaterialCore)
	contract := s.pricing.Contract(valveType, pricing.OptionInput{
		Description: q.Description,
		InnerPaint:  q.InnerPaint,
		OuterPaint:  q.OuterPaint,
		Spec:        q.Spec,
	})

	v := Verification{
		Quote:          q,
		ValveType:      valveType,
		Policy:         policy,
		Matched:        contract.Matched,
		ContractPrice:  contract.ContractPrice,
		OptionDetails:  contract.Options.Details(),
		BaselineSource: BaselineNone,
	}

	switch policy {
	case PolicyRelatedAverage:
		related := relatedOrders(s.store.Orders(), q.Description)
		v.RelatedOrderCount = len(related)
		if avg := relatedAverage(related); avg != nil {
			v.RecentPrice = avg
			v.BaselineSource = BaselineRelated
		} else if q.UnitPrice > 0 {
			unit := q.UnitPrice
			v.RecentPrice = &unit
			v.BaselineSource = BaselineQuoteUnit
		}
	default:
		if best := s.pricing.Matcher().Match(valveType, q.Description).Best(); best != nil {
			amount := best.Amount
			v.RecentOrder = best
			v.RecentPrice = &amount
			v.BaselineSource = BaselineHistory
		}
	}

	v.Classification = Classify(q.QuotePrice, v.ContractPrice, v.RecentPrice)
	return v
}
