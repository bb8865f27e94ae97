package pricing

import (
	"strings"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/dustin/go-humanize"
)

// OptionInput carries the free-text attributes that trigger surcharges
type OptionInput struct {
	Description string
	InnerPaint  string
	OuterPaint  string
	Spec        string
}

// Surcharge is one applied option charge
type Surcharge struct {
	Label  string              `json:"label"`
	Column domain.OptionColumn `json:"column"`
	Amount float64             `json:"amount"`
}

// String renders the surcharge as label=amount
func (s Surcharge) String() string {
	return s.Label + "=" + humanize.Commaf(s.Amount)
}

// OptionResult is the set of surcharges applied to one line item
type OptionResult struct {
	Total   float64     `json:"total"`
	Applied []Surcharge `json:"applied"`
}

// Details renders every applied surcharge as label=amount
func (r OptionResult) Details() []string {
	out := make([]string, len(r.Applied))
	for i, s := range r.Applied {
		out[i] = s.String()
	}
	return out
}

type keywordRule struct {
	keyword string
	columns []domain.OptionColumn
}

// descriptionRules are evaluated in order against the upper-cased description
var descriptionRules = []keywordRule{
	{"I/O-P", []domain.OptionColumn{domain.OptionIP, domain.OptionOP}},
	{"I/O-T", []domain.OptionColumn{domain.OptionIP, domain.OptionOP}},
	{"LOCK", []domain.OptionColumn{domain.OptionLock}},
	{"I-T", []domain.OptionColumn{domain.OptionIP}},
	{"O-T", []domain.OptionColumn{domain.OptionOP}},
	{"IND", []domain.OptionColumn{domain.OptionInd}},
	{"L/SW", []domain.OptionColumn{domain.OptionLSW}},
	{"EXT", []domain.OptionColumn{domain.OptionExt}},
}

// discRules map spec keywords to disc-material columns
var discRules = []struct {
	keyword string
	column  domain.OptionColumn
}{
	{"SCS13", domain.OptionDiscSCS13},
	{"SCS14", domain.OptionDiscSCS14},
	{"SCS16", domain.OptionDiscSCS16},
	{"SUS316", domain.OptionDiscSCS16},
	{"SUS304", domain.OptionDiscSCS13},
	{"NBC", domain.OptionDiscNBC},
}

// noPaint values mean the paint attribute is not requested
var noPaint = map[string]bool{"": true, "N0": true, "NO": true, "NONE": true, "-": true}

// ResolveOptions determines which surcharges apply to an entry.
// Each column is charged at most once, and a zero amount is never reported.
func ResolveOptions(entry domain.PriceTableEntry, in OptionInput) OptionResult {
	res := OptionResult{Applied: []Surcharge{}}
	used := make(map[domain.OptionColumn]bool)

	apply := func(label string, col domain.OptionColumn) {
		amount := entry.Option(col)
		if amount <= 0 || used[col] {
			return
		}
		used[col] = true
		res.Applied = append(res.Applied, Surcharge{Label: label, Column: col, Amount: amount})
		res.Total += amount
	}

	desc := strings.ToUpper(in.Description)
	for _, rule := range descriptionRules {
		if !strings.Contains(desc, rule.keyword) {
			continue
		}
		for _, col := range rule.columns {
			apply(rule.keyword, col)
		}
	}

	if !noPaint[domain.NormalizeText(in.InnerPaint)] {
		apply("inner paint", domain.OptionIP)
	}
	if !noPaint[domain.NormalizeText(in.OuterPaint)] {
		apply("outer paint", domain.OptionOP)
	}

	if spec := strings.ToUpper(in.Spec); spec != "" {
		for _, rule := range discRules {
			if strings.Contains(spec, rule.keyword) {
				apply("DISC("+rule.keyword+")", rule.column)
			}
		}
	}

	return res
}
