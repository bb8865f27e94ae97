// Package quotes judges supplier quotes against contract and order-history baselines.
package quotes

// Verdict grades a quote against its baselines
type Verdict string

const (
	VerdictExcellent  Verdict = "excellent"
	VerdictNormal     Verdict = "normal"
	VerdictInadequate Verdict = "inadequate"
)

// Verdict labels shown to buyers
const (
	LabelExcellent  = "excellent"
	LabelNormal     = "normal"
	LabelInadequate = "inadequate"
	LabelNoBaseline = "normal (no baseline)"
)

// ExcellentRatio is the share of the recent price a quote must not exceed to rate excellent
const ExcellentRatio = 0.9

// Classification is the verdict for one quoted unit price
type Classification struct {
	Verdict    Verdict  `json:"verdict"`
	Label      string   `json:"verdictLabel"`
	NoBaseline bool     `json:"noBaseline"`
	Recent90   *float64 `json:"recent90,omitempty"`
	GapPercent *float64 `json:"gapPercent,omitempty"`
}

// Classify grades a quote. The first satisfied rule wins:
// at most 90% of recent, at most recent or contract, above an existing baseline.
// With no baseline at all the quote is normal and flagged NoBaseline.
func Classify(quote float64, contract, recent *float64) Classification {
	var c Classification
	if recent != nil && *recent != 0 {
		r90 := *recent * ExcellentRatio
		gap := (quote - *recent) / *recent * 100
		c.Recent90 = &r90
		c.GapPercent = &gap
	}

	switch {
	case c.Recent90 != nil && quote <= *c.Recent90:
		c.Verdict, c.Label = VerdictExcellent, LabelExcellent
	case (recent != nil && quote <= *recent) || (contract != nil && quote <= *contract):
		c.Verdict, c.Label = VerdictNormal, LabelNormal
	case recent != nil || contract != nil:
		c.Verdict, c.Label = VerdictInadequate, LabelInadequate
	default:
		c.Verdict, c.Label = VerdictNormal, LabelNoBaseline
		c.NoBaseline = true
	}
	return c
}
