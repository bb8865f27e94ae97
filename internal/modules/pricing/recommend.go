package pricing

import "math"

// RecentDiscount is the share of the most recent order price demanded when no contract exists
const RecentDiscount = 0.9

// Rationale explains how a recommended price was chosen
type Rationale string

const (
	RationaleContract     Rationale = "contract basis"
	RationaleRecent       Rationale = "recent order basis"
	RationaleRecent90     Rationale = "90% of recent order, table unmapped"
	RationaleContractOnly Rationale = "contract, no history"
	RationaleNoBasis      Rationale = "no basis"
)

// Recent90 returns 90% of the recent price, or nil
func Recent90(recent *float64) *float64 {
	if recent == nil {
		return nil
	}
	v := *recent * RecentDiscount
	return &v
}

// Recommend reconciles a contract price and a recent order price.
// The result never exceeds either baseline when both exist.
func Recommend(contract, recent *float64) (*float64, Rationale) {
	switch {
	case contract != nil && recent != nil:
		v := math.Min(*contract, *recent)
		if *contract <= *recent {
			return &v, RationaleContract
		}
		return &v, RationaleRecent
	case recent != nil:
		return Recent90(recent), RationaleRecent90
	case contract != nil:
		v := *contract
		return &v, RationaleContractOnly
	}
	return nil, RationaleNoBasis
}
