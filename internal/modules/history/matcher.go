// Package history ranks past purchase orders by relevance to a valve type and description.
package history

import (
	"sort"
	"strings"

	"github.com/aristath/valveprice/internal/domain"
)

// Tiers of a historical match
const (
	TierExact    = 1 // truncated type and description both match
	TierTypeOnly = 2 // truncated type matches
)

// Match is one historical order selected by the matcher
type Match struct {
	Tier        int     `json:"tier"`
	Vendor      string  `json:"vendor"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	MaterialNo  string  `json:"materialNo"`
	Description string  `json:"description"`
	seq         int
}

// MatchCounts gauges how much history backs a match
type MatchCounts struct {
	Total int `json:"total"` // orders sharing the truncated type
	Tier1 int `json:"tier1"` // of those, orders whose description also matches
	Tier2 int `json:"tier2"` // Total minus the record reported as Tier-1
}

// Result carries both ranks; either may be nil
type Result struct {
	Rank1  *Match      `json:"rank1,omitempty"`
	Rank2  *Match      `json:"rank2,omitempty"`
	Counts MatchCounts `json:"matchCounts"`
}

// Best returns the Tier-1 match if present, else the Tier-2 match
func (r Result) Best() *Match {
	if r.Rank1 != nil {
		return r.Rank1
	}
	return r.Rank2
}

// Matcher indexes order history by truncated valve type.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	byType map[string][]domain.OrderRecord
}

// NewMatcher groups orders by valve type with the trailing variant character removed
func NewMatcher(orders []domain.OrderRecord) *Matcher {
	byType := make(map[string][]domain.OrderRecord)
	for _, o := range orders {
		key := domain.StripVariant(strings.TrimSpace(o.ValveType))
		if key == "" {
			continue
		}
		byType[key] = append(byType[key], o)
	}
	return &Matcher{byType: byType}
}

// Match finds the most recent exact (type+description) and type-only orders.
// The Tier-2 result never repeats the Tier-1 record.
func (m *Matcher) Match(valveType, description string) Result {
	key := domain.StripVariant(strings.TrimSpace(valveType))
	if key == "" {
		return Result{}
	}

	candidates := m.byType[key]
	if len(candidates) == 0 {
		return Result{}
	}

	result := Result{Counts: MatchCounts{Total: len(candidates)}}

	var rank1 *domain.OrderRecord
	if desc := strings.TrimSpace(description); desc != "" {
		for i := range candidates {
			if !strings.EqualFold(strings.TrimSpace(candidates[i].Description), desc) {
				continue
			}
			result.Counts.Tier1++
			if rank1 == nil || newer(candidates[i], *rank1) {
				rank1 = &candidates[i]
			}
		}
	}

	var rank2 *domain.OrderRecord
	for i := range candidates {
		if rank1 != nil && candidates[i].Seq == rank1.Seq {
			continue
		}
		result.Counts.Tier2++
		if rank2 == nil || newer(candidates[i], *rank2) {
			rank2 = &candidates[i]
		}
	}

	if rank1 != nil {
		result.Rank1 = toMatch(*rank1, TierExact)
	}
	if rank2 != nil {
		result.Rank2 = toMatch(*rank2, TierTypeOnly)
	}
	return result
}

// newer orders by date, breaking ties in favour of the earlier-loaded row
func newer(a, b domain.OrderRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.Seq < b.Seq
}

func toMatch(o domain.OrderRecord, tier int) *Match {
	return &Match{
		Tier:        tier,
		Vendor:      o.Vendor,
		Date:        o.OrderDate,
		Amount:      o.OrderAmount,
		MaterialNo:  o.MaterialNo,
		Description: o.Description,
		seq:         o.Seq,
	}
}

// LatestPerValveType returns the most recent order of every distinct valve type, newest first
func LatestPerValveType(orders []domain.OrderRecord) []domain.OrderRecord {
	latest := make(map[string]domain.OrderRecord)
	for _, o := range orders {
		vt := strings.TrimSpace(o.ValveType)
		if vt == "" {
			continue
		}
		if cur, ok := latest[vt]; !ok || newer(o, cur) {
			latest[vt] = o
		}
	}

	out := make([]domain.OrderRecord, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out
}
