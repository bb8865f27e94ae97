// Package pricing computes contract prices from the price table and reconciles them with order history.
package pricing

import (
	"strings"

	"github.com/aristath/valveprice/internal/domain"
)

// LookupStep records which attempt resolved a base code
type LookupStep int

const (
	StepUnmapped LookupStep = iota
	StepBase                // exact match on the base-keyed map
	StepWidened             // one more trailing character stripped, base-keyed map
	StepFullCode            // original code on the full-code map
)

func (s LookupStep) String() string {
	switch s {
	case StepBase:
		return "base"
	case StepWidened:
		return "widened"
	case StepFullCode:
		return "full_code"
	}
	return "unmapped"
}

// MarshalText renders the step by name in JSON
func (s LookupStep) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Lookup is the outcome of resolving a base code
type Lookup struct {
	Entry domain.PriceTableEntry
	Key   string
	Step  LookupStep
}

// Found reports whether the code resolved to a price table entry
func (l Lookup) Found() bool {
	return l.Step != StepUnmapped
}

// PriceIndex resolves base codes to price table entries.
// Both maps keep the first entry seen for a key; later duplicates are shadowed.
type PriceIndex struct {
	byType map[string]domain.PriceTableEntry
	byBase map[string]domain.PriceTableEntry
}

// NewPriceIndex builds the full-code and base-code maps in load order
func NewPriceIndex(entries []domain.PriceTableEntry) *PriceIndex {
	ix := &PriceIndex{
		byType: make(map[string]domain.PriceTableEntry, len(entries)),
		byBase: make(map[string]domain.PriceTableEntry, len(entries)),
	}
	for _, e := range entries {
		if _, ok := ix.byType[e.ValveType]; !ok {
			ix.byType[e.ValveType] = e
		}
		if _, ok := ix.byBase[e.ValveTypeBase]; !ok {
			ix.byBase[e.ValveTypeBase] = e
		}
	}
	return ix
}

// LookupBase resolves a base code: exact base, then one character narrower,
// then the full-code map with the original code. Nothing narrower is tried.
func (ix *PriceIndex) LookupBase(code string) Lookup {
	code = strings.TrimSpace(code)
	if code == "" {
		return Lookup{}
	}

	if e, ok := ix.byBase[code]; ok {
		return Lookup{Entry: e, Key: code, Step: StepBase}
	}
	if widened := domain.StripVariant(code); widened != "" {
		if e, ok := ix.byBase[widened]; ok {
			return Lookup{Entry: e, Key: widened, Step: StepWidened}
		}
	}
	if e, ok := ix.byType[code]; ok {
		return Lookup{Entry: e, Key: code, Step: StepFullCode}
	}
	return Lookup{}
}

// BaseCode derives the price table join key from a full valve-type code
func BaseCode(valveType string) string {
	return domain.StripVariant(strings.TrimSpace(valveType))
}
