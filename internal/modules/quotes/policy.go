package quotes

import (
	"fmt"
	"strings"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/aristath/valveprice/pkg/formulas"
)

// Policy selects how the recent-price baseline of a quote is chosen
type Policy string

const (
	// PolicyTiered uses the two-tier history match of the quote's valve type
	PolicyTiered Policy = "tiered"
	// PolicyRelatedAverage averages orders whose description contains the quote's first word
	PolicyRelatedAverage Policy = "related-average"
)

// RelatedOrderLimit caps the orders averaged by PolicyRelatedAverage
const RelatedOrderLimit = 5

// ParsePolicy maps a query value to a Policy; empty selects PolicyTiered
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyTiered:
		return PolicyTiered, nil
	case PolicyRelatedAverage:
		return PolicyRelatedAverage, nil
	}
	return "", fmt.Errorf("unknown policy %q", s)
}

// relatedOrders returns up to RelatedOrderLimit orders, in load order,
// whose description contains the first word of description
func relatedOrders(orders []domain.OrderRecord, description string) []domain.OrderRecord {
	token := utils.FirstToken(description)
	if token == "" {
		return nil
	}

	var out []domain.OrderRecord
	for _, o := range orders {
		if !strings.Contains(o.Description, token) {
			continue
		}
		out = append(out, o)
		if len(out) == RelatedOrderLimit {
			break
		}
	}
	return out
}

// relatedAverage is the mean order amount of the related orders, or nil when there are none
func relatedAverage(related []domain.OrderRecord) *float64 {
	if len(related) == 0 {
		return nil
	}
	amounts := make([]float64, len(related))
	for i, o := range related {
		amounts[i] = o.OrderAmount
	}
	avg := formulas.Mean(amounts)
	return &avg
}
