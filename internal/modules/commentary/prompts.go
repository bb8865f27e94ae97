package commentary

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/valveprice/internal/modules/market"
	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/modules/quotes"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/dustin/go-humanize"
)

// SystemPrompt frames every commentary request
const SystemPrompt = "You are a procurement analyst for industrial valves. " +
	"Answer in short plain-text paragraphs without markdown tables."

// maxListed caps the line items quoted in a prompt or template
const maxListed = 20

// Prompt is a prepared commentary request with its rule-based fallback
type Prompt struct {
	Kind     Kind
	System   string
	Text     string
	Fallback string
}

func money(v float64) string {
	return humanize.Commaf(math.Round(v))
}

func optMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

func recommendationsPrompt(recs []pricing.Recommendation) Prompt {
	var lines strings.Builder
	for i, r := range recs {
		if i == maxListed {
			fmt.Fprintf(&lines, "... %d more\n", len(recs)-maxListed)
			break
		}
		fmt.Fprintf(&lines, "%s | %s | contract=%s | recent=%s | recommended=%s | %s\n",
			r.ValveType, utils.Truncate(r.Description, 40),
			optMoney(r.ContractPrice), optMoney(r.RecentPrice), optMoney(r.RecommendedPrice), r.Rationale)
	}

	text := "Price recommendations for purchase requisition lines. " +
		"Summarize the recommended unit price and its basis for each line in one sentence, " +
		"then point out lines without any price basis.\n\n" + lines.String()

	return Prompt{Kind: KindRecommendations, System: SystemPrompt, Text: text, Fallback: recommendationsTemplate(recs)}
}

func recommendationsTemplate(recs []pricing.Recommendation) string {
	byRationale := make(map[pricing.Rationale]int)
	for _, r := range recs {
		byRationale[r.Rationale]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d lines priced: %d on contract basis, %d on recent order basis, %d at 90%% of recent order (table unmapped), %d contract only, %d without basis.",
		len(recs),
		byRationale[pricing.RationaleContract],
		byRationale[pricing.RationaleRecent],
		byRationale[pricing.RationaleRecent90],
		byRationale[pricing.RationaleContractOnly],
		byRationale[pricing.RationaleNoBasis])

	for i, r := range recs {
		if i == maxListed {
			break
		}
		if r.RecommendedPrice == nil {
			fmt.Fprintf(&sb, "\n- %s: no basis, price manually", r.ValveType)
			continue
		}
		fmt.Fprintf(&sb, "\n- %s: %s (%s)", r.ValveType, money(*r.RecommendedPrice), r.Rationale)
	}
	return sb.String()
}

func inadequate(sum quotes.Summary) []quotes.Verification {
	var out []quotes.Verification
	for _, v := range sum.Results {
		if v.Verdict == quotes.VerdictInadequate {
			out = append(out, v)
		}
	}
	return out
}

func quotesPrompt(sum quotes.Summary) Prompt {
	var lines strings.Builder
	bad := inadequate(sum)
	for i, v := range bad {
		if i == maxListed {
			break
		}
		fmt.Fprintf(&lines, "%s: quote=%s, recent=%s, contract=%s, gap=%s\n",
			v.Quote.MaterialNo, money(v.Quote.QuotePrice), optMoney(v.RecentPrice), optMoney(v.ContractPrice), percent(v.GapPercent))
	}
	if len(bad) == 0 {
		lines.WriteString("none\n")
	}

	text := fmt.Sprintf("Supplier quote verification results.\n"+
		"Distribution: excellent %d, normal %d, inadequate %d (of %d).\n\n"+
		"Inadequate quotes:\n%s\n"+
		"Explain the likely causes of the inadequate quotes and propose a negotiation strategy.",
		sum.Counts.Excellent, sum.Counts.Normal, sum.Counts.Inadequate, sum.Total, lines.String())

	return Prompt{Kind: KindQuotes, System: SystemPrompt, Text: text, Fallback: quotesTemplate(sum)}
}

func quotesTemplate(sum quotes.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Verified %d quotes: %d excellent, %d normal, %d inadequate (%.1f%%). Overall the quote set is %s.",
		sum.Total, sum.Counts.Excellent, sum.Counts.Normal, sum.Counts.Inadequate, sum.InadequateShare, sum.Assessment)
	if sum.NoBaseline > 0 {
		fmt.Fprintf(&sb, " %d quotes had no baseline and were rated normal by default.", sum.NoBaseline)
	}
	for i, v := range inadequate(sum) {
		if i == maxListed {
			break
		}
		fmt.Fprintf(&sb, "\n- %s: quote %s against recent %s (%s); request a revised quote.",
			v.Quote.MaterialNo, money(v.Quote.QuotePrice), optMoney(v.RecentPrice), percent(v.GapPercent))
	}
	return sb.String()
}

func badMonths(t *market.Trend) []string {
	var out []string
	for _, m := range t.PerMonth {
		if m.Verdict == market.VerdictBad {
			out = append(out, m.MonthLabel)
		}
	}
	return out
}

func marketPrompt(t *market.Trend) Prompt {
	bad := strings.Join(badMonths(t), ", ")
	if bad == "" {
		bad = "none"
	}

	text := fmt.Sprintf("Bronze valve market analysis (series %s, %s strategy, lag %d months).\n"+
		"- Copper year over year: %+.0f%%, tin year over year: %+.0f%%\n"+
		"- Verdicts: Good %d, Normal %d, Bad %d\n"+
		"- Bad months: %s\n\n"+
		"Describe the supplier pricing behaviour relative to the commodity market and suggest a purchasing strategy.",
		t.Series, t.Strategy, t.LagMonths,
		t.YearOverYear.Cu, t.YearOverYear.Sn,
		t.VerdictCounts[market.VerdictGood], t.VerdictCounts[market.VerdictNormal], t.VerdictCounts[market.VerdictBad],
		bad)

	return Prompt{Kind: KindMarket, System: SystemPrompt, Text: text, Fallback: marketTemplate(t)}
}

func marketTemplate(t *market.Trend) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Copper moved %+.0f%% and tin %+.0f%% over the year across %s qualifying orders.",
		t.YearOverYear.Cu, t.YearOverYear.Sn, humanize.Comma(int64(t.TotalOrders)))
	fmt.Fprintf(&sb, " Months rated Good %d, Normal %d, Bad %d.",
		t.VerdictCounts[market.VerdictGood], t.VerdictCounts[market.VerdictNormal], t.VerdictCounts[market.VerdictBad])

	switch bad := badMonths(t); {
	case len(bad) > 0:
		fmt.Fprintf(&sb, " Order prices outpaced the market in %s; review those purchases with the supplier.", strings.Join(bad, ", "))
	default:
		sb.WriteString(" Order prices tracked the commodity market.")
	}
	return sb.String()
}
