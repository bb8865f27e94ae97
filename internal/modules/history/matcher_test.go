package history

import (
	"testing"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(seq int, valveType, desc, date string, amount float64) domain.OrderRecord {
	d, err := domain.ParseOrderDate(date)
	if err != nil {
		panic(err)
	}
	return domain.OrderRecord{
		Seq:         seq,
		Date:        d,
		MaterialNo:  "M-" + date,
		Description: desc,
		Vendor:      "Vendor",
		OrderDate:   date,
		OrderAmount: amount,
		Quantity:    1,
		ValveType:   valveType,
	}
}

func TestMatcher_NoTypeMatch(t *testing.T) {
	m := NewMatcher([]domain.OrderRecord{order(0, "VGBX1", "A", "2024-01-01", 1)})

	res := m.Match("VZZZ1", "A")
	assert.Nil(t, res.Rank1)
	assert.Nil(t, res.Rank2)
	assert.Nil(t, res.Best())
	assert.Equal(t, MatchCounts{}, res.Counts)
}

func TestMatcher_EmptyValveType(t *testing.T) {
	m := NewMatcher([]domain.OrderRecord{order(0, "V", "A", "2024-01-01", 1)})
	res := m.Match("", "A")
	assert.Nil(t, res.Best())
	res = m.Match("X", "A")
	assert.Nil(t, res.Best())
}

func TestMatcher_TruncatesBothSides(t *testing.T) {
	m := NewMatcher([]domain.OrderRecord{
		order(0, "VGBASW3A0AX", "GLOBE", "2024-02-01", 90000),
	})

	res := m.Match("VGBASW3A0AT", "")
	require.NotNil(t, res.Rank2)
	assert.Nil(t, res.Rank1)
	assert.Equal(t, TierTypeOnly, res.Rank2.Tier)
	assert.Equal(t, 90000.0, res.Best().Amount)
	assert.Equal(t, MatchCounts{Total: 1, Tier1: 0, Tier2: 1}, res.Counts)
}

func TestMatcher_Tier1PreferredAndExcludedFromTier2(t *testing.T) {
	orders := []domain.OrderRecord{
		order(0, "VGBASW3A0AT", "Globe Valve I/O-P", "2023-11-20", 80000),
		order(1, "VGBASW3A0AT", "  GLOBE VALVE I/O-P ", "2024-03-15", 100000),
		order(2, "VGBASW3A0AX", "GATE VALVE", "2024-02-01", 95000),
	}
	m := NewMatcher(orders)

	res := m.Match("VGBASW3A0AT", "globe valve i/o-p")
	require.NotNil(t, res.Rank1)
	require.NotNil(t, res.Rank2)

	assert.Equal(t, TierExact, res.Rank1.Tier)
	assert.Equal(t, "2024-03-15", res.Rank1.Date)
	assert.Equal(t, 100000.0, res.Best().Amount)

	// newest remaining record once Tier-1 is excluded
	assert.Equal(t, "2024-02-01", res.Rank2.Date)
	assert.NotEqual(t, res.Rank1.seq, res.Rank2.seq)

	assert.Equal(t, MatchCounts{Total: 3, Tier1: 2, Tier2: 2}, res.Counts)
}

func TestMatcher_Tier2NeverRepeatsTier1(t *testing.T) {
	// two distinct records share material number and date; only the selected one is excluded
	a := order(0, "VGB1", "DESC", "2024-05-01", 500)
	b := order(1, "VGB1", "OTHER", "2024-05-01", 600)
	b.MaterialNo = a.MaterialNo

	res := NewMatcher([]domain.OrderRecord{a, b}).Match("VGB1", "desc")
	require.NotNil(t, res.Rank1)
	require.NotNil(t, res.Rank2)
	assert.Equal(t, 500.0, res.Rank1.Amount)
	assert.Equal(t, 600.0, res.Rank2.Amount)
}

func TestMatcher_OnlyTier1Candidate(t *testing.T) {
	res := NewMatcher([]domain.OrderRecord{order(0, "VGB1", "DESC", "2024-05-01", 500)}).Match("VGB1", "DESC")
	require.NotNil(t, res.Rank1)
	assert.Nil(t, res.Rank2)
	assert.Equal(t, MatchCounts{Total: 1, Tier1: 1, Tier2: 0}, res.Counts)
}

func TestMatcher_DateTieKeepsEarlierRow(t *testing.T) {
	orders := []domain.OrderRecord{
		order(0, "VGB1", "X", "2024-05", 111),
		order(1, "VGB1", "Y", "2024-05-01", 222),
	}
	res := NewMatcher(orders).Match("VGB1", "")
	require.NotNil(t, res.Rank2)
	assert.Equal(t, 111.0, res.Rank2.Amount)
}

func TestMatcher_ParsedDateOrdering(t *testing.T) {
	// month-only date sorts by calendar, not by string length
	orders := []domain.OrderRecord{
		order(0, "VGB1", "X", "2024-10", 1),
		order(1, "VGB1", "X", "2024-09-30", 2),
	}
	res := NewMatcher(orders).Match("VGB1", "")
	assert.Equal(t, 1.0, res.Best().Amount)
}

func TestMatcher_Tier1Invariant(t *testing.T) {
	orders := []domain.OrderRecord{
		order(0, "VGBASW3A0AT", "A", "2024-01-01", 1),
		order(1, "VGBASW3A0AQ", "B", "2024-02-01", 2),
		order(2, "VGBASW3A0BT", "A", "2024-03-01", 3),
		order(3, "VGBASW3A0AZ", "a ", "2023-03-01", 4),
	}
	m := NewMatcher(orders)

	for _, q := range []struct{ vt, desc string }{
		{"VGBASW3A0AT", "A"}, {"VGBASW3A0AY", "b"}, {"VGBASW3A0BT", " a"},
	} {
		res := m.Match(q.vt, q.desc)
		if res.Rank1 == nil {
			continue
		}
		assert.Equal(t, domain.NormalizeText(q.desc), domain.NormalizeText(res.Rank1.Description))
		if res.Rank2 != nil {
			assert.NotEqual(t, res.Rank1.seq, res.Rank2.seq)
		}
	}
}

func TestLatestPerValveType(t *testing.T) {
	orders := []domain.OrderRecord{
		order(0, "VA1", "x", "2024-01-01", 1),
		order(1, "VA1", "x", "2024-06-01", 2),
		order(2, "VB1", "y", "2024-03-01", 3),
		order(3, "", "z", "2024-12-01", 4),
	}

	latest := LatestPerValveType(orders)
	require.Len(t, latest, 2)
	assert.Equal(t, "VA1", latest[0].ValveType)
	assert.Equal(t, 2.0, latest[0].OrderAmount)
	assert.Equal(t, "VB1", latest[1].ValveType)
}
