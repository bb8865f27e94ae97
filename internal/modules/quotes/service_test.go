package quotes

import (
	"testing"

	"github.com/aristath/valveprice/internal/modules/pricing"
	testingpkg "github.com/aristath/valveprice/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	store := testingpkg.NewStore(t)
	return NewService(store, pricing.NewService(store, logger), logger)
}

func TestService_Verify_Tiered(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		id       int
		verdict  Verdict
		label    string
		contract *float64
		recent   *float64
		gap      *float64
		source   string
	}{
		{1, VerdictNormal, LabelNormal, ptr(132000), ptr(125000), ptr(-4), BaselineHistory},
		{2, VerdictExcellent, LabelExcellent, ptr(120000), ptr(90000), ptr(-100.0 / 9), BaselineHistory},
		{3, VerdictInadequate, LabelInadequate, nil, ptr(40000), ptr(25), BaselineHistory},
		{4, VerdictNormal, LabelNoBaseline, nil, nil, nil, BaselineNone},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			v, err := s.Verify(tt.id, PolicyTiered)
			require.NoError(t, err)

			assert.Equal(t, tt.id, v.Quote.No)
			assert.Equal(t, tt.verdict, v.Verdict)
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.source, v.BaselineSource)
			assertOptional(t, tt.contract, v.ContractPrice)
			assertOptional(t, tt.recent, v.RecentPrice)
			assertOptional(t, tt.gap, v.GapPercent)
		})
	}
}

func TestService_Verify_ResolvesValveTypeFromMaterialCore(t *testing.T) {
	s := newTestService(t)

	v, err := s.Verify(1, PolicyTiered)
	require.NoError(t, err)

	assert.Equal(t, "VGBASW3A0AT", v.ValveType)
	assert.True(t, v.Matched)
	require.NotNil(t, v.RecentOrder)
	assert.Equal(t, 1, v.RecentOrder.Tier)
	assert.Len(t, v.OptionDetails, 3)
}

func TestService_Verify_NotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.Verify(99, PolicyTiered)
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestService_Verify_RelatedAverage(t *testing.T) {
	s := newTestService(t)

	v, err := s.Verify(1, PolicyRelatedAverage)
	require.NoError(t, err)

	assert.Equal(t, BaselineRelated, v.BaselineSource)
	assert.Equal(t, 2, v.RelatedOrderCount)
	require.NotNil(t, v.RecentPrice)
	assert.InDelta(t, 121500.0, *v.RecentPrice, 1e-9)
	assert.Nil(t, v.RecentOrder)
	assert.Equal(t, VerdictNormal, v.Verdict)

	v, err = s.Verify(4, PolicyRelatedAverage)
	require.NoError(t, err)
	assert.Equal(t, BaselineNone, v.BaselineSource)
	assert.True(t, v.NoBaseline)
}

func TestService_VerifyMany_PreservesOrder(t *testing.T) {
	s := newTestService(t)

	results, err := s.VerifyMany([]int{3, 1, 2}, PolicyTiered)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 3, results[0].Quote.No)
	assert.Equal(t, 1, results[1].Quote.No)
	assert.Equal(t, 2, results[2].Quote.No)

	_, err = s.VerifyMany([]int{1, 42}, PolicyTiered)
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestService_VerifyAll(t *testing.T) {
	s := newTestService(t)

	sum := s.VerifyAll(PolicyTiered)

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, Counts{Excellent: 1, Normal: 2, Inadequate: 1}, sum.Counts)
	assert.Equal(t, 1, sum.NoBaseline)
	assert.InDelta(t, 25.0, sum.InadequateShare, 1e-9)
	assert.Equal(t, AssessmentNeedsImprovement, sum.Assessment)
}

func assertOptional(t *testing.T, want, got *float64) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.InDelta(t, *want, *got, 1e-6)
}
