package commentary

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/aristath/valveprice/internal/clients/anthropic"
	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/internal/modules/market"
	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/modules/quotes"
	testingpkg "github.com/aristath/valveprice/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, summarizer domain.Summarizer) *Service {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	store := testingpkg.NewStore(t)
	pricingService := pricing.NewService(store, logger)
	return NewService(
		summarizer,
		pricingService,
		quotes.NewService(store, pricingService, logger),
		market.NewService(store, market.StrategyTrend, 0, logger),
		NewCache(time.Hour),
		logger,
	)
}

// failingStream yields its chunks and then fails
type failingStream struct {
	chunks []string
	err    error
	calls  *int
}

func (f failingStream) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("boom")
}

func (f failingStream) Stream(context.Context, string, string) iter.Seq2[string, error] {
	if f.calls != nil {
		*f.calls++
	}
	err := f.err
	if err == nil {
		err = errors.New("connection reset")
	}
	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		yield("", err)
	}
}

func collect(seq iter.Seq[Event]) []Event {
	var out []Event
	for ev := range seq {
		out = append(out, ev)
	}
	return out
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Quotes ")
	require.NoError(t, err)
	assert.Equal(t, KindQuotes, k)

	_, err = ParseKind("weather")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestService_Prepare(t *testing.T) {
	s := newTestService(t, testingpkg.NewMockSummarizer("ok"))
	lagTwo := 2

	tests := []struct {
		name     string
		kind     Kind
		req      Request
		contains []string
	}{
		{"history recommendations", KindRecommendations, Request{}, []string{"VGBASW3A0AT", "VNOTABLE1", "VGCX12"}},
		{"given items", KindRecommendations, Request{Items: []pricing.LineItem{{ValveType: "VGCX12"}}}, []string{"VGCX12 |", "contract=120,000"}},
		{"quotes", KindQuotes, Request{}, []string{"excellent 1, normal 2, inadequate 1", "Q-0003: quote=50,000, recent=40,000"}},
		{"market", KindMarket, Request{Strategy: market.StrategyGap, Series: market.SeriesMain}, []string{"gap strategy", "Copper year over year: +30%"}},
		{"market with lag", KindMarket, Request{Strategy: market.StrategyGap, Lag: &lagTwo}, []string{"gap strategy, lag 2 months"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Prepare(tt.kind, tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, SystemPrompt, p.System)
			assert.NotEmpty(t, p.Fallback)
			for _, want := range tt.contains {
				assert.Contains(t, p.Text, want)
			}
		})
	}
}

func TestService_Prepare_InvalidInput(t *testing.T) {
	s := newTestService(t, testingpkg.NewMockSummarizer("ok"))

	_, err := s.Prepare(Kind("weather"), Request{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = s.Prepare(KindMarket, Request{Series: "Nobody Ltd"})
	assert.ErrorIs(t, err, market.ErrInvalidOption)

	lag := 12
	_, err = s.Prepare(KindMarket, Request{Lag: &lag})
	assert.ErrorIs(t, err, market.ErrInvalidOption)

	_, err = s.Prepare(KindQuotes, Request{Policy: "cheapest"})
	assert.Error(t, err)
}

func TestService_Generate_CachesModelText(t *testing.T) {
	mock := testingpkg.NewMockSummarizer("Quotes look reasonable.")
	s := newTestService(t, mock)

	c, err := s.Generate(context.Background(), KindQuotes, Request{})
	require.NoError(t, err)
	assert.Equal(t, Commentary{Kind: KindQuotes, Text: "Quotes look reasonable.", Source: SourceLLM}, c)

	c, err = s.Generate(context.Background(), KindQuotes, Request{})
	require.NoError(t, err)
	assert.True(t, c.Cached)
	assert.Len(t, mock.Calls(), 1)
	assert.Equal(t, SystemPrompt, mock.Calls()[0].System)
}

func TestService_Generate_FallsBackToTemplate(t *testing.T) {
	mock := testingpkg.NewMockSummarizer("")
	mock.SetError(errors.New("unavailable"))
	s := newTestService(t, mock)

	c, err := s.Generate(context.Background(), KindQuotes, Request{})
	require.NoError(t, err)

	assert.Equal(t, SourceTemplate, c.Source)
	assert.Contains(t, c.Text, "Verified 4 quotes: 1 excellent, 2 normal, 1 inadequate (25.0%)")
	assert.Contains(t, c.Text, "needs improvement")
	assert.Contains(t, c.Text, "Q-0003: quote 50,000 against recent 40,000 (+25.0%)")

	_, ok := s.cache.Get(CacheKey(SystemPrompt, mock.Calls()[0].Prompt))
	assert.False(t, ok, "template text is not cached")
}

func TestService_Stream_RelaysChunks(t *testing.T) {
	mock := testingpkg.NewMockSummarizer("Prices hold.", "Prices ", "hold.")
	s := newTestService(t, mock)

	seq, err := s.Stream(context.Background(), KindMarket, Request{})
	require.NoError(t, err)

	assert.Equal(t, []Event{
		{Type: EventText, Text: "Prices "},
		{Type: EventText, Text: "hold."},
		{Type: EventDone, Source: SourceLLM},
	}, collect(seq))

	seq, err = s.Stream(context.Background(), KindMarket, Request{})
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Type: EventText, Text: "Prices hold."},
		{Type: EventDone, Source: SourceLLM, Cached: true},
	}, collect(seq))
	assert.Len(t, mock.Calls(), 1)
}

func TestService_Stream_TemplateWhenModelFailsFirst(t *testing.T) {
	mock := testingpkg.NewMockSummarizer("")
	mock.SetError(errors.New("unavailable"))
	s := newTestService(t, mock)

	seq, err := s.Stream(context.Background(), KindRecommendations, Request{})
	require.NoError(t, err)

	events := collect(seq)
	require.Len(t, events, 2)
	assert.Equal(t, EventText, events[0].Type)
	assert.Contains(t, events[0].Text, "3 lines priced")
	assert.Equal(t, Event{Type: EventDone, Source: SourceTemplate}, events[1])
}

func TestService_Stream_ErrorAfterText(t *testing.T) {
	s := newTestService(t, failingStream{chunks: []string{"partial"}})

	seq, err := s.Stream(context.Background(), KindQuotes, Request{})
	require.NoError(t, err)

	assert.Equal(t, []Event{
		{Type: EventText, Text: "partial"},
		{Type: EventError, Error: "connection reset"},
	}, collect(seq))
}

func TestService_Stream_TruncatedReplyIsNotCached(t *testing.T) {
	calls := 0
	s := newTestService(t, failingStream{
		chunks: []string{"Half a sent"},
		err:    anthropic.ErrIncompleteStream,
		calls:  &calls,
	})

	for i := 0; i < 2; i++ {
		seq, err := s.Stream(context.Background(), KindMarket, Request{})
		require.NoError(t, err)
		assert.Equal(t, []Event{
			{Type: EventText, Text: "Half a sent"},
			{Type: EventError, Error: anthropic.ErrIncompleteStream.Error()},
		}, collect(seq))
	}
	assert.Equal(t, 2, calls)
	assert.Zero(t, s.cache.Len())
}

func TestService_Stream_InvalidRequest(t *testing.T) {
	s := newTestService(t, testingpkg.NewMockSummarizer("ok"))

	_, err := s.Stream(context.Background(), Kind("weather"), Request{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
