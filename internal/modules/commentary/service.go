// Package commentary explains pricing, quote and market results in prose,
// using a language model when one is reachable and rule-based templates otherwise.
package commentary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/internal/modules/market"
	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/modules/quotes"
	"github.com/rs/zerolog"
)

// ErrUnknownKind is returned for a commentary kind that does not exist
var ErrUnknownKind = errors.New("unknown commentary kind")

// Kind selects which result is explained
type Kind string

const (
	KindRecommendations Kind = "recommendations"
	KindQuotes          Kind = "quotes"
	KindMarket          Kind = "market"
)

// Text sources
const (
	SourceLLM      = "llm"
	SourceTemplate = "template"
)

// Stream event types
const (
	EventText  = "text"
	EventDone  = "done"
	EventError = "error"
)

// defaultHistoryLimit caps history recommendations when no items are given
const defaultHistoryLimit = 20

// Request scopes the data a commentary is built from
type Request struct {
	Items    []pricing.LineItem `json:"items" validate:"omitempty,max=100,dive"`
	Limit    int                `json:"limit" validate:"gte=0,lte=500"`
	Policy   string             `json:"policy" validate:"omitempty,oneof=tiered related-average"`
	Series   string             `json:"series"`
	Strategy string             `json:"strategy" validate:"omitempty,oneof=trend gap"`
	Lag      *int               `json:"lag" validate:"omitempty,gte=0,lte=11"`
}

// Commentary is a generated explanation
type Commentary struct {
	Kind   Kind   `json:"kind"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Cached bool   `json:"cached"`
}

// Event is one message of a commentary stream
type Event struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
	Cached bool   `json:"cached,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Service builds commentary prompts and relays them to the summarizer
type Service struct {
	summarizer domain.Summarizer
	pricing    *pricing.Service
	quotes     *quotes.Service
	market     *market.Service
	cache      *Cache
	log        zerolog.Logger
}

// NewService creates a commentary service
func NewService(
	summarizer domain.Summarizer,
	pricingService *pricing.Service,
	quotesService *quotes.Service,
	marketService *market.Service,
	cache *Cache,
	log zerolog.Logger,
) *Service {
	return &Service{
		summarizer: summarizer,
		pricing:    pricingService,
		quotes:     quotesService,
		market:     marketService,
		cache:      cache,
		log:        log.With().Str("service", "commentary").Logger(),
	}
}

// ParseKind validates a commentary kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRecommendations, KindQuotes, KindMarket:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Prepare computes the underlying result and builds its prompt and fallback
func (s *Service) Prepare(kind Kind, req Request) (Prompt, error) {
	switch kind {
	case KindRecommendations:
		if len(req.Items) > 0 {
			return recommendationsPrompt(s.pricing.RecommendBulk(req.Items)), nil
		}
		limit := req.Limit
		if limit == 0 {
			limit = defaultHistoryLimit
		}
		return recommendationsPrompt(s.pricing.RecommendFromHistory(limit).Results), nil

	case KindQuotes:
		policy, err := quotes.ParsePolicy(req.Policy)
		if err != nil {
			return Prompt{}, err
		}
		return quotesPrompt(s.quotes.VerifyAll(policy)), nil

	case KindMarket:
		trend, err := s.market.Trend(market.TrendOptions{
			Strategy:  req.Strategy,
			LagMonths: req.Lag,
			Series:    req.Series,
		})
		if err != nil {
			return Prompt{}, err
		}
		return marketPrompt(trend), nil
	}
	return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Generate returns a complete commentary. Summarizer failures fall back to the template.
func (s *Service) Generate(ctx context.Context, kind Kind, req Request) (Commentary, error) {
	p, err := s.Prepare(kind, req)
	if err != nil {
		return Commentary{}, err
	}

	key := CacheKey(p.System, p.Text)
	if text, ok := s.cache.Get(key); ok {
		return Commentary{Kind: kind, Text: text, Source: SourceLLM, Cached: true}, nil
	}

	text, err := s.summarizer.Complete(ctx, p.Text, p.System)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Language model unavailable, using template commentary")
		return Commentary{Kind: kind, Text: p.Fallback, Source: SourceTemplate}, nil
	}

	s.cache.Set(key, text)
	return Commentary{Kind: kind, Text: text, Source: SourceLLM}, nil
}

// Stream prepares the prompt and returns a sequence of text events ending in done or error.
// A summarizer that fails before producing any text is replaced by the template as a single chunk.
func (s *Service) Stream(ctx context.Context, kind Kind, req Request) (iter.Seq[Event], error) {
	p, err := s.Prepare(kind, req)
	if err != nil {
		return nil, err
	}
	key := CacheKey(p.System, p.Text)

	return func(yield func(Event) bool) {
		if text, ok := s.cache.Get(key); ok {
			if yield(Event{Type: EventText, Text: text}) {
				yield(Event{Type: EventDone, Source: SourceLLM, Cached: true})
			}
			return
		}

		fallback := func(cause error) {
			s.log.Warn().Err(cause).Str("kind", string(kind)).Msg("Language model unavailable, streaming template commentary")
			if yield(Event{Type: EventText, Text: p.Fallback}) {
				yield(Event{Type: EventDone, Source: SourceTemplate})
			}
		}

		var sb strings.Builder
		for chunk, err := range s.summarizer.Stream(ctx, p.Text, p.System) {
			if err != nil {
				if sb.Len() == 0 {
					fallback(err)
					return
				}
				s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Commentary stream interrupted")
				yield(Event{Type: EventError, Error: err.Error()})
				return
			}
			sb.WriteString(chunk)
			if !yield(Event{Type: EventText, Text: chunk}) {
				return
			}
		}

		if strings.TrimSpace(sb.String()) == "" {
			fallback(nil)
			return
		}
		s.cache.Set(key, sb.String())
		yield(Event{Type: EventDone, Source: SourceLLM})
	}, nil
}
