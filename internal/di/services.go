package di

import (
	"fmt"

	"github.com/aristath/valveprice/internal/clients/anthropic"
	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/modules/commentary"
	"github.com/aristath/valveprice/internal/modules/market"
	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/modules/quotes"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/aristath/valveprice/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates every service on top of a loaded store
func InitializeServices(store *refdata.Store, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	if store == nil {
		return nil, fmt.Errorf("reference data store cannot be nil")
	}

	container := &Container{Store: store}

	// Clients
	container.LLMClient = anthropic.NewClient(cfg.LLM, log)
	if !container.LLMClient.Available() {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, commentary will use templates")
	}

	// Core services
	container.PricingService = pricing.NewService(store, log)
	container.QuotesService = quotes.NewService(store, container.PricingService, log)
	container.MarketService = market.NewService(store, cfg.Market.VerdictStrategy, cfg.Market.LagMonths, log)

	// Commentary
	container.CommentaryCache = commentary.NewCache(cfg.CacheTTL)
	container.CommentaryService = commentary.NewService(
		container.LLMClient,
		container.PricingService,
		container.QuotesService,
		container.MarketService,
		container.CommentaryCache,
		log,
	)

	container.Scheduler = scheduler.New(log)

	log.Info().Msg("Services initialized")
	return container, nil
}
