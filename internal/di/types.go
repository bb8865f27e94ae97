// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived component and is the single source of
// truth handed to the HTTP server and the scheduler.
package di

import (
	"github.com/aristath/valveprice/internal/clients/anthropic"
	"github.com/aristath/valveprice/internal/modules/commentary"
	"github.com/aristath/valveprice/internal/modules/market"
	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/modules/quotes"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/aristath/valveprice/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Reference data, loaded once at startup and never mutated
	Store *refdata.Store

	// Clients
	LLMClient *anthropic.Client // Commentary language model (unavailable without an API key)

	// Services
	PricingService    *pricing.Service    // Contract prices and recommendations
	QuotesService     *quotes.Service     // Quote verification
	MarketService     *market.Service     // Commodity index and order price trend
	CommentaryService *commentary.Service // LLM or template commentary
	CommentaryCache   *commentary.Cache   // Generated commentary by prompt hash

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	CommentaryCacheCleanup scheduler.Job
}
