// Package server provides the HTTP server and routing for the valve price service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/di"
	commentaryhandlers "github.com/aristath/valveprice/internal/modules/commentary/handlers"
	markethandlers "github.com/aristath/valveprice/internal/modules/market/handlers"
	pricinghandlers "github.com/aristath/valveprice/internal/modules/pricing/handlers"
	quoteshandlers "github.com/aristath/valveprice/internal/modules/quotes/handlers"
)

// StatusHeartbeatSchedule is how often the status monitor samples the host
const StatusHeartbeatSchedule = "@every 1m"

// MinRequestTimeout is the request deadline when the model timeout is short
const MinRequestTimeout = 60 * time.Second

// requestTimeout leaves room for a full model response and ends before the write deadline
func requestTimeout(llmTimeout time.Duration) time.Duration {
	return max(MinRequestTimeout, llmTimeout+15*time.Second)
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server.
// The status monitor is registered with the container's scheduler when one is present.
func New(cfg Config) (*Server, error) {
	systemHandlers := NewSystemHandlers(cfg.Log, cfg.Config, cfg.Container)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
		statusMonitor:  NewStatusMonitor(systemHandlers, cfg.Log),
	}

	if cfg.Container.Scheduler != nil {
		if err := cfg.Container.Scheduler.AddJob(StatusHeartbeatSchedule, s.statusMonitor); err != nil {
			return nil, fmt.Errorf("failed to register status monitor: %w", err)
		}
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout(cfg.Config.LLM.Timeout) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Metrics and logging
	s.router.Use(metricsMiddleware)
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(requestTimeout(s.cfg.LLM.Timeout)))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Stream-Session"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses; text/event-stream is not in the default type list
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Liveness and metrics
	s.router.Get("/health", s.handleLiveness)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// System status and logs
		logHandlers := NewLogHandlers(s.log, s.cfg.Log.File)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
			r.Get("/logs", logHandlers.HandleGetLogs)
			r.Get("/logs/errors", logHandlers.HandleGetErrors)
		})

		// Reference data
		NewDataHandlers(s.container.Store, s.log).RegisterRoutes(r)

		// Pricing module
		pricinghandlers.NewHandler(s.container.PricingService, s.log).RegisterRoutes(r)

		// Quotes module
		quoteshandlers.NewHandler(s.container.QuotesService, s.log).RegisterRoutes(r)

		// Market module
		markethandlers.NewHandler(s.container.MarketService, s.log).RegisterRoutes(r)

		// Commentary module
		commentaryhandlers.NewHandler(s.container.CommentaryService, s.cfg.AllowedOrigins, s.log).RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
