// Package main is the entry point for the valve price service.
// It loads the reference tables once, then serves contract price recommendations,
// quote verification, market index trends and commentary over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/di"
	"github.com/aristath/valveprice/internal/server"
	"github.com/aristath/valveprice/pkg/logger"
)

// referenceLoadTimeout bounds reading the reference tables at startup
const referenceLoadTimeout = 2 * time.Minute

func main() {
	// Load configuration first to get log settings
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	log.Info().
		Str("data_source", cfg.Data.Source).
		Str("data_dir", cfg.DataDir).
		Msg("Starting valve price service")

	// Reference data is loaded here; the service does not start without it
	loadCtx, loadCancel := context.WithTimeout(context.Background(), referenceLoadTimeout)
	container, _, err := di.Wire(loadCtx, cfg, log)
	loadCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	srv, err := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	container.Scheduler.Start()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
