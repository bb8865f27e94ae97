package di

import (
	"context"
	"fmt"

	"github.com/aristath/valveprice/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Load reference data
// 2. Initialize services
// 3. Register jobs
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	// Step 1: Reference data
	store, err := InitializeReferenceData(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	// Step 2: Services
	container, err := InitializeServices(store, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Step 3: Jobs
	jobs, err := RegisterJobs(container, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}
