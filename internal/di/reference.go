package di

import (
	"context"
	"fmt"

	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/rs/zerolog"
)

// InitializeReferenceData reads and validates the reference tables from the configured source
func InitializeReferenceData(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*refdata.Store, error) {
	source, err := refdata.NewSource(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference data source: %w", err)
	}

	store, err := refdata.NewLoader(source, log).Load(ctx)
	if err != nil {
		return nil, err
	}
	return store, nil
}
