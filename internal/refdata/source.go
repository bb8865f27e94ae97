package refdata

import (
	"context"
	"fmt"

	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/rs/zerolog"
)

// Source reads the raw reference tables from one backing store
type Source interface {
	Name() string
	Load(ctx context.Context) (*Tables, error)
}

// NewSource builds the source selected by configuration
func NewSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Source, error) {
	switch cfg.Data.Source {
	case config.SourceDir:
		return NewDirSource(cfg.DataDir), nil
	case config.SourceXLSX:
		return NewXLSXSource(cfg.DataDir), nil
	case config.SourceSQLite:
		return NewSQLiteSource(cfg.Data.SQLitePath, log), nil
	case config.SourceS3:
		return NewS3Source(ctx, cfg.Data.S3)
	}
	return nil, fmt.Errorf("unknown reference data source %q", cfg.Data.Source)
}

// Loader reads a Source once and freezes it into a Store
type Loader struct {
	source Source
	log    zerolog.Logger
}

// NewLoader creates a loader for the given source
func NewLoader(source Source, log zerolog.Logger) *Loader {
	return &Loader{
		source: source,
		log:    log.With().Str("component", "refdata_loader").Logger(),
	}
}

// Load reads and validates every table. Any error leaves no Store behind.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	timer := utils.NewTimer("refdata_load", l.log)

	tables, err := l.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data from %s: %w", l.source.Name(), err)
	}

	store, err := NewStore(*tables, l.source.Name())
	if err != nil {
		return nil, fmt.Errorf("invalid reference data from %s: %w", l.source.Name(), err)
	}

	counts := store.Counts()
	timer.Stop(map[string]int{
		"price_table": counts.PriceTable,
		"quotes":      counts.Quotes,
	})

	l.log.Info().
		Str("source", store.Source()).
		Int("price_table", counts.PriceTable).
		Int("quotes", counts.Quotes).
		Int("orders", counts.Orders).
		Int("bc_orders", counts.BCOrders).
		Int("material_map", counts.MaterialValveMap).
		Int("lme", counts.LME).
		Msg("Reference data loaded")

	return store, nil
}
