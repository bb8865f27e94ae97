package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/refdata"
	testingpkg "github.com/aristath/valveprice/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(dir string) *config.Config {
	return &config.Config{
		DataDir:  dir,
		Port:     3000,
		Data:     config.DataConfig{Source: config.SourceDir},
		LLM:      config.LLMConfig{BaseURL: "http://127.0.0.1:0", Timeout: time.Second},
		Market:   config.MarketConfig{VerdictStrategy: config.StrategyTrend},
		CacheTTL: time.Minute,
	}
}

func TestWire(t *testing.T) {
	dir := t.TempDir()
	testingpkg.WriteJSONDir(t, dir, testingpkg.NewReferenceTables())

	container, jobs, err := Wire(context.Background(), newTestConfig(dir), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)

	assert.NotNil(t, container.Store)
	assert.NotNil(t, container.PricingService)
	assert.NotNil(t, container.QuotesService)
	assert.NotNil(t, container.MarketService)
	assert.NotNil(t, container.CommentaryService)
	assert.False(t, container.LLMClient.Available())

	assert.Equal(t, 3, container.Store.Counts().PriceTable)
	assert.Equal(t, "commentary_cache_cleanup", jobs.CommentaryCacheCleanup.Name())

	registered := container.Scheduler.Jobs()
	require.Len(t, registered, 1)
	assert.Equal(t, CommentaryCacheCleanupSchedule, registered[0].Schedule)
}

func TestWire_MissingTable(t *testing.T) {
	dir := t.TempDir()
	testingpkg.WriteJSONDir(t, dir, testingpkg.NewReferenceTables())
	require.NoError(t, os.Remove(filepath.Join(dir, refdata.TableQuotes+".json")))

	_, _, err := Wire(context.Background(), newTestConfig(dir), zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, refdata.ErrMissingTable))
}

func TestInitializeServices_NilStore(t *testing.T) {
	_, err := InitializeServices(nil, newTestConfig(t.TempDir()), zerolog.Nop())
	assert.Error(t, err)
}

func TestRegisterJobs_NilContainer(t *testing.T) {
	_, err := RegisterJobs(nil, zerolog.Nop())
	assert.Error(t, err)
}
