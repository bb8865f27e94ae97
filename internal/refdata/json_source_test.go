package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeJSONTables(t, dir, fixtureTables())

	tables, err := NewDirSource(dir).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, tables.PriceTable, 2)
	assert.Equal(t, 5000.0, tables.PriceTable[0].OptionIP)
	assert.Len(t, tables.Quotes, 2)
	assert.Len(t, tables.Orders, 2)
	assert.Equal(t, "2024-05", tables.Orders[1].OrderDate)
	assert.Len(t, tables.LME, 12)
	assert.Equal(t, "VGBASW3A0AT", tables.MaterialValveMap["C001"])
}

func TestDirSource_MissingTable(t *testing.T) {
	dir := t.TempDir()
	writeJSONTables(t, dir, fixtureTables())
	require.NoError(t, os.Remove(filepath.Join(dir, TableLME+".json")))

	_, err := NewDirSource(dir).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTable)
	assert.Contains(t, err.Error(), "lme_data.json")
}

func TestDirSource_MalformedTable(t *testing.T) {
	dir := t.TempDir()
	writeJSONTables(t, dir, fixtureTables())
	require.NoError(t, os.WriteFile(filepath.Join(dir, TableQuotes+".json"), []byte(`{"no":`), 0o644))

	_, err := NewDirSource(dir).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestDirSource_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeJSONTables(t, dir, fixtureTables())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirSource(dir).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeJSONTables(t, dir, fixtureTables())

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store, err := NewLoader(NewDirSource(dir), log).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "dir:"+dir, store.Source())
	assert.Equal(t, 2, store.Counts().PriceTable)
}

func TestLoader_FailsOnInvalidData(t *testing.T) {
	dir := t.TempDir()
	tables := fixtureTables()
	tables.Orders[0].OrderDate = "yesterday"
	writeJSONTables(t, dir, tables)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store, err := NewLoader(NewDirSource(dir), log).Load(context.Background())
	assert.Nil(t, store)
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestLoader_FailsOnEmptyDirectory(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	_, err := NewLoader(NewDirSource(t.TempDir()), log).Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingTable)
}
