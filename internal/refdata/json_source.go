package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fetchFunc returns the raw bytes of one table document
type fetchFunc func(ctx context.Context, table string) ([]byte, error)

// DirSource reads <table>.json files from a directory
type DirSource struct {
	dir string
}

// NewDirSource creates a JSON directory source
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name identifies the source in logs
func (s *DirSource) Name() string {
	return "dir:" + s.dir
}

// Load reads all required tables
func (s *DirSource) Load(ctx context.Context) (*Tables, error) {
	return decodeJSONTables(ctx, func(_ context.Context, table string) ([]byte, error) {
		path := filepath.Join(s.dir, table+".json")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, path)
		}
		return data, err
	})
}

// decodeJSONTables fetches and decodes every required table document
func decodeJSONTables(ctx context.Context, fetch fetchFunc) (*Tables, error) {
	var t Tables
	targets := map[string]interface{}{
		TablePriceTable:       &t.PriceTable,
		TableQuotes:           &t.Quotes,
		TableOrders:           &t.Orders,
		TableBCOrders:         &t.BCOrders,
		TableMaterialValveMap: &t.MaterialValveMap,
		TableLME:              &t.LME,
	}

	for _, table := range RequiredTables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fetch(ctx, table)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, targets[table]); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTable, table, err)
		}
	}

	return &t, nil
}
