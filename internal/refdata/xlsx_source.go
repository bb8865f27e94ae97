package refdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WorkbookName is the workbook file the XLSX source reads from the data directory
const WorkbookName = "reference.xlsx"

// XLSXSource reads one workbook with a sheet per table.
// The first row of each sheet holds the column names.
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a workbook source rooted at dir
func NewXLSXSource(dir string) *XLSXSource {
	return &XLSXSource{path: filepath.Join(dir, WorkbookName)}
}

// Name identifies the source in logs
func (s *XLSXSource) Name() string {
	return "xlsx:" + s.path
}

// Load reads every required sheet
func (s *XLSXSource) Load(ctx context.Context) (*Tables, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: workbook %s", ErrMissingTable, s.path)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: workbook %s: %v", ErrMalformedTable, s.path, err)
	}
	defer f.Close()

	sets := make(map[string]*rowSet, len(RequiredTables))
	for _, table := range RequiredTables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		idx, err := f.GetSheetIndex(table)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: sheet %s", ErrMissingTable, table)
		}

		rows, err := f.GetRows(table)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", ErrMalformedTable, table, err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: sheet %s has no header row", ErrMalformedTable, table)
		}

		sets[table] = newRowSet(table, rows[0], nonEmptyRows(rows[1:]))
	}

	return tablesFromRows(sets)
}

func nonEmptyRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(strings.Join(r, "")) != "" {
			out = append(out, r)
		}
	}
	return out
}
