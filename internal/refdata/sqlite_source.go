package refdata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aristath/valveprice/internal/database"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/rs/zerolog"
)

// SQLiteSource reads a read-only SQLite snapshot holding one table per reference table.
// Column names match the JSON field names.
type SQLiteSource struct {
	path string
	log  zerolog.Logger
}

// NewSQLiteSource creates a snapshot source
func NewSQLiteSource(path string, log zerolog.Logger) *SQLiteSource {
	return &SQLiteSource{
		path: path,
		log:  log.With().Str("component", "refdata_sqlite").Logger(),
	}
}

// Name identifies the source in logs
func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.path
}

// Load opens the snapshot, reads every table and closes it again
func (s *SQLiteSource) Load(ctx context.Context) (*Tables, error) {
	db, err := database.New(database.Config{
		Path:    s.path,
		Profile: database.ProfileReadOnly,
		Name:    "reference",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingTable, err)
	}
	defer db.Close()

	sets := make(map[string]*rowSet, len(RequiredTables))
	for _, table := range RequiredTables {
		ok, err := db.HasTable(ctx, table)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, table)
		}

		set, err := s.readTable(ctx, db.Conn(), table)
		if err != nil {
			return nil, err
		}
		sets[table] = set
	}

	return tablesFromRows(sets)
}

func (s *SQLiteSource) readTable(ctx context.Context, conn *sql.DB, table string) (*rowSet, error) {
	done := utils.MeasureDBQuery("select_"+table, s.log)

	// table names come from RequiredTables, never from input
	rows, err := conn.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTable, table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTable, table, err)
	}

	var values [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		ptrs := make([]interface{}, len(header))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTable, table, err)
		}

		record := make([]string, len(header))
		for i, c := range cells {
			record[i] = c.String
		}
		values = append(values, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTable, table, err)
	}

	done(len(values))
	return newRowSet(table, header, values), nil
}
