// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DatabaseProfile defines different configuration profiles for databases
type DatabaseProfile string

const (
	// ProfileReadOnly - reference snapshots; the connection refuses writes
	ProfileReadOnly DatabaseProfile = "readonly"
	// ProfileStandard - read/write, used to build snapshots
	ProfileStandard DatabaseProfile = "standard"
)

// DB wraps the database connection
type DB struct {
	conn    *sql.DB
	path    string
	profile DatabaseProfile
	name    string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Path    string
	Profile DatabaseProfile
	Name    string // Friendly name for logging (e.g., "reference")
}

// New opens a database connection and verifies it responds
func New(cfg Config) (*DB, error) {
	if cfg.Profile == "" {
		cfg.Profile = ProfileReadOnly
	}

	if !strings.HasPrefix(cfg.Path, "file:") {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		cfg.Path = absPath

		// A read-only snapshot must already exist; sqlite would otherwise create an empty file
		if cfg.Profile == ProfileReadOnly {
			if _, err := os.Stat(absPath); err != nil {
				return nil, fmt.Errorf("database %s not found: %w", cfg.Name, err)
			}
		}
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn, cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn:    conn,
		path:    cfg.Path,
		profile: cfg.Profile,
		name:    cfg.Name,
	}, nil
}

// buildConnectionString creates SQLite connection string with profile-specific PRAGMAs
func buildConnectionString(path string, profile DatabaseProfile) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	switch profile {
	case ProfileReadOnly:
		return path + sep + "_pragma=query_only(1)&_pragma=busy_timeout(5000)"
	default:
		return path + sep + "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}
}

// configureConnectionPool sets up the connection pool
func configureConnectionPool(conn *sql.DB, profile DatabaseProfile) {
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	if profile == ProfileStandard {
		conn.SetMaxOpenConns(1)
	}
}

// Conn returns the underlying connection pool
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the friendly database name
func (db *DB) Name() string {
	return db.name
}

// Path returns the resolved database path
func (db *DB) Path() string {
	return db.path
}

// HasTable reports whether a table with the given name exists
func (db *DB) HasTable(ctx context.Context, table string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s schema: %w", db.name, err)
	}
	return count > 0, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
