package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"propertypal/common/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Dialect tells repositories how to write placeholders for the open driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Placeholder returns the n-th (1-based) bind parameter for the dialect.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Open opens and pings the configured database. For sqlite the parent
// directory of the file is created first.
func Open(cfg *config.DatabaseConfig) (*sql.DB, Dialect, error) {
	dialect := Postgres
	if cfg.Driver == "sqlite" {
		dialect = SQLite
		if cfg.Path == "" {
			cfg.Path = "propertypal.db"
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, dialect, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(string(dialect), cfg.GetDSN())
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	// single writer for sqlite files
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, dialect, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, dialect, nil
}

// Close closes db if it is non-nil.
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
