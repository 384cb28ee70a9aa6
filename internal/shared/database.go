package shared

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const defaultBusyTimeoutMS = 5000

// OpenDatabase opens the database described by cfg, creating the parent directory of a file-backed
// database when it does not exist, and applies the pool limits. The path can be ":memory:".
//
// Foreign keys are enabled on every pooled connection via the DSN, so cascades hold regardless of which
// connection serves a query.
func OpenDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty database path", ErrInvalidConfig)
	}

	if !isMemory(cfg.Path) {
		if err := EnsureDir(cfg.Path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isMemory(cfg.Path) {
		// each connection to :memory: is a separate database
		ConfigureDatabase(db, 1, 1)
	} else if cfg.MaxOpenConns > 0 {
		ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// DSN builds the go-sqlite3 connection string for cfg.
func DSN(cfg DatabaseConfig) string {
	timeout := cfg.BusyTimeoutMS
	if timeout <= 0 {
		timeout = defaultBusyTimeoutMS
	}

	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", strconv.Itoa(timeout))
	if !isMemory(cfg.Path) {
		params.Set("_journal_mode", "WAL")
	}

	return "file:" + cfg.Path + "?" + params.Encode()
}

// EnsureDir creates the directory that will hold the database file at path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
