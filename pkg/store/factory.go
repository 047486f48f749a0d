package store

import (
	"fmt"
	"strings"
)

// DefaultSQLitePath is used when no DSN is configured for SQLite.
const DefaultSQLitePath = ".vulnimport.db"

// Config holds configuration for the storage backend.
type Config struct {
	Type string // "sqlite" or "postgres"
	DSN  string // File path for SQLite, connection string for Postgres
}

// New creates a Store for the configured backend.
func New(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "postgres", "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return open(postgresDialect, cfg.DSN)
	case "sqlite", "sqlite3", "":
		if cfg.DSN == "" {
			cfg.DSN = DefaultSQLitePath
		}
		return open(sqliteDialect, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

func open(d dialect, dsn string) (Store, error) {
	s, err := openSQL(d, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}
