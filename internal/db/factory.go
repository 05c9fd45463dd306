package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"serbench/internal/benchmark"
	benchErrors "serbench/internal/errors"
)

// DefaultSQLiteFile is used when a sqlite store has no connection string.
const DefaultSQLiteFile = "serbench.db"

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Type             string // "file", "sqlite" or "postgres"
	ConnectionString string // File path for SQLite, DSN for Postgres
	Dir              string // Record directory for the file store
	Prefix           string // Key prefix for every backend
}

// NewStore creates a new Store instance based on the provided configuration
func NewStore(config StoreConfig) (benchmark.Store, error) {
	if config.Prefix == "" {
		config.Prefix = "serbench-run"
	}
	switch strings.ToLower(config.Type) {
	case "postgres", "postgresql":
		if config.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required: %w", benchErrors.ErrInvalidConfiguration)
		}
		return NewPostgresStore(config.ConnectionString, config.Prefix)
	case "sqlite", "sqlite3":
		if config.ConnectionString == "" {
			if config.Dir != "" {
				if err := os.MkdirAll(config.Dir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create directory %s: %w", config.Dir, err)
				}
			}
			config.ConnectionString = filepath.Join(config.Dir, DefaultSQLiteFile)
		}
		return NewSQLiteStore(config.ConnectionString, config.Prefix)
	case "file", "":
		if config.Dir == "" {
			config.Dir = "results"
		}
		return benchmark.NewFileStore(config.Dir, config.Prefix)
	default:
		return nil, fmt.Errorf("unsupported store type: %s: %w", config.Type, benchErrors.ErrInvalidConfiguration)
	}
}
