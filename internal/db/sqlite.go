package db

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements benchmark.Store using SQLite
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens the database at path and applies migrations
func NewSQLiteStore(path, prefix string) (*SQLiteStore, error) {
	s, err := openStore(sqliteDialect, path, prefix)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{s}, nil
}
