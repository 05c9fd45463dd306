package db

import (
	_ "github.com/lib/pq"
)

// PostgresStore implements benchmark.Store using PostgreSQL
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects to dsn and applies migrations
func NewPostgresStore(dsn, prefix string) (*PostgresStore, error) {
	s, err := openStore(postgresDialect, dsn, prefix)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{s}, nil
}
