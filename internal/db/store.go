package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"serbench/internal/benchmark"
	benchErrors "serbench/internal/errors"
	"serbench/internal/telemetry"

	"go.uber.org/zap"
)

const maxInsertAttempts = 8

// sqlStore keeps one row per run record, keyed like the file store so keys
// stay comparable across backends.
type sqlStore struct {
	db     *sql.DB
	d      dialect
	prefix string
	keys   *benchmark.KeyGen
}

func openStore(d dialect, dsn, prefix string) (*sqlStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := newSQLStore(db, d, prefix)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func newSQLStore(db *sql.DB, d dialect, prefix string) *sqlStore {
	return &sqlStore{db: db, d: d, prefix: prefix, keys: benchmark.NewKeyGen(nil)}
}

func (s *sqlStore) migrate() error {
	_, err := s.db.Exec(s.d.createTable)
	return err
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Save inserts rec under a fresh key. A key already present is skipped,
// never replaced.
func (s *sqlStore) Save(rec benchmark.RunRecord) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	query := s.d.insertQuery()
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		key := benchmark.FormatKey(s.prefix, s.keys.Next())
		res, err := s.db.Exec(query, key, rec.RuntimeVersion, time.Now().UTC(), string(body))
		if err != nil {
			return "", fmt.Errorf("failed to insert %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("failed to insert %s: %w", key, err)
		}
		if n == 1 {
			telemetry.LogDebug("Record stored", zap.String("backend", s.d.name), zap.String("key", key))
			return key, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a free key after %d attempts", maxInsertAttempts)
}

func (s *sqlStore) readMatching(match benchmark.Match) ([]benchmark.RawRecord, error) {
	rows, err := s.db.Query(selectQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raws []benchmark.RawRecord
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			return nil, err
		}
		if match(key) {
			raws = append(raws, benchmark.RawRecord{Key: key, Data: []byte(body)})
		}
	}
	return raws, rows.Err()
}

// LoadAll returns every matching record, failing on the first corrupt one.
func (s *sqlStore) LoadAll(match benchmark.Match) ([]benchmark.Entry, error) {
	raws, err := s.readMatching(match)
	if err != nil {
		return nil, err
	}
	entries, corrupt := benchmark.DecodeRecords(raws)
	return benchmark.Strict(len(raws), entries, corrupt)
}

// LoadValid returns the parseable records and reports the rest.
func (s *sqlStore) LoadValid(match benchmark.Match) ([]benchmark.Entry, []*benchErrors.CorruptRecordError, error) {
	raws, err := s.readMatching(match)
	if err != nil {
		return nil, nil, err
	}
	entries, corrupt := benchmark.DecodeRecords(raws)
	return benchmark.Lenient(entries, corrupt)
}
