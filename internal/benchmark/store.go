package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	benchErrors "serbench/internal/errors"
	"serbench/internal/telemetry"

	"go.uber.org/zap"
)

// Store persists run records and reloads them for comparison.
type Store interface {
	// Save writes rec under a new key and returns it. Existing keys are
	// never overwritten.
	Save(rec RunRecord) (string, error)
	// LoadAll returns every matching record in ascending key order. It fails
	// with ErrNoRecordsFound when nothing matches and with a
	// CorruptRecordError on the first record that cannot be parsed.
	LoadAll(match Match) ([]Entry, error)
	// LoadValid is LoadAll that skips corrupt records and reports them.
	LoadValid(match Match) ([]Entry, []*benchErrors.CorruptRecordError, error)
	Close() error
}

// RawRecord is an undecoded stored record.
type RawRecord struct {
	Key  string
	Data []byte
}

// DecodeRecord parses and validates one stored record.
func DecodeRecord(key string, data []byte) (RunRecord, error) {
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, &benchErrors.CorruptRecordError{Key: key, Err: err}
	}
	if err := rec.Validate(); err != nil {
		return RunRecord{}, &benchErrors.CorruptRecordError{Key: key, Err: err}
	}
	return rec, nil
}

// DecodeRecords sorts raws by key and decodes them, separating valid entries
// from corrupt ones.
func DecodeRecords(raws []RawRecord) ([]Entry, []*benchErrors.CorruptRecordError) {
	sort.Slice(raws, func(i, j int) bool { return raws[i].Key < raws[j].Key })

	var entries []Entry
	var corrupt []*benchErrors.CorruptRecordError
	for _, raw := range raws {
		rec, err := DecodeRecord(raw.Key, raw.Data)
		if err != nil {
			corrupt = append(corrupt, err.(*benchErrors.CorruptRecordError))
			continue
		}
		entries = append(entries, Entry{Key: raw.Key, Record: rec})
	}
	return entries, corrupt
}

// Strict applies LoadAll semantics to decoded records.
func Strict(matched int, entries []Entry, corrupt []*benchErrors.CorruptRecordError) ([]Entry, error) {
	if matched == 0 {
		return nil, benchErrors.ErrNoRecordsFound
	}
	if len(corrupt) > 0 {
		return nil, corrupt[0]
	}
	return entries, nil
}

// Lenient applies LoadValid semantics to decoded records.
func Lenient(entries []Entry, corrupt []*benchErrors.CorruptRecordError) ([]Entry, []*benchErrors.CorruptRecordError, error) {
	for _, c := range corrupt {
		telemetry.LogWarn("Skipping corrupt record", zap.String("key", c.Key), zap.Error(c.Err))
	}
	if len(entries) == 0 {
		return nil, corrupt, benchErrors.ErrNoRecordsFound
	}
	return entries, corrupt, nil
}

// FileStore implements Store with one JSON file per record.
type FileStore struct {
	dir    string
	prefix string
	keys   *KeyGen
}

// NewFileStore creates dir if needed.
func NewFileStore(dir, prefix string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, prefix: prefix, keys: NewKeyGen(nil)}, nil
}

// Dir returns the directory records are written to.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file path of a key.
func (s *FileStore) Path(key string) string { return filepath.Join(s.dir, key) }

const maxSaveAttempts = 8

func (s *FileStore) Save(rec RunRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		key := FormatKey(s.prefix, s.keys.Next())
		f, err := os.OpenFile(s.Path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if os.IsExist(err) {
			// another process took this stamp
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", key, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write %s: %w", key, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", key, err)
		}
		return key, nil
	}
	return "", fmt.Errorf("failed to allocate a free key after %d attempts", maxSaveAttempts)
}

func (s *FileStore) readMatching(match Match) ([]RawRecord, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var raws []RawRecord
	for _, de := range dirEntries {
		if de.IsDir() || !match(de.Name()) {
			continue
		}
		data, err := os.ReadFile(s.Path(de.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", de.Name(), err)
		}
		raws = append(raws, RawRecord{Key: de.Name(), Data: data})
	}
	return raws, nil
}

func (s *FileStore) LoadAll(match Match) ([]Entry, error) {
	raws, err := s.readMatching(match)
	if err != nil {
		return nil, err
	}
	entries, corrupt := DecodeRecords(raws)
	return Strict(len(raws), entries, corrupt)
}

func (s *FileStore) LoadValid(match Match) ([]Entry, []*benchErrors.CorruptRecordError, error) {
	raws, err := s.readMatching(match)
	if err != nil {
		return nil, nil, err
	}
	entries, corrupt := DecodeRecords(raws)
	return Lenient(entries, corrupt)
}

func (s *FileStore) Close() error { return nil }
