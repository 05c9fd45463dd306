package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"serbench/internal/benchmark"
	benchErrors "serbench/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(version string) benchmark.RunRecord {
	return benchmark.RunRecord{
		RunID:     "id-" + version,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Environment: benchmark.Environment{
			RuntimeVersion: version,
			Platform:       "linux/amd64",
			CPU:            "Test CPU",
			Memory:         "8.0 GB",
		},
		BaselineCodec:  "json",
		CandidateCodec: "protobuf",
		Results: map[string]benchmark.SizeResult{
			"small": {
				Iterations: 10,
				Size:       benchmark.SizeFigures{BaselineBytes: 60, CandidateBytes: 24},
				Serialization: benchmark.OperationResult{
					Baseline:  benchmark.Stats{AvgTime: 0.002, OpsPerSec: 500000},
					Candidate: benchmark.Stats{AvgTime: 0.001, OpsPerSec: 1000000},
				},
			},
		},
	}
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), "run")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestSQLite(t)

	_, err := store.LoadAll(benchmark.MatchAll)
	assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))

	key1, err := store.Save(testRecord("go1.21.0"))
	require.NoError(t, err)
	key2, err := store.Save(testRecord("go1.22.0"))
	require.NoError(t, err)
	assert.Less(t, key1, key2)
	assert.True(t, benchmark.MatchPrefix("run")(key1))

	entries, err := store.LoadAll(benchmark.MatchPrefix("run"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, key1, entries[0].Key)
	assert.Equal(t, "go1.21.0", entries[0].Record.RuntimeVersion)
	assert.Equal(t, "go1.22.0", entries[1].Record.RuntimeVersion)
	assert.InDelta(t, 0.001, entries[1].Record.Results["small"].Serialization.Candidate.AvgTime, 1e-12)

	_, err = store.LoadAll(benchmark.MatchPrefix("other"))
	assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
}

func TestSQLiteStore_NeverOverwrites(t *testing.T) {
	store := newTestSQLite(t)
	fixed := time.Unix(0, 7)
	store.keys = benchmark.NewKeyGen(func() time.Time { return fixed })

	_, err := store.db.Exec(store.d.insertQuery(), benchmark.FormatKey("run", 7), "go1.0", time.Now(), "{}")
	require.NoError(t, err)

	key, err := store.Save(testRecord("go1.22.0"))
	require.NoError(t, err)
	assert.Equal(t, benchmark.FormatKey("run", 8), key)

	var body string
	require.NoError(t, store.db.QueryRow(`SELECT body FROM run_records WHERE record_key = ?`, benchmark.FormatKey("run", 7)).Scan(&body))
	assert.Equal(t, "{}", body)
}

func TestSQLiteStore_CorruptRecords(t *testing.T) {
	store := newTestSQLite(t)

	validKey, err := store.Save(testRecord("go1.22.0"))
	require.NoError(t, err)
	corruptKey := benchmark.FormatKey("run", 1)
	_, err = store.db.Exec(store.d.insertQuery(), corruptKey, "go1.0", time.Now(), "not json")
	require.NoError(t, err)

	_, err = store.LoadAll(benchmark.MatchAll)
	var cre *benchErrors.CorruptRecordError
	require.True(t, errors.As(err, &cre))
	assert.Equal(t, corruptKey, cre.Key)

	entries, corrupt, err := store.LoadValid(benchmark.MatchAll)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, validKey, entries[0].Key)
	require.Len(t, corrupt, 1)
	assert.Equal(t, corruptKey, corrupt[0].Key)
}

func TestNewSQLiteStore_BadPath(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "missing", "dir", "test.db"), "run")
	assert.Error(t, err)
}
