package benchmark

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	benchErrors "serbench/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(version string, avg float64) RunRecord {
	pct := 60.0
	return RunRecord{
		RunID:     "run-" + version,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Environment: Environment{
			RuntimeVersion: version,
			Platform:       "linux/amd64",
			CPU:            "Test CPU",
			Memory:         "16.0 GB",
		},
		BaselineCodec:  "json",
		CandidateCodec: "protobuf",
		Results: map[string]SizeResult{
			"small": {
				Iterations: 100,
				Warmup:     10,
				Size:       SizeFigures{BaselineBytes: 1000, CandidateBytes: 400, CompressionPercent: &pct},
				Serialization: OperationResult{
					Baseline:  Stats{AvgTime: avg, OpsPerSec: 1000 / avg},
					Candidate: Stats{AvgTime: avg / 2, OpsPerSec: 2000 / avg},
				},
				Deserialization: OperationResult{
					Baseline:  Stats{AvgTime: avg * 2, OpsPerSec: 500 / avg},
					Candidate: Stats{AvgTime: avg, OpsPerSec: 1000 / avg},
				},
			},
		},
	}
}

func TestFileStore(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewFileStore(filepath.Join(tempDir, "results"), "serbench-run")
	require.NoError(t, err)
	defer store.Close()

	// Test LoadAll on empty
	_, err = store.LoadAll(MatchAll)
	assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))

	// Test Save
	key1, err := store.Save(testRecord("go1.21.0", 1.0))
	require.NoError(t, err)
	key2, err := store.Save(testRecord("go1.22.0", 0.8))
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
	assert.Less(t, key1, key2)

	// Verify persistence and order
	entries, err := store.LoadAll(MatchPrefix("serbench-run"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, key1, entries[0].Key)
	assert.Equal(t, "go1.21.0", entries[0].Record.RuntimeVersion)
	assert.Equal(t, "go1.22.0", entries[1].Record.RuntimeVersion)
	assert.InDelta(t, 60.0, *entries[0].Record.Results["small"].Size.CompressionPercent, 1e-9)

	// Other prefixes are not matched
	_, err = store.LoadAll(MatchPrefix("other"))
	assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
}

func TestFileStore_PersistedFormat(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "serbench-run")
	require.NoError(t, err)

	key, err := store.Save(testRecord("go1.22.0", 1.0))
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path(key))
	require.NoError(t, err)
	for _, field := range []string{
		`"timestamp": "2024-05-01T12:00:00Z"`,
		`"runtimeVersion": "go1.22.0"`,
		`"platform": "linux/amd64"`,
		`"cpu": "Test CPU"`,
		`"memory": "16.0 GB"`,
		`"baseline_bytes": 1000`,
		`"candidate_bytes": 400`,
		`"compressionPercent": 60`,
		`"avgTime": 1`,
	} {
		assert.Contains(t, string(data), field)
	}
}

func TestFileStore_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "run")
	require.NoError(t, err)
	fixed := time.Unix(0, 42)
	store.keys = NewKeyGen(func() time.Time { return fixed })

	// Occupy the first key the generator will hand out
	taken := FormatKey("run", 42)
	require.NoError(t, os.WriteFile(filepath.Join(dir, taken), []byte("sentinel"), 0644))

	key, err := store.Save(testRecord("go1.22.0", 1.0))
	require.NoError(t, err)
	assert.Equal(t, FormatKey("run", 43), key)

	data, err := os.ReadFile(filepath.Join(dir, taken))
	require.NoError(t, err)
	assert.Equal(t, "sentinel", string(data))
}

func TestFileStore_CorruptRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "run")
	require.NoError(t, err)

	validKey, err := store.Save(testRecord("go1.22.0", 1.0))
	require.NoError(t, err)

	corruptKey := FormatKey("run", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, corruptKey), []byte("{not json"), 0644))
	missingKey := FormatKey("run", 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, missingKey), []byte(`{"results":{}}`), 0644))

	t.Run("Strict", func(t *testing.T) {
		_, err := store.LoadAll(MatchPrefix("run"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, benchErrors.ErrCorruptRecord))

		var cre *benchErrors.CorruptRecordError
		require.True(t, errors.As(err, &cre))
		assert.Equal(t, corruptKey, cre.Key)
	})

	t.Run("Lenient", func(t *testing.T) {
		entries, corrupt, err := store.LoadValid(MatchPrefix("run"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, validKey, entries[0].Key)

		require.Len(t, corrupt, 2)
		assert.Equal(t, corruptKey, corrupt[0].Key)
		assert.Equal(t, missingKey, corrupt[1].Key)
		assert.Contains(t, corrupt[1].Error(), "missing timestamp")
	})

	t.Run("Lenient Without Valid Records", func(t *testing.T) {
		require.NoError(t, os.Remove(store.Path(validKey)))
		entries, corrupt, err := store.LoadValid(MatchPrefix("run"))
		assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
		assert.Empty(t, entries)
		assert.Len(t, corrupt, 2)
	})
}

func TestFileStore_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	store, err := NewFileStore(dir, "run")
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	_, err = store.LoadAll(MatchAll)
	assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
}
