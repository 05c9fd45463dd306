package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"serbench/internal/benchmark"
	"serbench/internal/measure"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	// Verify all metrics are initialized
	assert.NotNil(t, m.AvgTime)
	assert.NotNil(t, m.Throughput)
	assert.NotNil(t, m.MemoryDelta)
	assert.NotNil(t, m.Measurements)
	assert.NotNil(t, m.EncodedBytes)
	assert.NotNil(t, m.CompressionPercent)
	assert.NotNil(t, m.PrepareTime)

	// A second instance must not collide with the first
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestObserver(t *testing.T) {
	m := NewMetrics()
	obs := m.Observer("json", "protobuf")

	obs("small", benchmark.OpSerialization, benchmark.RoleBaseline, measure.Measurement{
		Iterations: 1000, TotalTime: time.Millisecond, AvgNanos: 1000, OpsPerSec: 1e6, MemoryDelta: -512,
	})
	obs("small", benchmark.OpSerialization, benchmark.RoleCandidate, measure.Measurement{
		Iterations: 1000, TotalTime: time.Millisecond, AvgNanos: 500, OpsPerSec: 2e6, MemoryDelta: 2048,
	})

	assert.InDelta(t, 1e-6, testutil.ToFloat64(m.AvgTime.WithLabelValues("small", "serialization", "baseline", "json")), 1e-15)
	assert.InDelta(t, 2e6, testutil.ToFloat64(m.Throughput.WithLabelValues("small", "serialization", "candidate", "protobuf")), 1e-9)
	assert.InDelta(t, -512, testutil.ToFloat64(m.MemoryDelta.WithLabelValues("small", "serialization", "baseline", "json")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Measurements.WithLabelValues("serialization", "candidate")), 1e-9)
}

func TestObserveRecordAndTextfile(t *testing.T) {
	m := NewMetrics()
	pct := 60.0
	m.ObserveRecord(benchmark.RunRecord{
		BaselineCodec:  "json",
		CandidateCodec: "msgpack",
		Results: map[string]benchmark.SizeResult{
			"small": {
				Size:        benchmark.SizeFigures{BaselineBytes: 1000, CandidateBytes: 400, CompressionPercent: &pct},
				PrepareTime: benchmark.PrepareTimes{Baseline: 2, Candidate: 4},
			},
			"empty": {},
		},
	})

	assert.InDelta(t, 400, testutil.ToFloat64(m.EncodedBytes.WithLabelValues("small", "candidate", "msgpack")), 1e-9)
	assert.InDelta(t, 0.004, testutil.ToFloat64(m.PrepareTime.WithLabelValues("small", "candidate", "msgpack")), 1e-12)
	assert.Equal(t, 1, testutil.CollectAndCount(m.CompressionPercent))

	path := filepath.Join(t.TempDir(), "serbench.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `serbench_compression_percent{size="small"} 60`)
	assert.Contains(t, string(data), "# TYPE serbench_encoded_bytes gauge")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	m := NewMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "out.prom"))
	assert.Error(t, err)
}
