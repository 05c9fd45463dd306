package metrics

import (
	"fmt"

	"serbench/internal/benchmark"
	"serbench/internal/measure"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "serbench"

// Metrics represents the collection of all Prometheus metrics for one run
type Metrics struct {
	registry *prometheus.Registry

	// Per measurement metrics
	AvgTime      *prometheus.GaugeVec
	Throughput   *prometheus.GaugeVec
	MemoryDelta  *prometheus.GaugeVec
	Measurements *prometheus.CounterVec

	// Per size metrics
	EncodedBytes       *prometheus.GaugeVec
	CompressionPercent *prometheus.GaugeVec
	PrepareTime        *prometheus.GaugeVec
}

// NewMetrics creates all run metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	measurementLabels := []string{"size", "operation", "role", "codec"}

	m.AvgTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "avg_time_seconds",
			Help:      "Average time of one operation in seconds",
		},
		measurementLabels,
	)

	m.Throughput = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ops_per_second",
			Help:      "Operations completed per second in the timed loop",
		},
		measurementLabels,
	)

	m.MemoryDelta = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_delta_bytes",
			Help:      "Heap growth across the timed loop in bytes (signed)",
		},
		measurementLabels,
	)

	m.Measurements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Total number of completed measurements",
		},
		[]string{"operation", "role"},
	)

	m.EncodedBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "encoded_bytes",
			Help:      "Encoded payload size in bytes",
		},
		[]string{"size", "role", "codec"},
	)

	m.CompressionPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compression_percent",
			Help:      "Size reduction of the candidate codec against the baseline",
		},
		[]string{"size"},
	)

	m.PrepareTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prepare_seconds",
			Help:      "Codec preparation time in seconds",
		},
		[]string{"size", "role", "codec"},
	)

	// Register all metrics
	m.registry.MustRegister(
		m.AvgTime,
		m.Throughput,
		m.MemoryDelta,
		m.Measurements,
		m.EncodedBytes,
		m.CompressionPercent,
		m.PrepareTime,
	)

	return m
}

// Registry exposes the registry holding the run metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveMeasurement records one measurement
func (m *Metrics) ObserveMeasurement(size, operation, role, codec string, meas measure.Measurement) {
	m.AvgTime.WithLabelValues(size, operation, role, codec).Set(meas.AvgNanos / 1e9)
	m.Throughput.WithLabelValues(size, operation, role, codec).Set(meas.OpsPerSec)
	m.MemoryDelta.WithLabelValues(size, operation, role, codec).Set(float64(meas.MemoryDelta))
	m.Measurements.WithLabelValues(operation, role).Inc()
}

// Observer adapts the metrics to a runner callback
func (m *Metrics) Observer(baseline, candidate string) benchmark.Observer {
	return func(size, operation, role string, meas measure.Measurement) {
		codec := baseline
		if role == benchmark.RoleCandidate {
			codec = candidate
		}
		m.ObserveMeasurement(size, operation, role, codec, meas)
	}
}

// ObserveRecord records the per size figures of a finished run
func (m *Metrics) ObserveRecord(rec benchmark.RunRecord) {
	for size, res := range rec.Results {
		m.EncodedBytes.WithLabelValues(size, benchmark.RoleBaseline, rec.BaselineCodec).Set(float64(res.Size.BaselineBytes))
		m.EncodedBytes.WithLabelValues(size, benchmark.RoleCandidate, rec.CandidateCodec).Set(float64(res.Size.CandidateBytes))
		m.PrepareTime.WithLabelValues(size, benchmark.RoleBaseline, rec.BaselineCodec).Set(res.PrepareTime.Baseline / 1e3)
		m.PrepareTime.WithLabelValues(size, benchmark.RoleCandidate, rec.CandidateCodec).Set(res.PrepareTime.Candidate / 1e3)
		if res.Size.CompressionPercent != nil {
			m.CompressionPercent.WithLabelValues(size).Set(*res.Size.CompressionPercent)
		}
	}
}

// WriteTextfile writes every metric in the Prometheus text format, for the
// node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
