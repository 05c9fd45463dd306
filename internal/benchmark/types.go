package benchmark

import (
	"fmt"
	"time"

	"serbench/internal/measure"
)

// Operation names used as keys in SizeResult.
const (
	OpSerialization   = "serialization"
	OpDeserialization = "deserialization"
	OpRoundTrip       = "roundTrip"
)

// Roles of the two codecs in a run.
const (
	RoleBaseline  = "baseline"
	RoleCandidate = "candidate"
)

// Environment holds the host facts recorded with every run.
type Environment struct {
	RuntimeVersion string `json:"runtimeVersion"`
	Platform       string `json:"platform"`
	CPU            string `json:"cpu"`
	Memory         string `json:"memory"`
}

// Stats is one measurement in the persisted format. Times are milliseconds
// and memory is MiB; MemoryDeltaBytes keeps the raw signed figure.
type Stats struct {
	AvgTime          float64 `json:"avgTime"`
	OpsPerSec        float64 `json:"opsPerSec"`
	MemoryDelta      float64 `json:"memoryDelta"`
	TotalTime        float64 `json:"totalTime"`
	Iterations       int     `json:"iterations"`
	Warmup           int     `json:"warmup"`
	MemoryDeltaBytes int64   `json:"memoryDeltaBytes"`
}

// StatsFrom converts a measurement into its persisted form.
func StatsFrom(m measure.Measurement) Stats {
	return Stats{
		AvgTime:          m.AvgMillis(),
		OpsPerSec:        m.OpsPerSec,
		MemoryDelta:      m.MemoryDeltaMB(),
		TotalTime:        float64(m.TotalTime) / float64(time.Millisecond),
		Iterations:       m.Iterations,
		Warmup:           m.Warmup,
		MemoryDeltaBytes: m.MemoryDelta,
	}
}

// OperationResult pairs the baseline and candidate stats of one operation.
type OperationResult struct {
	Baseline  Stats `json:"baseline"`
	Candidate Stats `json:"candidate"`
}

// SizeFigures compares encoded sizes. CompressionPercent is nil when the
// baseline size is zero.
type SizeFigures struct {
	BaselineBytes      int      `json:"baseline_bytes"`
	CandidateBytes     int      `json:"candidate_bytes"`
	CompressionPercent *float64 `json:"compressionPercent"`
}

// PrepareTimes records schema compilation cost per role, in milliseconds.
type PrepareTimes struct {
	Baseline  float64 `json:"baseline"`
	Candidate float64 `json:"candidate"`
}

// SizeResult holds every measurement taken for one dataset size.
type SizeResult struct {
	Iterations      int              `json:"iterations"`
	Warmup          int              `json:"warmup"`
	Size            SizeFigures      `json:"size"`
	Serialization   OperationResult  `json:"serialization"`
	Deserialization OperationResult  `json:"deserialization"`
	RoundTrip       *OperationResult `json:"roundTrip,omitempty"`
	PrepareTime     PrepareTimes     `json:"prepareTime"`
}

// Operation returns the result for an operation name.
func (r SizeResult) Operation(name string) (OperationResult, bool) {
	switch name {
	case OpSerialization:
		return r.Serialization, true
	case OpDeserialization:
		return r.Deserialization, true
	case OpRoundTrip:
		if r.RoundTrip != nil {
			return *r.RoundTrip, true
		}
	}
	return OperationResult{}, false
}

// Role returns the stats for a role name.
func (o OperationResult) Role(name string) (Stats, bool) {
	switch name {
	case RoleBaseline:
		return o.Baseline, true
	case RoleCandidate:
		return o.Candidate, true
	}
	return Stats{}, false
}

// RunRecord is the persisted snapshot of one benchmark invocation.
type RunRecord struct {
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`
	Environment
	BaselineCodec  string `json:"baselineCodec"`
	CandidateCodec string `json:"candidateCodec"`
	// Partial is set when a later size failed and the run stopped early.
	Partial bool                  `json:"partial,omitempty"`
	Results map[string]SizeResult `json:"results"`
}

// Codec returns the codec that played role in the run.
func (r RunRecord) Codec(role string) string {
	if role == RoleCandidate {
		return r.CandidateCodec
	}
	return r.BaselineCodec
}

// Validate checks the fields every stored record must carry.
func (r RunRecord) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("missing timestamp")
	}
	if r.RuntimeVersion == "" {
		return fmt.Errorf("missing runtimeVersion")
	}
	if r.Results == nil {
		return fmt.Errorf("missing results")
	}
	return nil
}

// Entry is a stored record together with its key.
type Entry struct {
	Key    string
	Record RunRecord
}
