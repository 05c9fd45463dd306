package benchmark

import (
	"fmt"
	"sort"

	"serbench/internal/compare"
	"serbench/internal/dataset"
	benchErrors "serbench/internal/errors"
)

// Series names the figure compared across runs, e.g. the baseline codec's
// deserialization stats. Codec pins the codec expected in Role; empty means
// the codec of the newest record.
type Series struct {
	Operation string
	Role      string
	Codec     string
}

func (s Series) String() string {
	return s.Role + " " + s.Operation
}

// Validate rejects unknown operation or role names.
func (s Series) Validate() error {
	switch s.Operation {
	case OpSerialization, OpDeserialization, OpRoundTrip:
	default:
		return fmt.Errorf("unknown operation %q: %w", s.Operation, benchErrors.ErrInvalidConfiguration)
	}
	switch s.Role {
	case RoleBaseline, RoleCandidate:
	default:
		return fmt.Errorf("unknown role %q: %w", s.Role, benchErrors.ErrInvalidConfiguration)
	}
	return nil
}

// SizeLabels returns the sizes present in rec, standard labels first in
// run order and any others alphabetically.
func SizeLabels(rec RunRecord) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, l := range dataset.Labels {
		if _, ok := rec.Results[l]; ok {
			labels = append(labels, l)
			seen[l] = true
		}
	}
	var extra []string
	for l := range rec.Results {
		if !seen[l] {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

func sample(s Stats) compare.Sample {
	return compare.Sample{AvgTime: s.AvgTime, OpsPerSec: s.OpsPerSec, MemoryDelta: s.MemoryDelta}
}

func rolePair(o OperationResult) compare.RolePair {
	return compare.RolePair{Baseline: sample(o.Baseline), Candidate: sample(o.Candidate)}
}

// Analyze compares the candidate codec against the baseline codec at every
// size of rec.
func Analyze(rec RunRecord) compare.RecordAnalysis {
	var inputs []compare.SizeInput
	for _, label := range SizeLabels(rec) {
		r := rec.Results[label]
		inputs = append(inputs, compare.SizeInput{
			Label:           label,
			BaselineBytes:   r.Size.BaselineBytes,
			CandidateBytes:  r.Size.CandidateBytes,
			Serialization:   rolePair(r.Serialization),
			Deserialization: rolePair(r.Deserialization),
		})
	}
	return compare.Analyze(inputs)
}

// ToRun reduces a stored record to one series.
func ToRun(e Entry, series Series) compare.Run {
	run := compare.Run{
		Key:       e.Key,
		Version:   e.Record.RuntimeVersion,
		Codec:     e.Record.Codec(series.Role),
		Timestamp: e.Record.Timestamp,
		Samples:   make(map[string]compare.Sample),
	}
	for label, res := range e.Record.Results {
		op, ok := res.Operation(series.Operation)
		if !ok {
			continue
		}
		stats, ok := op.Role(series.Role)
		if !ok {
			continue
		}
		run.Samples[label] = sample(stats)
	}
	return run
}

// CompareRecords orders entries by runtime version and compares the chosen
// series of every later run against the oldest one. Only records whose codec
// in series.Role matches are compared; the rest are returned in Excluded.
// Nil sizes means the standard labels.
func CompareRecords(entries []Entry, series Series, sizes []string) (compare.MultiRun, error) {
	if err := series.Validate(); err != nil {
		return compare.MultiRun{}, err
	}
	if len(sizes) == 0 {
		sizes = dataset.Labels
	}

	codecName := series.Codec
	if codecName == "" && len(entries) > 0 {
		newest := entries[0]
		for _, e := range entries[1:] {
			if e.Key > newest.Key {
				newest = e
			}
		}
		codecName = newest.Record.Codec(series.Role)
	}

	var runs, excluded []compare.Run
	for _, e := range entries {
		run := ToRun(e, series)
		if run.Codec != codecName {
			excluded = append(excluded, run)
			continue
		}
		runs = append(runs, run)
	}

	mr, err := compare.CompareRuns(runs, sizes)
	if err != nil {
		return compare.MultiRun{}, fmt.Errorf("%s codec %s (%d other record(s) excluded): %w",
			series.Role, codecName, len(excluded), err)
	}
	mr.Codec = codecName
	mr.Excluded = excluded
	return mr, nil
}
