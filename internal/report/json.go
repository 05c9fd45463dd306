package report

import (
	"encoding/json"
	"time"

	"serbench/internal/benchmark"
	"serbench/internal/compare"
)

// Meta carries the report context that is not part of the comparison.
type Meta struct {
	GeneratedAt time.Time
	Environment benchmark.Environment
	Series      benchmark.Series
	// Skipped lists keys of corrupt records left out of the comparison.
	Skipped []string
}

// ComparisonReport is the machine-readable form of a multi-run comparison.
type ComparisonReport struct {
	GeneratedAt time.Time                  `json:"generatedAt"`
	Environment benchmark.Environment      `json:"environment"`
	Operation   string                     `json:"operation"`
	Role        string                     `json:"role"`
	Codec       string                     `json:"codec"`
	Baseline    string                     `json:"baseline"`
	Versions    []string                   `json:"versions"`
	Comparison  map[string][]VersionFigure `json:"comparison"`
	Deltas      []VersionDelta             `json:"deltas"`
	Headline    *Headline                  `json:"headline,omitempty"`
	Excluded    []ExcludedRun              `json:"excluded,omitempty"`
	Skipped     []string                   `json:"skippedCorrupt,omitempty"`
}

// ExcludedRun is a stored run left out because it measured another codec.
type ExcludedRun struct {
	Key     string `json:"key"`
	Version string `json:"version"`
	Codec   string `json:"codec"`
}

// VersionFigure is one run's figures at one size.
type VersionFigure struct {
	Version   string  `json:"version"`
	Key       string  `json:"key"`
	AvgTime   float64 `json:"avgTime"`
	OpsPerSec float64 `json:"opsPerSec"`
}

// SizeDelta holds the deltas of one size, or why they are undefined.
type SizeDelta struct {
	Time       *compare.Delta `json:"time,omitempty"`
	Throughput *compare.Delta `json:"throughput,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// VersionDelta compares one version against the baseline version.
type VersionDelta struct {
	Version        string               `json:"version"`
	Sizes          map[string]SizeDelta `json:"sizes"`
	AveragePercent *float64             `json:"averagePercent"`
	SizesCompared  int                  `json:"sizesCompared"`
	Verdict        compare.Verdict      `json:"verdict,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// Headline is the verdict for the newest version.
type Headline struct {
	Version        string          `json:"version"`
	AveragePercent float64         `json:"averagePercent"`
	Verdict        compare.Verdict `json:"verdict"`
}

// BuildComparisonReport assembles the report structure.
func BuildComparisonReport(mr compare.MultiRun, meta Meta) ComparisonReport {
	r := ComparisonReport{
		GeneratedAt: meta.GeneratedAt,
		Environment: meta.Environment,
		Operation:   meta.Series.Operation,
		Role:        meta.Series.Role,
		Codec:       mr.Codec,
		Baseline:    mr.Baseline().Version,
		Comparison:  make(map[string][]VersionFigure),
		Skipped:     meta.Skipped,
	}
	for _, run := range mr.Excluded {
		r.Excluded = append(r.Excluded, ExcludedRun{Key: run.Key, Version: run.Version, Codec: run.Codec})
	}

	for _, run := range mr.Runs {
		r.Versions = append(r.Versions, run.Version)
		for _, size := range mr.Sizes {
			s, ok := run.Samples[size]
			if !ok {
				continue
			}
			r.Comparison[size] = append(r.Comparison[size], VersionFigure{
				Version: run.Version, Key: run.Key, AvgTime: s.AvgTime, OpsPerSec: s.OpsPerSec,
			})
		}
	}

	for _, vc := range mr.Comparisons {
		vd := VersionDelta{
			Version:       vc.Run.Version,
			Sizes:         make(map[string]SizeDelta),
			SizesCompared: vc.SizesCompared,
		}
		for _, p := range vc.Pairs {
			var sd SizeDelta
			if p.Time.OK() {
				d := p.Time.Delta
				sd.Time = &d
			} else {
				sd.Error = p.Time.Err.Error()
			}
			if p.Throughput.OK() {
				d := p.Throughput.Delta
				sd.Throughput = &d
			}
			vd.Sizes[p.Size] = sd
		}
		if vc.Err != nil {
			vd.Error = vc.Err.Error()
		} else {
			avg := vc.AveragePercent
			vd.AveragePercent = &avg
			vd.Verdict = vc.Verdict
		}
		r.Deltas = append(r.Deltas, vd)
	}

	if n := len(mr.Comparisons); n > 0 && mr.Comparisons[n-1].Err == nil {
		last := mr.Comparisons[n-1]
		r.Headline = &Headline{Version: last.Run.Version, AveragePercent: last.AveragePercent, Verdict: last.Verdict}
	}
	return r
}

// ComparisonJSON renders the comparison report as indented JSON.
func ComparisonJSON(mr compare.MultiRun, meta Meta) ([]byte, error) {
	return json.MarshalIndent(BuildComparisonReport(mr, meta), "", "  ")
}
