package compare

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	benchErrors "serbench/internal/errors"

	"golang.org/x/mod/semver"
)

// ErrMissingSample marks a size label absent from one side of a comparison.
var ErrMissingSample = fmt.Errorf("size not measured: %w", benchErrors.ErrUndefinedComparison)

// Sample is the figure set compared for one size label.
type Sample struct {
	AvgTime     float64 `json:"avgTime"` // milliseconds
	OpsPerSec   float64 `json:"opsPerSec"`
	MemoryDelta float64 `json:"memoryDelta"` // MiB
}

// Run is one stored run reduced to the series being compared.
type Run struct {
	Key       string            `json:"key"`
	Version   string            `json:"version"`
	Codec     string            `json:"codec,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Samples   map[string]Sample `json:"samples"`
}

// Pair compares one size label of a run against the baseline run.
type Pair struct {
	Size       string
	Baseline   Sample
	Candidate  Sample
	Time       Outcome
	Throughput Outcome
}

// VersionComparison is every size of one run against the baseline, with the
// average time delta over the sizes that could be compared.
type VersionComparison struct {
	Run            Run
	Pairs          []Pair
	AveragePercent float64
	SizesCompared  int
	Verdict        Verdict
	Err            error // set when no size could be compared
}

// MultiRun is the outcome of comparing several runs against the oldest
// runtime version.
type MultiRun struct {
	Sizes       []string
	Codec       string
	Runs        []Run // ascending by runtime version, baseline first
	Comparisons []VersionComparison
	// Excluded holds runs left out because they measured a different codec.
	Excluded []Run
}

// Baseline returns the run every other run is compared against.
func (m MultiRun) Baseline() Run {
	return m.Runs[0]
}

var prerelease = regexp.MustCompile(`^(\d+(?:\.\d+)*)(rc|beta|alpha)(\d+)$`)

// CanonicalVersion maps runtime version strings such as "go1.22.3",
// "v20.11.0", "18.0.0" or "go1.23rc1" onto semantic versions.
func CanonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "go")
	v = strings.TrimPrefix(v, "v")
	if m := prerelease.FindStringSubmatch(v); m != nil {
		// a prerelease needs all three numeric components
		parts := strings.Split(m[1], ".")
		for len(parts) < 3 {
			parts = append(parts, "0")
		}
		v = strings.Join(parts, ".") + "-" + m[2] + "." + m[3]
	}
	return "v" + v
}

// SortByVersion orders runs by ascending runtime version. Unparseable
// versions sort first; ties keep key order.
func SortByVersion(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		c := semver.Compare(CanonicalVersion(runs[i].Version), CanonicalVersion(runs[j].Version))
		if c != 0 {
			return c < 0
		}
		return runs[i].Key < runs[j].Key
	})
}

// CompareRuns orders runs by runtime version and compares every later run
// against the first for each size label.
func CompareRuns(runs []Run, sizes []string) (MultiRun, error) {
	if len(runs) < 2 {
		return MultiRun{}, fmt.Errorf("need at least two runs to compare, got %d: %w",
			len(runs), benchErrors.ErrNoRecordsFound)
	}

	sorted := make([]Run, len(runs))
	copy(sorted, runs)
	SortByVersion(sorted)

	out := MultiRun{Sizes: sizes, Runs: sorted}
	base := sorted[0]
	for _, run := range sorted[1:] {
		out.Comparisons = append(out.Comparisons, compareVersion(base, run, sizes))
	}
	return out, nil
}

func compareVersion(base, run Run, sizes []string) VersionComparison {
	vc := VersionComparison{Run: run}
	var sum float64

	for _, size := range sizes {
		p := Pair{Size: size}
		b, okB := base.Samples[size]
		c, okC := run.Samples[size]
		if !okB || !okC {
			p.Time = Outcome{Err: ErrMissingSample}
			p.Throughput = Outcome{Err: ErrMissingSample}
			vc.Pairs = append(vc.Pairs, p)
			continue
		}
		p.Baseline, p.Candidate = b, c
		p.Time = outcome(CompareTime(b.AvgTime, c.AvgTime))
		p.Throughput = outcome(CompareThroughput(b.OpsPerSec, c.OpsPerSec))
		if p.Time.OK() {
			sum += p.Time.Delta.Percent
			vc.SizesCompared++
		}
		vc.Pairs = append(vc.Pairs, p)
	}

	if vc.SizesCompared == 0 {
		vc.Err = fmt.Errorf("%s vs %s: no comparable sizes: %w",
			run.Version, base.Version, benchErrors.ErrUndefinedComparison)
		return vc
	}
	vc.AveragePercent = sum / float64(vc.SizesCompared)
	vc.Verdict = VerdictFor(vc.AveragePercent)
	return vc
}
