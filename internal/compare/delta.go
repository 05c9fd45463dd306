// Package compare turns pairs of measurements into signed percentage deltas.
// Every metric follows one sign convention: a positive percent is an
// improvement (less time, more throughput, fewer bytes).
package compare

import (
	"fmt"

	benchErrors "serbench/internal/errors"
)

// Metric selects the sign convention and direction labels.
type Metric int

const (
	Time Metric = iota
	Throughput
	Size
)

func (m Metric) String() string {
	switch m {
	case Time:
		return "time"
	case Throughput:
		return "throughput"
	case Size:
		return "size"
	}
	return "unknown"
}

// Direction is the qualitative label attached to a delta.
type Direction string

const (
	Faster  Direction = "faster"
	Slower  Direction = "slower"
	Higher  Direction = "higher"
	Lower   Direction = "lower"
	Smaller Direction = "smaller"
	Larger  Direction = "larger"
)

// Delta is the relative change of a candidate against a baseline.
type Delta struct {
	Metric    Metric    `json:"-"`
	Percent   float64   `json:"percent"`
	Direction Direction `json:"direction"`
}

// Improved reports whether the candidate beat the baseline.
func (d Delta) Improved() bool {
	return d.Percent > 0
}

func (d Delta) String() string {
	p := d.Percent
	if p < 0 {
		p = -p
	}
	return fmt.Sprintf("%.1f%% %s", p, d.Direction)
}

// Compare computes the delta for metric. Time and size deltas are
// (baseline-candidate)/baseline; throughput is (candidate-baseline)/baseline.
// A zero baseline fails with ErrUndefinedComparison.
func Compare(metric Metric, baseline, candidate float64) (Delta, error) {
	if baseline == 0 {
		return Delta{}, fmt.Errorf("%s comparison against a zero baseline: %w",
			metric, benchErrors.ErrUndefinedComparison)
	}

	d := Delta{Metric: metric}
	switch metric {
	case Time:
		d.Percent = (baseline - candidate) / baseline * 100
		d.Direction = pick(d.Percent, Faster, Slower)
	case Throughput:
		d.Percent = (candidate - baseline) / baseline * 100
		d.Direction = pick(d.Percent, Higher, Lower)
	case Size:
		d.Percent = (baseline - candidate) / baseline * 100
		d.Direction = pick(d.Percent, Smaller, Larger)
	default:
		return Delta{}, fmt.Errorf("unknown metric %d", metric)
	}
	return d, nil
}

// CompareTime compares two durations expressed in the same unit.
func CompareTime(baseline, candidate float64) (Delta, error) {
	return Compare(Time, baseline, candidate)
}

// CompareThroughput compares two operations-per-second figures.
func CompareThroughput(baseline, candidate float64) (Delta, error) {
	return Compare(Throughput, baseline, candidate)
}

// CompareSize compares two byte counts. The percent is the compression of
// the candidate relative to the baseline.
func CompareSize(baseline, candidate int) (Delta, error) {
	return Compare(Size, float64(baseline), float64(candidate))
}

func pick(percent float64, up, down Direction) Direction {
	if percent > 0 {
		return up
	}
	return down
}

// Outcome holds a delta or the reason it could not be computed, so one
// undefined comparison does not stop its siblings.
type Outcome struct {
	Delta Delta
	Err   error
}

// OK reports whether the delta is defined.
func (o Outcome) OK() bool { return o.Err == nil }

func outcome(d Delta, err error) Outcome {
	return Outcome{Delta: d, Err: err}
}
