package benchmark

import (
	"fmt"
	"time"

	"serbench/internal/codec"
	"serbench/internal/compare"
	"serbench/internal/dataset"
	benchErrors "serbench/internal/errors"
	"serbench/internal/measure"
	"serbench/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRoundTripIterations sizes the round-trip measurement when unset.
const DefaultRoundTripIterations = 50

// Observer receives every measurement as soon as it is taken.
type Observer func(size, operation, role string, m measure.Measurement)

// Options configures a Runner.
type Options struct {
	Baseline  string
	Candidate string
	// Plans maps size labels to their loop configuration.
	Plans map[string]measure.Loop

	RoundTrip           bool
	RoundTripIterations int

	Environment Environment
	Observer    Observer
	// Now stamps the record and times codec preparation; nil means time.Now.
	Now func() time.Time
}

// Runner executes one baseline-versus-candidate run over a set of datasets.
type Runner struct {
	engine *measure.Engine
	opts   Options
	now    func() time.Time
}

// NewRunner creates a Runner measuring through engine.
func NewRunner(engine *measure.Engine, opts Options) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.RoundTripIterations <= 0 {
		opts.RoundTripIterations = DefaultRoundTripIterations
	}
	return &Runner{engine: engine, opts: opts, now: now}
}

type prepared struct {
	data      dataset.Dataset
	loop      measure.Loop
	baseline  codec.Codec
	candidate codec.Codec
	times     PrepareTimes
}

// Run prepares and verifies every codec, then measures each dataset in
// order. When a size fails the record holds the sizes already completed,
// is marked Partial and is returned along with the error.
func (r *Runner) Run(datasets []dataset.Dataset) (RunRecord, error) {
	rec := RunRecord{
		Timestamp:      r.now().UTC(),
		Environment:    r.opts.Environment,
		BaselineCodec:  r.opts.Baseline,
		CandidateCodec: r.opts.Candidate,
		Results:        make(map[string]SizeResult),
	}
	if id, err := uuid.NewV7(); err == nil {
		rec.RunID = id.String()
	} else {
		rec.RunID = uuid.NewString()
	}

	if len(datasets) == 0 {
		return rec, fmt.Errorf("no datasets selected: %w", benchErrors.ErrInvalidConfiguration)
	}

	plan := make([]prepared, 0, len(datasets))
	for _, ds := range datasets {
		p, err := r.prepare(ds)
		if err != nil {
			return rec, err
		}
		plan = append(plan, p)
	}

	for _, p := range plan {
		telemetry.LogInfo("Measuring dataset",
			zap.String("size", p.data.Name),
			zap.Int("iterations", p.loop.Iterations),
			zap.Int("warmup", p.loop.Warmup))

		res, err := r.measureSize(p)
		if err != nil {
			rec.Partial = true
			return rec, fmt.Errorf("size %s: %w", p.data.Name, err)
		}
		rec.Results[p.data.Name] = res
	}
	return rec, nil
}

func (r *Runner) prepare(ds dataset.Dataset) (prepared, error) {
	p := prepared{data: ds}

	loop, ok := r.opts.Plans[ds.Name]
	if !ok {
		return p, fmt.Errorf("no run plan for size %q: %w", ds.Name, benchErrors.ErrInvalidConfiguration)
	}
	p.loop = loop

	var err error
	if p.baseline, p.times.Baseline, err = r.prepareCodec(r.opts.Baseline, ds); err != nil {
		return p, err
	}
	if p.candidate, p.times.Candidate, err = r.prepareCodec(r.opts.Candidate, ds); err != nil {
		return p, err
	}
	return p, nil
}

// prepareCodec compiles and verifies one codec; the returned duration covers
// compilation only, in milliseconds.
func (r *Runner) prepareCodec(name string, ds dataset.Dataset) (codec.Codec, float64, error) {
	start := r.now()
	c, err := codec.Prepare(name, ds.Schema)
	if err != nil {
		return nil, 0, err
	}
	elapsed := r.now().Sub(start)

	if err := codec.VerifyRoundTrip(c, ds.Value); err != nil {
		return nil, 0, fmt.Errorf("%s failed verification on %s: %w: %w",
			name, ds.Name, benchErrors.ErrCodecUnavailable, err)
	}
	telemetry.LogDebug("Codec prepared",
		zap.String("codec", name),
		zap.String("size", ds.Name),
		zap.Duration("prepare", elapsed))
	return c, float64(elapsed) / float64(time.Millisecond), nil
}

func (r *Runner) measureSize(p prepared) (SizeResult, error) {
	res := SizeResult{
		Iterations:  p.loop.Iterations,
		Warmup:      p.loop.Warmup,
		PrepareTime: p.times,
	}
	v := p.data.Value

	baseBytes, err := p.baseline.Encode(v)
	if err != nil {
		return res, err
	}
	candBytes, err := p.candidate.Encode(v)
	if err != nil {
		return res, err
	}
	res.Size.BaselineBytes = len(baseBytes)
	res.Size.CandidateBytes = len(candBytes)
	if d, err := compare.CompareSize(len(baseBytes), len(candBytes)); err == nil {
		pct := d.Percent
		res.Size.CompressionPercent = &pct
	}

	steps := []struct {
		op   string
		role string
		kind measure.Kind
		fn   func() error
		dst  *Stats
	}{
		{OpSerialization, RoleBaseline, measure.Serialize, encodeOp(p.baseline, v), &res.Serialization.Baseline},
		{OpSerialization, RoleCandidate, measure.Serialize, encodeOp(p.candidate, v), &res.Serialization.Candidate},
		{OpDeserialization, RoleBaseline, measure.Deserialize, decodeOp(p.baseline, baseBytes), &res.Deserialization.Baseline},
		{OpDeserialization, RoleCandidate, measure.Deserialize, decodeOp(p.candidate, candBytes), &res.Deserialization.Candidate},
	}
	for _, s := range steps {
		m, err := r.engine.Measure(s.kind, s.fn, p.loop)
		if err != nil {
			return res, fmt.Errorf("%s %s: %w", s.role, s.op, err)
		}
		r.observe(p.data.Name, s.op, s.role, m)
		*s.dst = StatsFrom(m)
	}

	if r.opts.RoundTrip {
		rt, err := r.measureRoundTrip(p)
		if err != nil {
			return res, err
		}
		res.RoundTrip = rt
	}
	return res, nil
}

func (r *Runner) measureRoundTrip(p prepared) (*OperationResult, error) {
	loop := measure.Loop{Iterations: r.opts.RoundTripIterations}
	out := &OperationResult{}

	for _, role := range []struct {
		name string
		c    codec.Codec
		dst  *Stats
	}{
		{RoleBaseline, p.baseline, &out.Baseline},
		{RoleCandidate, p.candidate, &out.Candidate},
	} {
		m, err := r.engine.Measure(measure.RoundTrip, roundTripOp(role.c, p.data.Value), loop)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", role.name, OpRoundTrip, err)
		}
		r.observe(p.data.Name, OpRoundTrip, role.name, m)
		*role.dst = StatsFrom(m)
	}
	return out, nil
}

func (r *Runner) observe(size, op, role string, m measure.Measurement) {
	if r.opts.Observer != nil {
		r.opts.Observer(size, op, role, m)
	}
}

func encodeOp(c codec.Codec, v any) func() error {
	return func() error {
		_, err := c.Encode(v)
		return err
	}
}

func decodeOp(c codec.Codec, b []byte) func() error {
	return func() error {
		_, err := c.Decode(b)
		return err
	}
}

func roundTripOp(c codec.Codec, v any) func() error {
	return func() error {
		b, err := c.Encode(v)
		if err != nil {
			return err
		}
		_, err = c.Decode(b)
		return err
	}
}
