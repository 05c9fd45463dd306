// Package measure times codec operations in a warmed-up, single-threaded loop
// and derives latency, throughput and heap growth from the raw samples.
package measure

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	benchErrors "serbench/internal/errors"
	"serbench/internal/telemetry"

	"go.uber.org/zap"
)

// Kind is the codec operation being timed.
type Kind string

const (
	Serialize   Kind = "serialize"
	Deserialize Kind = "deserialize"
	RoundTrip   Kind = "roundtrip"
)

// Loop sizes one measurement. Warmup 0 asks the engine to pick a warmup
// count from the calibrated cost of a single call.
type Loop struct {
	Iterations int
	Warmup     int
}

// Measurement is the result of one timed loop.
type Measurement struct {
	Kind       Kind          `json:"kind"`
	Iterations int           `json:"iterations"`
	Warmup     int           `json:"warmup"`
	TotalTime  time.Duration `json:"totalTime"`
	// AvgNanos is TotalTime divided by Iterations, in nanoseconds.
	AvgNanos  float64 `json:"avgNanos"`
	OpsPerSec float64 `json:"opsPerSec"`
	// MemoryDelta is heap-after minus heap-before in bytes. It is negative
	// when a collection ran inside the loop.
	MemoryDelta int64 `json:"memoryDelta"`
}

// AvgMillis returns the average iteration time in milliseconds.
func (m Measurement) AvgMillis() float64 {
	return m.AvgNanos / float64(time.Millisecond)
}

// MemoryDeltaMB returns the heap delta in mebibytes.
func (m Measurement) MemoryDeltaMB() float64 {
	return float64(m.MemoryDelta) / (1 << 20)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock. The returned times must be monotonic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHeapSampler replaces the heap-in-use reader.
func WithHeapSampler(sample func() uint64) Option {
	return func(e *Engine) { e.heap = sample }
}

// WithGC sets the collection hook run before each timed loop. A nil hook
// disables forced collection.
func WithGC(gc func()) Option {
	return func(e *Engine) { e.gc = gc }
}

// WithoutGC disables forced collection.
func WithoutGC() Option {
	return WithGC(nil)
}

// WithThreadLock pins the measuring goroutine to its OS thread for the
// duration of each loop.
func WithThreadLock(lock bool) Option {
	return func(e *Engine) { e.lockThread = lock }
}

// Engine runs measurements one at a time. It is safe to share, but concurrent
// Measure calls are serialized rather than overlapped.
type Engine struct {
	mu         sync.Mutex
	now        func() time.Time
	heap       func() uint64
	gc         func()
	lockThread bool
}

// NewEngine builds an engine using the runtime clock, heap statistics and
// runtime.GC unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:        time.Now,
		heap:       HeapInUse,
		gc:         runtime.GC,
		lockThread: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.gc == nil {
		telemetry.LogInfo("Forced GC disabled; memory deltas include garbage from earlier work")
	} else {
		telemetry.LogDebug("Forced GC available")
	}
	return e
}

// GCAvailable reports whether a collection is forced before each loop.
func (e *Engine) GCAvailable() bool {
	return e.gc != nil
}

// HeapInUse reads the bytes of allocated heap objects.
func HeapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// Measure warms op up, then times exactly loop.Iterations sequential calls.
// Any error from op aborts the measurement; no partial result is returned.
func (e *Engine) Measure(kind Kind, op func() error, loop Loop) (Measurement, error) {
	if loop.Iterations <= 0 {
		return Measurement{}, fmt.Errorf("iterations must be positive, got %d: %w",
			loop.Iterations, benchErrors.ErrInvalidConfiguration)
	}
	if loop.Warmup < 0 {
		return Measurement{}, fmt.Errorf("warmup must not be negative, got %d: %w",
			loop.Warmup, benchErrors.ErrInvalidConfiguration)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	warmup, err := e.warmup(op, loop.Warmup)
	if err != nil {
		return Measurement{}, fmt.Errorf("%s warmup: %w", kind, err)
	}

	if e.gc != nil {
		e.gc()
	}

	heapBefore := e.heap()
	start := e.now()
	for i := 0; i < loop.Iterations; i++ {
		if err := op(); err != nil {
			return Measurement{}, fmt.Errorf("%s iteration %d: %w", kind, i, err)
		}
	}
	end := e.now()
	heapAfter := e.heap()

	m := derive(kind, loop.Iterations, warmup, end.Sub(start), heapBefore, heapAfter)
	if m.TotalTime == 0 {
		telemetry.LogWarn("Timed loop finished below clock resolution; throughput unavailable",
			zap.String("kind", string(kind)), zap.Int("iterations", m.Iterations))
	}
	telemetry.LogDebug("Measurement complete",
		zap.String("kind", string(kind)),
		zap.Int("iterations", m.Iterations),
		zap.Int("warmup", m.Warmup),
		zap.Duration("total", m.TotalTime),
		zap.Float64("avg_ns", m.AvgNanos),
		zap.Int64("memory_delta", m.MemoryDelta),
	)
	return m, nil
}

// warmup runs the configured number of discarded calls. With a count of 0
// the first call doubles as a calibration sample for RecommendWarmup.
func (e *Engine) warmup(op func() error, n int) (int, error) {
	done := 0
	if n == 0 {
		start := e.now()
		if err := op(); err != nil {
			return 0, err
		}
		done = 1
		n = RecommendWarmup(e.now().Sub(start))
	}
	for ; done < n; done++ {
		if err := op(); err != nil {
			return done, err
		}
	}
	return n, nil
}

func derive(kind Kind, iterations, warmup int, total time.Duration, heapBefore, heapAfter uint64) Measurement {
	if total < 0 {
		total = 0
	}
	m := Measurement{
		Kind:        kind,
		Iterations:  iterations,
		Warmup:      warmup,
		TotalTime:   total,
		AvgNanos:    float64(total) / float64(iterations),
		MemoryDelta: int64(heapAfter) - int64(heapBefore),
	}
	if total > 0 {
		m.OpsPerSec = float64(iterations) / total.Seconds()
	}
	return m
}
