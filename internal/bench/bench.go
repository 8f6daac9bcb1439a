// Package bench measures startup-path latency distributions. The harness
// only measures and reports; whether a number is acceptable is the caller's
// (or the test suite's) judgment.
package bench

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vk/pzsh/internal/clock"
)

// Options controls one measurement run.
type Options struct {
	// Iterations defaults to 100 when zero.
	Iterations int
	// Warmup iterations run before measurement starts. They are counted in
	// Result.Warmup, never silently discarded from the report.
	Warmup int
	Clock  clock.Clock
}

// Result summarizes one run's latency distribution.
type Result struct {
	Iterations int
	Warmup     int
	Min        time.Duration
	Max        time.Duration
	Mean       time.Duration
	StdDev     time.Duration
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
}

// Verdict is a Result annotated against a budget: a statement of fact, not
// an enforcement action.
type Verdict struct {
	Result
	Budget time.Duration
	Within bool
}

// Run executes fn repeatedly and reports the distribution of its latency.
func Run(opts Options, fn func() error) (Result, error) {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 100
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}

	for i := 0; i < opts.Warmup; i++ {
		if err := fn(); err != nil {
			return Result{}, fmt.Errorf("warmup iteration %d: %w", i, err)
		}
	}

	samples := make([]time.Duration, iterations)
	for i := range samples {
		timer := clock.StartTimer(clk)
		if err := fn(); err != nil {
			return Result{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		samples[i] = timer.Elapsed()
	}

	return summarize(samples, opts.Warmup), nil
}

// summarize computes the distribution over samples. Percentiles use the
// nearest-rank index over the sorted samples.
func summarize(samples []time.Duration, warmup int) Result {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, s := range sorted {
		total += s
	}
	n := len(sorted)
	mean := total / time.Duration(n)

	var variance float64
	for _, s := range sorted {
		d := float64(s - mean)
		variance += d * d
	}
	variance /= float64(n)

	return Result{
		Iterations: n,
		Warmup:     warmup,
		Min:        sorted[0],
		Max:        sorted[n-1],
		Mean:       mean,
		StdDev:     time.Duration(math.Sqrt(variance)),
		P50:        percentile(sorted, 0.50),
		P95:        percentile(sorted, 0.95),
		P99:        percentile(sorted, 0.99),
	}
}

// percentile returns the nearest-rank percentile of pre-sorted samples.
func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Against annotates the result with a pass/fail against budget.
func (r Result) Against(budget time.Duration) Verdict {
	return Verdict{Result: r, Budget: budget, Within: r.P95 <= budget}
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "iterations=%d", r.Iterations)
	if r.Warmup > 0 {
		fmt.Fprintf(&b, " (+%d warmup)", r.Warmup)
	}
	fmt.Fprintf(&b, " min=%s p50=%s mean=%s p95=%s p99=%s max=%s stddev=%s",
		r.Min, r.P50, r.Mean, r.P95, r.P99, r.Max, r.StdDev)
	return b.String()
}
