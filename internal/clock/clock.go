// Package clock is the budget clock: a monotonic timer abstraction used to
// measure and attribute elapsed time to pipeline stages. Every duration
// reported by the compiler, renderer, or benchmark harness originates here,
// so tests can substitute a fake and make timing deterministic.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. The system implementation is monotonic
// (Go's time.Time carries a monotonic reading), which is what makes the
// measured stage durations trustworthy across wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the real monotonic clock.
func System() Clock { return systemClock{} }

// Fake is a manually advanced clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake's current instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Timer measures a single span.
type Timer struct {
	clk   Clock
	start time.Time
}

// StartTimer begins measuring against the given clock.
func StartTimer(clk Clock) *Timer {
	return &Timer{clk: clk, start: clk.Now()}
}

// Elapsed reports the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return t.clk.Now().Sub(t.start)
}

// Stage is one named, attributed span of elapsed time.
type Stage struct {
	Name    string
	Elapsed time.Duration
}

// StageTimer attributes elapsed time to a sequence of named stages. Each
// Mark closes the current stage and opens the next.
type StageTimer struct {
	clk    Clock
	last   time.Time
	stages []Stage
}

// NewStageTimer starts a stage timer; the first Mark closes the span that
// began at construction.
func NewStageTimer(clk Clock) *StageTimer {
	return &StageTimer{clk: clk, last: clk.Now()}
}

// Mark records the stage that just finished under the given name.
func (st *StageTimer) Mark(name string) {
	now := st.clk.Now()
	st.stages = append(st.stages, Stage{Name: name, Elapsed: now.Sub(st.last)})
	st.last = now
}

// Stages returns the recorded stages in order.
func (st *StageTimer) Stages() []Stage {
	return st.stages
}

// Total is the sum of all recorded stages.
func (st *StageTimer) Total() time.Duration {
	var total time.Duration
	for _, s := range st.stages {
		total += s.Elapsed
	}
	return total
}
