package health

import (
	"sync"
	"time"
)

// retention is how long outcomes are kept regardless of the queried window.
const retention = 5 * time.Minute

// Window keeps timestamps of lookup outcomes so rates can be computed over any
// trailing window up to five minutes.
type Window struct {
	mu        sync.Mutex
	now       func() time.Time
	successes []time.Time
	failures  []time.Time
	denials   []time.Time
}

// NewWindow returns an empty Window on the wall clock.
func NewWindow() *Window {
	return &Window{now: time.Now}
}

func (w *Window) RecordSuccess() { w.record(&w.successes) }
func (w *Window) RecordFailure() { w.record(&w.failures) }
func (w *Window) RecordDenied()  { w.record(&w.denials) }

func (w *Window) record(times *[]time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	*times = append(*times, now)
	w.pruneLocked(now)
}

// FailureRate returns failures and successes+failures within window. Denials are not counted.
func (w *Window) FailureRate(window time.Duration) (failures, total int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-window)
	failures = countSince(w.failures, cutoff)
	return failures, failures + countSince(w.successes, cutoff)
}

// Denials returns rate-limit denials within window.
func (w *Window) Denials(window time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return countSince(w.denials, w.now().Add(-window))
}

// Timestamps are appended in order, so the first one at or after cutoff splits the slice.
func countSince(times []time.Time, cutoff time.Time) int {
	for i, ts := range times {
		if !ts.Before(cutoff) {
			return len(times) - i
		}
	}
	return 0
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-retention)
	for _, times := range []*[]time.Time{&w.successes, &w.failures, &w.denials} {
		keep := countSince(*times, cutoff)
		if drop := len(*times) - keep; drop > 0 {
			*times = append((*times)[:0], (*times)[drop:]...)
		}
	}
}
