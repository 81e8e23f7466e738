package health

import (
	"testing"
	"time"
)

func TestMonitor_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		successes  int
		failures   int
		shutdown   bool
		wantStatus Status
		wantReason string
	}{
		{"no traffic", Config{DegradedWindow: time.Minute, DegradedErrorPct: 50}, 0, 0, false, StatusHealthy, ""},
		{"below threshold", Config{DegradedWindow: time.Minute, DegradedErrorPct: 50}, 3, 2, false, StatusHealthy, ""},
		{"at threshold", Config{DegradedWindow: time.Minute, DegradedErrorPct: 50}, 2, 2, false, StatusDegraded, "error_rate_breach"},
		{"disabled", Config{}, 0, 10, false, StatusHealthy, ""},
		{"shutting down wins", Config{DegradedWindow: time.Minute, DegradedErrorPct: 50}, 0, 10, true, StatusShuttingDown, "signal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMonitor(tc.cfg)
			for i := 0; i < tc.successes; i++ {
				m.Window().RecordSuccess()
			}
			for i := 0; i < tc.failures; i++ {
				m.Window().RecordFailure()
			}
			if tc.shutdown {
				m.SetShuttingDown()
			}
			got, _ := m.Evaluate()
			if got.Status != tc.wantStatus || got.Reason != tc.wantReason {
				t.Errorf("Evaluate() = %s/%q, want %s/%q", got.Status, got.Reason, tc.wantStatus, tc.wantReason)
			}
			if got.Serving() != (tc.wantStatus == StatusHealthy) {
				t.Errorf("Serving() = %v for %s", got.Serving(), got.Status)
			}
		})
	}
}

func TestMonitor_EvaluateReturnsPrevious(t *testing.T) {
	m := NewMonitor(Config{})
	if _, prev := m.Evaluate(); prev != "" {
		t.Errorf("first previous = %q, want empty", prev)
	}
	m.SetShuttingDown()
	got, prev := m.Evaluate()
	if prev != StatusHealthy || got.Status != StatusShuttingDown {
		t.Errorf("Evaluate() = %s, previous %s", got.Status, prev)
	}
}
