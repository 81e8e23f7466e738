package health

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status is the service's self-reported health.
type Status string

const (
	StatusHealthy      Status = "healthy"
	StatusDegraded     Status = "degraded"
	StatusShuttingDown Status = "shutting-down"
)

// Report is the outcome of one Evaluate call.
type Report struct {
	Status Status
	// Reason is empty when healthy.
	Reason string
	// Failures and Total are the lookup counts over the degraded window.
	Failures int
	Total    int
	Denials  int
}

// Serving reports whether the status should answer 200.
func (r Report) Serving() bool {
	return r.Status == StatusHealthy
}

// Config holds the degraded thresholds. A zero window or percentage disables the check.
type Config struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
}

// Monitor combines the shutdown flag with the outcome window.
type Monitor struct {
	cfg          Config
	window       *Window
	shuttingDown atomic.Bool

	mu   sync.Mutex
	last Status
}

// NewMonitor returns a Monitor with an empty window.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg, window: NewWindow()}
}

// Window exposes the outcome window for recording.
func (m *Monitor) Window() *Window {
	return m.window
}

// SetShuttingDown marks the process as draining. /health answers 503 from then on.
func (m *Monitor) SetShuttingDown() {
	m.shuttingDown.Store(true)
}

func (m *Monitor) ShuttingDown() bool {
	return m.shuttingDown.Load()
}

// Evaluate checks shutting-down, then error rate. It also returns the previous status
// so callers can log transitions; previous is empty on the first call.
func (m *Monitor) Evaluate() (report Report, previous Status) {
	report = m.evaluate()
	m.mu.Lock()
	previous, m.last = m.last, report.Status
	m.mu.Unlock()
	return report, previous
}

func (m *Monitor) evaluate() Report {
	var r Report
	if m.cfg.DegradedWindow > 0 {
		r.Failures, r.Total = m.window.FailureRate(m.cfg.DegradedWindow)
		r.Denials = m.window.Denials(m.cfg.DegradedWindow)
	}
	if m.ShuttingDown() {
		r.Status, r.Reason = StatusShuttingDown, "signal"
		return r
	}
	if m.cfg.DegradedWindow > 0 && m.cfg.DegradedErrorPct > 0 && r.Total > 0 {
		if r.Failures*100 >= m.cfg.DegradedErrorPct*r.Total {
			r.Status, r.Reason = StatusDegraded, "error_rate_breach"
			return r
		}
	}
	r.Status = StatusHealthy
	return r
}
