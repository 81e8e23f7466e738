package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/city-weather-service/internal/health"
)

func newTestRouter(l Lookuper, cfg RouterConfig) (http.Handler, *health.Monitor) {
	monitor := health.NewMonitor(health.Config{DegradedWindow: time.Minute, DegradedErrorPct: 50})
	h := newTestHandler(l, monitor)
	return NewRouter(h, cfg), monitor
}

func TestRouter_CorrelationID(t *testing.T) {
	router, _ := newTestRouter(&mockLookuper{}, RouterConfig{Logger: zap.NewNop()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/weather?q=Lagos", nil))
	if w.Header().Get(CorrelationIDHeader) == "" {
		t.Error("X-Correlation-ID header missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/weather", nil)
	req.Header.Set(CorrelationIDHeader, "client-provided-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(CorrelationIDHeader); got != "client-provided-id" {
		t.Errorf("X-Correlation-ID = %q, want client-provided-id", got)
	}
	if got := decodeError(t, w).Error.RequestID; got != "client-provided-id" {
		t.Errorf("requestId = %q, want client-provided-id", got)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	router, monitor := newTestRouter(&mockLookuper{}, RouterConfig{Limiter: limiter})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/weather?q=Lagos", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/weather?q=Lagos", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if got := decodeError(t, w).Error.Code; got != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", got)
	}
	if got := monitor.Window().Denials(time.Minute); got != 1 {
		t.Errorf("denials = %d, want 1", got)
	}

	// /health is not rate limited.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", w.Code)
	}
}

func TestRouter_RequestTimeout(t *testing.T) {
	router, _ := newTestRouter(&mockLookuper{blockOn: true}, RouterConfig{RequestTimeout: 20 * time.Millisecond})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/weather?q=Lagos", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(&mockLookuper{}, RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/weather?q=Lagos", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(&mockLookuper{}, RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", w.Code)
	}
}

func TestMetricsMiddleware_TracksInFlight(t *testing.T) {
	tracker := &InFlightTracker{}
	var during int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = tracker.Count()
		w.WriteHeader(http.StatusNoContent)
	})

	MetricsMiddleware(tracker)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if during != 1 {
		t.Errorf("count during request = %d, want 1", during)
	}
	if got := tracker.Count(); got != 0 {
		t.Errorf("count after request = %d, want 0", got)
	}
}

func TestCorrelationIDMiddleware_ScopesContext(t *testing.T) {
	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = CorrelationIDFromContext(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(CorrelationIDHeader, "abc")
	CorrelationIDMiddleware(zap.NewNop())(next).ServeHTTP(httptest.NewRecorder(), req)

	if gotID != "abc" {
		t.Errorf("CorrelationIDFromContext() = %q, want abc", gotID)
	}
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context id = %q", got)
	}
}
