package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/city-weather-service/internal/display"
	"github.com/kjstillabower/city-weather-service/internal/health"
	"github.com/kjstillabower/city-weather-service/internal/localtime"
	"github.com/kjstillabower/city-weather-service/internal/models"
	"github.com/kjstillabower/city-weather-service/internal/observability"
	"github.com/kjstillabower/city-weather-service/internal/service"
	"github.com/kjstillabower/city-weather-service/internal/validation"
)

// Lookuper runs one location lookup. Implemented by service.LookupService.
type Lookuper interface {
	Lookup(ctx context.Context, q models.LocationQuery) (models.ConditionsResult, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	lookups Lookuper
	monitor *health.Monitor
	device  *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler returns a new Handler. device is the zone the summary is rendered for;
// nil means the process's local zone. A nil monitor gets one with degraded checks off.
func NewHandler(lookups Lookuper, monitor *health.Monitor, device *time.Location, logger *zap.Logger) *Handler {
	if monitor == nil {
		monitor = health.NewMonitor(health.Config{})
	}
	if device == nil {
		device = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		lookups: lookups,
		monitor: monitor,
		device:  device,
		logger:  logger,
		now:     time.Now,
	}
}

type weatherResponse struct {
	Conditions models.ConditionsResult `json:"conditions"`
	Summary    display.Summary         `json:"summary"`
}

// GetWeather handles GET /weather?q= and GET /weather?lat=&lon=.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	q, err := validation.ParseLocationQuery(r.URL.Query(), localtime.DeviceOffset(h.device, now))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	result, err := h.lookups.Lookup(r.Context(), q)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	h.monitor.Window().RecordSuccess()
	writeJSON(w, http.StatusOK, weatherResponse{
		Conditions: result,
		Summary:    display.Summarize(result, now, h.device),
	})
}

// writeLookupError maps a lookup failure to a status. An unknown location is the
// caller's problem and does not count against health.
func (h *Handler) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context(), h.logger)

	if le, ok := service.AsLookupError(err); ok {
		switch le.Kind {
		case service.KindAPIError:
			if le.Code == "404" {
				h.monitor.Window().RecordSuccess()
				writeError(w, r, http.StatusNotFound, "LOCATION_NOT_FOUND", le.Message)
				return
			}
			h.monitor.Window().RecordFailure()
			writeError(w, r, http.StatusBadGateway, "UPSTREAM_REJECTED", le.Message)
		case service.KindDecodeFailure:
			h.monitor.Window().RecordFailure()
			writeError(w, r, http.StatusBadGateway, "UPSTREAM_MALFORMED", le.Message)
		default:
			h.monitor.Window().RecordFailure()
			writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", le.Message)
		}
		return
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.monitor.Window().RecordFailure()
		writeError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is reading the response.
		logger.Debug("lookup canceled by client")
	default:
		h.monitor.Window().RecordFailure()
		logger.Error("unexpected lookup error", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report, prev := h.monitor.Evaluate()
	if prev != "" && prev != report.Status {
		h.logger.Info("health status transition",
			zap.String("previous_status", string(prev)),
			zap.String("current_status", string(report.Status)),
			zap.String("reason", report.Reason))
	}

	weatherAPI := "healthy"
	if report.Status == health.StatusDegraded {
		weatherAPI = "unhealthy"
	}
	statusCode := http.StatusOK
	if !report.Serving() {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":  report.Status,
		"service": observability.ServiceName,
		"checks":  map[string]string{"weatherApi": weatherAPI},
		"window": map[string]int{
			"failures": report.Failures,
			"total":    report.Total,
			"denied":   report.Denials,
		},
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope carrying the request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": CorrelationIDFromContext(r.Context()),
		},
	})
}
