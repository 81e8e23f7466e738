package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/city-weather-service/internal/observability"
)

// RouterConfig carries the middleware settings for NewRouter.
type RouterConfig struct {
	Logger         *zap.Logger
	Limiter        *rate.Limiter
	RequestTimeout time.Duration
	InFlight       *InFlightTracker
}

// NewRouter mounts /weather, /health and /metrics. Rate limiting and the request
// timeout apply to /weather only.
func NewRouter(h *Handler, cfg RouterConfig) *mux.Router {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.InFlight == nil {
		cfg.InFlight = &InFlightTracker{}
	}

	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(cfg.Logger))
	router.Use(MetricsMiddleware(cfg.InFlight))
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())

	weatherRouter := router.Path("/weather").Subrouter()
	weatherRouter.Use(RateLimitMiddleware(cfg.Limiter, h.monitor.Window()))
	weatherRouter.Use(TimeoutMiddleware(cfg.RequestTimeout))
	weatherRouter.Methods(http.MethodGet).HandlerFunc(h.GetWeather)
	return router
}
