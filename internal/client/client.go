package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kjstillabower/city-weather-service/internal/models"
	"github.com/kjstillabower/city-weather-service/internal/observability"
)

var (
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrTransport wraps every failure to obtain a response body: DNS, connect, timeout, read.
	ErrTransport = errors.New("weather api transport failure")
)

// maxBodyBytes bounds how much of a response is read before decoding.
const maxBodyBytes = 1 << 20

// HTTPDoer is the transport the client sends requests through. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenWeatherClient performs the two OpenWeatherMap calls: lookup by name and one-call by coordinates.
// It never retries; every failure is returned to the caller once.
type OpenWeatherClient struct {
	endpoint Endpoint
	timeout  time.Duration
	client   HTTPDoer
}

// NewOpenWeatherClient returns a client for the API rooted at apiURL (DefaultBaseURL when empty).
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	endpoint, err := NewEndpoint(apiURL, apiKey)
	if err != nil {
		return nil, err
	}
	return &OpenWeatherClient{
		endpoint: endpoint,
		timeout:  timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetUnits overrides the units parameter sent on every request.
func (c *OpenWeatherClient) SetUnits(units string) {
	if units != "" {
		c.endpoint.Units = units
	}
}

// SetTransport replaces the HTTP transport. Intended for tests and custom round-trippers.
func (c *OpenWeatherClient) SetTransport(doer HTTPDoer) {
	c.client = doer
}

// Endpoint returns the request builder the client uses.
func (c *OpenWeatherClient) Endpoint() Endpoint {
	return c.endpoint
}

// Geocode resolves free text to coordinates, display name and UTC offset.
func (c *OpenWeatherClient) Geocode(ctx context.Context, query string) (models.GeocodeResult, error) {
	body, err := c.fetch(ctx, ShapeGeocode, c.endpoint.BuildGeocodeRequest(query))
	if err != nil {
		return models.GeocodeResult{}, err
	}
	return DecodeGeocode(body)
}

// Conditions fetches current conditions and minutely precipitation for a coordinate pair.
func (c *OpenWeatherClient) Conditions(ctx context.Context, lat, lon float64) (models.ConditionsResult, error) {
	body, err := c.fetch(ctx, ShapeConditions, c.endpoint.BuildConditionsRequest(lat, lon))
	if err != nil {
		return models.ConditionsResult{}, err
	}
	return DecodeConditions(body)
}

// fetch sends the request and returns the raw body regardless of HTTP status; the decoder,
// not the status line, decides between payload and API error.
func (c *OpenWeatherClient) fetch(ctx context.Context, shape Shape, desc RequestDescriptor) ([]byte, error) {
	start := time.Now()
	endpoint := string(shape)

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := desc.NewHTTPRequest(reqCtx)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}
	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.WeatherAPIDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: request timeout: %w", ErrTransport, err)
		}
		return nil, fmt.Errorf("%w: http request failed: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", ErrTransport, err)
	}
	return body, nil
}

type correlationIDKey struct{}

// WithCorrelationID returns a context whose outbound requests carry X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func extractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
