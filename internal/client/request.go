package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

const (
	geocodePath    = "weather"
	conditionsPath = "onecall"
	defaultUnits   = "imperial"
)

// Endpoint holds the fixed parts of every outbound request.
type Endpoint struct {
	BaseURL *url.URL
	APIKey  string
	Units   string
}

// NewEndpoint parses baseURL once so that building requests cannot fail later.
func NewEndpoint(baseURL, apiKey string) (Endpoint, error) {
	if apiKey == "" {
		return Endpoint{}, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Endpoint{}, fmt.Errorf("invalid API URL %q: scheme and host required", baseURL)
	}
	return Endpoint{BaseURL: u, APIKey: apiKey, Units: defaultUnits}, nil
}

// RequestDescriptor is a fully formed outbound request, independent of any transport.
type RequestDescriptor struct {
	Method string
	URL    string
	Header http.Header
}

// BuildGeocodeRequest describes a lookup-by-name call. query is passed through verbatim;
// rejecting empty or unknown text is left to the remote service.
func (e Endpoint) BuildGeocodeRequest(query string) RequestDescriptor {
	params := url.Values{}
	params.Set("q", query)
	return e.describe(geocodePath, params)
}

// BuildConditionsRequest describes a current+minutely call for a coordinate pair.
func (e Endpoint) BuildConditionsRequest(lat, lon float64) RequestDescriptor {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("exclude", "hourly,daily")
	return e.describe(conditionsPath, params)
}

func (e Endpoint) describe(path string, params url.Values) RequestDescriptor {
	units := e.Units
	if units == "" {
		units = defaultUnits
	}
	params.Set("units", units)
	params.Set("appid", e.APIKey)

	u := *e.BaseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + path
	u.RawPath = ""
	u.RawQuery = params.Encode()

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return RequestDescriptor{
		Method: http.MethodGet,
		URL:    u.String(),
		Header: header,
	}
}

// NewHTTPRequest binds the descriptor to ctx.
func (d RequestDescriptor) NewHTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range d.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	return req, nil
}
