package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// GeocodeLagosJSON is a trimmed lookup-by-name response. It keeps the numeric "cod" the live
// API sends so that tests exercise overlap with the error shape.
const GeocodeLagosJSON = `{
	"coord": {"lon": 3.39, "lat": 6.5},
	"weather": [{"id": 802, "main": "Clouds", "description": "scattered clouds", "icon": "03d"}],
	"main": {"temp": 84.2, "humidity": 74},
	"timezone": 3600,
	"id": 2332459,
	"name": "Lagos",
	"cod": 200
}`

// ConditionsLagosJSON is a one-call response whose timezone_offset (7200) deliberately
// differs from the geocode stage's 3600.
const ConditionsLagosJSON = `{
	"lat": 6.5,
	"lon": 3.39,
	"timezone": "Africa/Lagos",
	"timezone_offset": 7200,
	"current": {
		"dt": 1630256400,
		"sunrise": 1630215000,
		"sunset": 1630259400,
		"temp": 84.2,
		"feels_like": 91.4,
		"pressure": 1012,
		"humidity": 74,
		"dew_point": 74.8,
		"uvi": 3.2,
		"clouds": 40,
		"visibility": 10000,
		"wind_speed": 9.22,
		"wind_deg": 220,
		"weather": [{"id": 802, "main": "Clouds", "description": "scattered clouds", "icon": "03d"}]
	},
	"minutely": [
		{"dt": 1630256400, "precipitation": 0},
		{"dt": 1630256460, "precipitation": 1.2},
		{"dt": 1630256520, "precipitation": 0.4}
	]
}`

// NotFoundJSON is the error body the API returns for an unknown city.
const NotFoundJSON = `{"cod":"404","message":"city not found"}`

// InvalidKeyJSON is the error body for a bad appid; note the integer cod.
const InvalidKeyJSON = `{"cod":401,"message":"Invalid API key. Please see https://openweathermap.org/faq#error401 for more info."}`

// Response is a canned reply for one endpoint.
type Response struct {
	Status int
	Body   string
}

// FakeOpenWeather is an httptest server answering /weather and /onecall with canned bodies
// and counting calls per endpoint.
type FakeOpenWeather struct {
	Server *httptest.Server

	mu              sync.Mutex
	geocode         Response
	conditions      Response
	geocodeCalls    int
	conditionsCalls int
	lastGeocode     url.Values
	lastConditions  url.Values
	lastHeader      http.Header
}

// NewFakeOpenWeather starts a server that answers both endpoints with the Lagos fixtures.
// The server is closed when the test ends.
func NewFakeOpenWeather(t *testing.T) *FakeOpenWeather {
	t.Helper()
	f := &FakeOpenWeather{
		geocode:    Response{Status: http.StatusOK, Body: GeocodeLagosJSON},
		conditions: Response{Status: http.StatusOK, Body: ConditionsLagosJSON},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to hand to the client.
func (f *FakeOpenWeather) URL() string {
	return f.Server.URL + "/data/2.5"
}

// SetGeocode replaces the geocode reply.
func (f *FakeOpenWeather) SetGeocode(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocode = Response{Status: status, Body: body}
}

// SetConditions replaces the conditions reply.
func (f *FakeOpenWeather) SetConditions(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conditions = Response{Status: status, Body: body}
}

// Calls returns the number of geocode and conditions requests served so far.
func (f *FakeOpenWeather) Calls() (geocode, conditions int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geocodeCalls, f.conditionsCalls
}

// LastGeocodeQuery returns the query parameters of the most recent geocode request.
func (f *FakeOpenWeather) LastGeocodeQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastGeocode
}

// LastConditionsQuery returns the query parameters of the most recent conditions request.
func (f *FakeOpenWeather) LastConditionsQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastConditions
}

// LastHeader returns the headers of the most recent request.
func (f *FakeOpenWeather) LastHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHeader
}

func (f *FakeOpenWeather) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	var resp Response
	switch {
	case strings.HasSuffix(r.URL.Path, "/weather"):
		f.geocodeCalls++
		f.lastGeocode = r.URL.Query()
		resp = f.geocode
	case strings.HasSuffix(r.URL.Path, "/onecall"):
		f.conditionsCalls++
		f.lastConditions = r.URL.Query()
		resp = f.conditions
	default:
		resp = Response{Status: http.StatusNotFound, Body: `{"cod":"404","message":"Internal error"}`}
	}
	f.lastHeader = r.Header.Clone()
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}
