package models

import "strconv"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationQuery is one lookup request: free text, or an explicit coordinate pair.
// When Coordinates is set the geocode stage is skipped and DisplayName and
// UTCOffsetSeconds stand in for its result.
type LocationQuery struct {
	Text             string
	Coordinates      *Coordinates
	DisplayName      string
	UTCOffsetSeconds int32
}

// TextQuery returns a query that is geocoded from free text ("Lagos, NG", a postal code, ...).
func TextQuery(text string) LocationQuery {
	return LocationQuery{Text: text}
}

// CoordinateQuery returns a query that goes straight to the conditions stage.
func CoordinateQuery(lat, lon float64, displayName string, utcOffsetSeconds int32) LocationQuery {
	return LocationQuery{
		Coordinates:      &Coordinates{Latitude: lat, Longitude: lon},
		DisplayName:      displayName,
		UTCOffsetSeconds: utcOffsetSeconds,
	}
}

// IsCoordinates reports whether the query bypasses geocoding.
func (q LocationQuery) IsCoordinates() bool {
	return q.Coordinates != nil
}

// FallbackName is the name shown when the upstream supplies none.
func (q LocationQuery) FallbackName() string {
	if !q.IsCoordinates() {
		return q.Text
	}
	if q.DisplayName != "" {
		return q.DisplayName
	}
	return strconv.FormatFloat(q.Coordinates.Latitude, 'f', -1, 64) + ", " +
		strconv.FormatFloat(q.Coordinates.Longitude, 'f', -1, 64)
}

// GeocodeResult is the outcome of the geocode stage.
type GeocodeResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	DisplayName      string  `json:"displayName"`
	UTCOffsetSeconds int32   `json:"utcOffsetSeconds"`
}

// ConditionSummary is one entry of the upstream "weather" array.
type ConditionSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PrecipitationSample is one minute of the short-horizon precipitation forecast.
type PrecipitationSample struct {
	AtEpochSeconds int64   `json:"atEpochSeconds"`
	MMPerHour      float64 `json:"mmPerHour"`
}

// ConditionsResult is the outcome of the conditions stage. UTCOffsetSeconds and
// LocationName are overwritten from the geocode stage after decoding.
type ConditionsResult struct {
	Latitude               float64               `json:"latitude"`
	Longitude              float64               `json:"longitude"`
	Timezone               string                `json:"timezone"`
	UTCOffsetSeconds       int32                 `json:"utcOffsetSeconds"`
	ObservedAtEpochSeconds int64                 `json:"observedAtEpochSeconds"`
	SunriseEpochSeconds    int64                 `json:"sunriseEpochSeconds"`
	SunsetEpochSeconds     int64                 `json:"sunsetEpochSeconds"`
	TemperatureF           float64               `json:"temperatureF"`
	FeelsLikeF             float64               `json:"feelsLikeF"`
	PressureHPa            float64               `json:"pressureHPa"`
	HumidityPercent        int32                 `json:"humidityPercent"`
	DewPointF              float64               `json:"dewPointF"`
	UVIndex                float64               `json:"uvIndex"`
	CloudinessPercent      int32                 `json:"cloudinessPercent"`
	VisibilityMeters       int32                 `json:"visibilityMeters"`
	WindSpeedMph           float64               `json:"windSpeedMph"`
	WindDirectionDegrees   int32                 `json:"windDirectionDegrees"`
	ConditionSummaries     []ConditionSummary    `json:"conditionSummaries"`
	MinutelyPrecipitation  []PrecipitationSample `json:"minutelyPrecipitation,omitempty"`
	LocationName           string                `json:"locationName"`
}

// WeatherConditionItem is a display-ready label/value pair.
type WeatherConditionItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
