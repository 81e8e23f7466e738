package client

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kjstillabower/city-weather-service/internal/models"
	"github.com/kjstillabower/city-weather-service/internal/observability"
)

// Shape names a response body layout. Used in errors and as a metric label.
type Shape string

const (
	ShapeGeocode    Shape = "geocode"
	ShapeConditions Shape = "conditions"
	ShapeAPIError   Shape = "api_error"
)

// Outcome is the result class of a decode attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAPIError
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// APIError is a structured rejection returned by the weather service in place of a payload.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather api error %s: %s", e.Code, e.Message)
}

// MalformedError means the body matched neither the expected shape nor the error shape.
type MalformedError struct {
	Shape Shape
	Err   error
	// Body is the offending response, kept for diagnostics only.
	Body []byte
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Shape, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// OutcomeOf classifies an error returned by DecodeGeocode or DecodeConditions.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return OutcomeAPIError
	}
	return OutcomeMalformed
}

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	geocodeSchema    = mustCompileSchema(ShapeGeocode)
	conditionsSchema = mustCompileSchema(ShapeConditions)
	apiErrorSchema   = mustCompileSchema(ShapeAPIError)
)

func mustCompileSchema(shape Shape) *jsonschema.Schema {
	name := "schemas/" + string(shape) + ".json"
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	// A fixed URL keeps validation errors free of the host's working directory.
	url := "mem://" + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

type geocodeWire struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Name     string  `json:"name"`
	Timezone wireInt `json:"timezone"`
}

type conditionsWire struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Timezone       string  `json:"timezone"`
	TimezoneOffset wireInt `json:"timezone_offset"`
	Current        struct {
		Dt         wireInt `json:"dt"`
		Sunrise    wireInt `json:"sunrise"`
		Sunset     wireInt `json:"sunset"`
		Temp       float64 `json:"temp"`
		FeelsLike  float64 `json:"feels_like"`
		Pressure   float64 `json:"pressure"`
		Humidity   wireInt `json:"humidity"`
		DewPoint   float64 `json:"dew_point"`
		UVI        float64 `json:"uvi"`
		Clouds     wireInt `json:"clouds"`
		Visibility wireInt `json:"visibility"`
		WindSpeed  float64 `json:"wind_speed"`
		WindDeg    wireInt `json:"wind_deg"`
		Weather    []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"current"`
	// Samples are kept in the order delivered; nothing sorts them.
	Minutely []struct {
		Dt            wireInt `json:"dt"`
		Precipitation float64 `json:"precipitation"`
	} `json:"minutely"`
}

// wireInt decodes a JSON integer, also accepting integral floats such as 3600.0, which
// the schema's "integer" type admits.
type wireInt int64

func (n *wireInt) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	v, err := integralValue(num)
	if err != nil {
		return err
	}
	*n = wireInt(v)
	return nil
}

func integralValue(num json.Number) (int64, error) {
	if i, err := num.Int64(); err == nil {
		return i, nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("number %s is not an integer", num)
	}
	return int64(f), nil
}

// apiErrorCode accepts both "404" and 401; the service is inconsistent about the type of cod.
type apiErrorCode string

func (c *apiErrorCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = apiErrorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if v, err := integralValue(n); err == nil {
		*c = apiErrorCode(strconv.FormatInt(v, 10))
		return nil
	}
	*c = apiErrorCode(n.String())
	return nil
}

type apiErrorWire struct {
	Cod     apiErrorCode `json:"cod"`
	Message string       `json:"message"`
}

// DecodeGeocode decodes a lookup-by-name response.
func DecodeGeocode(body []byte) (models.GeocodeResult, error) {
	w, err := decode[geocodeWire](body, ShapeGeocode, geocodeSchema)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	return models.GeocodeResult{
		Latitude:         w.Coord.Lat,
		Longitude:        w.Coord.Lon,
		DisplayName:      w.Name,
		UTCOffsetSeconds: int32(w.Timezone),
	}, nil
}

// DecodeConditions decodes a current+minutely response. LocationName is left empty and
// UTCOffsetSeconds holds the endpoint's own value; the caller overrides both.
func DecodeConditions(body []byte) (models.ConditionsResult, error) {
	w, err := decode[conditionsWire](body, ShapeConditions, conditionsSchema)
	if err != nil {
		return models.ConditionsResult{}, err
	}
	c := w.Current
	result := models.ConditionsResult{
		Latitude:               w.Lat,
		Longitude:              w.Lon,
		Timezone:               w.Timezone,
		UTCOffsetSeconds:       int32(w.TimezoneOffset),
		ObservedAtEpochSeconds: int64(c.Dt),
		SunriseEpochSeconds:    int64(c.Sunrise),
		SunsetEpochSeconds:     int64(c.Sunset),
		TemperatureF:           c.Temp,
		FeelsLikeF:             c.FeelsLike,
		PressureHPa:            c.Pressure,
		HumidityPercent:        int32(c.Humidity),
		DewPointF:              c.DewPoint,
		UVIndex:                c.UVI,
		CloudinessPercent:      int32(c.Clouds),
		VisibilityMeters:       int32(c.Visibility),
		WindSpeedMph:           c.WindSpeed,
		WindDirectionDegrees:   int32(c.WindDeg),
		ConditionSummaries:     make([]models.ConditionSummary, 0, len(c.Weather)),
	}
	for _, cond := range c.Weather {
		result.ConditionSummaries = append(result.ConditionSummaries, models.ConditionSummary{
			Title:       cond.Main,
			Description: cond.Description,
		})
	}
	if w.Minutely != nil {
		result.MinutelyPrecipitation = make([]models.PrecipitationSample, 0, len(w.Minutely))
		for _, m := range w.Minutely {
			result.MinutelyPrecipitation = append(result.MinutelyPrecipitation, models.PrecipitationSample{
				AtEpochSeconds: int64(m.Dt),
				MMPerHour:      m.Precipitation,
			})
		}
	}
	return result, nil
}

// decode tries the success shape, then the API error shape, then gives up. The order
// matters: success payloads can carry "cod" and "message" keys too.
func decode[W any](body []byte, shape Shape, schema *jsonschema.Schema) (W, error) {
	var zero W
	outcome := OutcomeMalformed
	defer func() {
		observability.DecodeOutcomesTotal.WithLabelValues(string(shape), outcome.String()).Inc()
	}()

	raw, err := parseJSON(body)
	if err != nil {
		return zero, &MalformedError{Shape: shape, Err: err, Body: body}
	}

	successErr := schema.Validate(raw)
	if successErr == nil {
		var w W
		if successErr = json.Unmarshal(body, &w); successErr == nil {
			outcome = OutcomeSuccess
			return w, nil
		}
	}

	if apiErrorSchema.Validate(raw) == nil {
		var e apiErrorWire
		if err := json.Unmarshal(body, &e); err == nil {
			outcome = OutcomeAPIError
			return zero, &APIError{Code: string(e.Cod), Message: e.Message}
		}
	}

	return zero, &MalformedError{Shape: shape, Err: successErr, Body: body}
}

func parseJSON(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return v, nil
}
