package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/kjstillabower/city-weather-service/internal/models"
)

// MaxQueryLength bounds the q parameter in runes.
const MaxQueryLength = 200

// ErrQueryMissing is returned when neither q nor lat/lon is supplied.
var ErrQueryMissing = errors.New("q or lat and lon is required")

// ErrQueryAmbiguous is returned when q and coordinates are both supplied.
var ErrQueryAmbiguous = errors.New("q cannot be combined with lat/lon")

// ErrQueryTooLong is returned when q exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("q too long")

// ErrInvalidCoordinate is returned for an unparsable or out-of-range latitude or longitude.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrInvalidOffset is returned for an unparsable or out-of-range UTC offset.
var ErrInvalidOffset = errors.New("invalid utc offset")

// maxOffsetSeconds covers every real zone (UTC-12 through UTC+14).
const maxOffsetSeconds = 14 * 3600

// ParseLocationQuery turns the /weather query string into a LocationQuery.
// q is passed through verbatim, even when empty: no trimming or character filtering, the
// weather service decides what it can resolve and reports why it cannot. For the coordinate form, offset defaults to deviceOffset.
func ParseLocationQuery(values url.Values, deviceOffset int32) (models.LocationQuery, error) {
	hasCoords := values.Has("lat") || values.Has("lon")
	if values.Has("q") {
		if hasCoords {
			return models.LocationQuery{}, ErrQueryAmbiguous
		}
		q := values.Get("q")
		if utf8.RuneCountInString(q) > MaxQueryLength {
			return models.LocationQuery{}, ErrQueryTooLong
		}
		return models.TextQuery(q), nil
	}
	if !hasCoords {
		return models.LocationQuery{}, ErrQueryMissing
	}

	lat, err := parseCoordinate(values, "lat", 90)
	if err != nil {
		return models.LocationQuery{}, err
	}
	lon, err := parseCoordinate(values, "lon", 180)
	if err != nil {
		return models.LocationQuery{}, err
	}

	offset := deviceOffset
	if values.Has("offset") {
		n, err := strconv.ParseInt(values.Get("offset"), 10, 32)
		if err != nil || n < -maxOffsetSeconds || n > maxOffsetSeconds {
			return models.LocationQuery{}, fmt.Errorf("%w: %q", ErrInvalidOffset, values.Get("offset"))
		}
		offset = int32(n)
	}
	return models.CoordinateQuery(lat, lon, values.Get("name"), offset), nil
}

func parseCoordinate(values url.Values, key string, limit float64) (float64, error) {
	raw := values.Get(key)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCoordinate, key, raw)
	}
	return v, nil
}
