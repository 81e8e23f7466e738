package validation

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestParseLocationQuery_Text(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"city", "q=Lagos", "Lagos"},
		{"city and country", "q=Lagos%2C+NG", "Lagos, NG"},
		{"postal code", "q=100001", "100001"},
		{"whitespace kept", "q=++Boston++", "  Boston  "},
		{"unicode", "q=Z%C3%BCrich", "Zürich"},
		{"empty forwarded", "q=", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tc.raw)
			got, err := ParseLocationQuery(values, 0)
			if err != nil {
				t.Fatalf("ParseLocationQuery() error = %v", err)
			}
			if got.IsCoordinates() {
				t.Fatal("got coordinate query, want text")
			}
			if got.Text != tc.want {
				t.Errorf("Text = %q, want %q", got.Text, tc.want)
			}
		})
	}
}

func TestParseLocationQuery_Coordinates(t *testing.T) {
	values := url.Values{"lat": {"40.7"}, "lon": {"-74.0"}, "name": {"New York"}}
	got, err := ParseLocationQuery(values, -14400)
	if err != nil {
		t.Fatalf("ParseLocationQuery() error = %v", err)
	}
	if !got.IsCoordinates() {
		t.Fatal("got text query, want coordinates")
	}
	if got.Coordinates.Latitude != 40.7 || got.Coordinates.Longitude != -74.0 {
		t.Errorf("Coordinates = %+v", *got.Coordinates)
	}
	if got.DisplayName != "New York" {
		t.Errorf("DisplayName = %q", got.DisplayName)
	}
	if got.UTCOffsetSeconds != -14400 {
		t.Errorf("UTCOffsetSeconds = %d, want device offset -14400", got.UTCOffsetSeconds)
	}
}

func TestParseLocationQuery_ExplicitOffset(t *testing.T) {
	values := url.Values{"lat": {"6.5"}, "lon": {"3.39"}, "offset": {"3600"}}
	got, err := ParseLocationQuery(values, -14400)
	if err != nil {
		t.Fatalf("ParseLocationQuery() error = %v", err)
	}
	if got.UTCOffsetSeconds != 3600 {
		t.Errorf("UTCOffsetSeconds = %d, want 3600", got.UTCOffsetSeconds)
	}
}

func TestParseLocationQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		wantErr error
	}{
		{"nothing", url.Values{}, ErrQueryMissing},
		{"q with lat", url.Values{"q": {"Lagos"}, "lat": {"1"}}, ErrQueryAmbiguous},
		{"too long", url.Values{"q": {strings.Repeat("a", MaxQueryLength+1)}}, ErrQueryTooLong},
		{"lat only", url.Values{"lat": {"1"}}, ErrInvalidCoordinate},
		{"lat not a number", url.Values{"lat": {"north"}, "lon": {"1"}}, ErrInvalidCoordinate},
		{"lat out of range", url.Values{"lat": {"91"}, "lon": {"1"}}, ErrInvalidCoordinate},
		{"lon out of range", url.Values{"lat": {"1"}, "lon": {"-180.5"}}, ErrInvalidCoordinate},
		{"lat NaN", url.Values{"lat": {"NaN"}, "lon": {"1"}}, ErrInvalidCoordinate},
		{"offset not a number", url.Values{"lat": {"1"}, "lon": {"1"}, "offset": {"+1h"}}, ErrInvalidOffset},
		{"offset out of range", url.Values{"lat": {"1"}, "lon": {"1"}, "offset": {"90000"}}, ErrInvalidOffset},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLocationQuery(tc.values, 0)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
