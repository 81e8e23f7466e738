package forecast

import (
	"testing"

	"github.com/kjstillabower/city-weather-service/internal/models"
)

func TestNextPrecipitation(t *testing.T) {
	samples := []models.PrecipitationSample{
		{AtEpochSeconds: 100, MMPerHour: 0.0},
		{AtEpochSeconds: 200, MMPerHour: 1.2},
		{AtEpochSeconds: 300, MMPerHour: 0.4},
	}
	tests := []struct {
		name    string
		samples []models.PrecipitationSample
		now     int64
		offset  int32
		want    float64
	}{
		{"first future sample", samples, 150, 0, 1.2},
		{"all in the past", samples, 350, 0, 0},
		{"empty", []models.PrecipitationSample{}, 150, 0, 0},
		{"nil", nil, 150, 0, 0},
		{"equal to now is not future", samples, 200, 0, 0.4},
		{"before every sample", samples, 50, 0, 0.0},
		{"positive offset pulls samples forward", samples, 250, 100, 1.2},
		{"negative offset pushes samples back", samples, 150, -100, 0.4},
		{"offset makes everything past", samples, 150, -200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextPrecipitation(tt.samples, tt.now, tt.offset); got != tt.want {
				t.Errorf("NextPrecipitation(now=%d, offset=%d) = %v, want %v", tt.now, tt.offset, got, tt.want)
			}
		})
	}
}

func TestNextPrecipitation_FirstMatchWinsNotMax(t *testing.T) {
	samples := []models.PrecipitationSample{
		{AtEpochSeconds: 10, MMPerHour: 9.9},
		{AtEpochSeconds: 20, MMPerHour: 0.1},
		{AtEpochSeconds: 30, MMPerHour: 5.0},
	}
	if got := NextPrecipitation(samples, 15, 0); got != 0.1 {
		t.Errorf("NextPrecipitation() = %v, want 0.1", got)
	}
}

// Samples are trusted in delivered order: an out-of-order list is scanned as is.
func TestNextPrecipitation_DeliveredOrderTrusted(t *testing.T) {
	samples := []models.PrecipitationSample{
		{AtEpochSeconds: 300, MMPerHour: 0.4},
		{AtEpochSeconds: 200, MMPerHour: 1.2},
	}
	if got := NextPrecipitation(samples, 150, 0); got != 0.4 {
		t.Errorf("NextPrecipitation() = %v, want 0.4 from the first qualifying sample", got)
	}
}
