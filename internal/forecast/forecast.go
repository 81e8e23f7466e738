package forecast

import "github.com/kjstillabower/city-weather-service/internal/models"

// NextPrecipitation returns the rate of the first sample whose offset-adjusted time is
// after now, or 0 when every sample is in the past or there are none. Samples are
// scanned in the order given; the upstream delivers at most ~61 of them.
func NextPrecipitation(samples []models.PrecipitationSample, nowEpochSeconds int64, targetUTCOffsetSeconds int32) float64 {
	for _, s := range samples {
		if s.AtEpochSeconds+int64(targetUTCOffsetSeconds) > nowEpochSeconds {
			return s.MMPerHour
		}
	}
	return 0
}
