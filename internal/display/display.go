// Package display turns a ConditionsResult into the strings a client renders.
package display

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kjstillabower/city-weather-service/internal/forecast"
	"github.com/kjstillabower/city-weather-service/internal/localtime"
	"github.com/kjstillabower/city-weather-service/internal/models"
)

// Tile labels, in display order.
const (
	LabelHumidity      = "Humidity"
	LabelPressure      = "Pressure (hPa)"
	LabelUVIndex       = "UV Index"
	LabelCloudiness    = "Cloudiness"
	LabelWindSpeed     = "Wind (mph)"
	LabelPrecipitation = "Precipitation (mm)"
)

// Summary is everything needed to render one lookup.
type Summary struct {
	LocationName string                        `json:"locationName"`
	LocalTime    string                        `json:"localTime"`
	Sunrise      string                        `json:"sunrise"`
	Sunset       string                        `json:"sunset"`
	Temperature  string                        `json:"temperature"`
	FeelsLike    string                        `json:"feelsLike"`
	Condition    string                        `json:"condition"`
	Items        []models.WeatherConditionItem `json:"items"`
}

// ConditionItems builds the six fixed tiles. nowEpochSeconds selects the next
// precipitation sample.
func ConditionItems(r models.ConditionsResult, nowEpochSeconds int64) []models.WeatherConditionItem {
	precip := forecast.NextPrecipitation(r.MinutelyPrecipitation, nowEpochSeconds, r.UTCOffsetSeconds)
	return []models.WeatherConditionItem{
		{Label: LabelHumidity, Value: fmt.Sprintf("%d%%", r.HumidityPercent)},
		{Label: LabelPressure, Value: formatDecimal(r.PressureHPa)},
		{Label: LabelUVIndex, Value: formatDecimal(r.UVIndex)},
		{Label: LabelCloudiness, Value: fmt.Sprintf("%d%%", r.CloudinessPercent)},
		{Label: LabelWindSpeed, Value: formatDecimal(r.WindSpeedMph)},
		{Label: LabelPrecipitation, Value: fmt.Sprintf("%.1f", precip)},
	}
}

// Summarize renders r as seen from a device in zone device (time.Local when nil) at now.
func Summarize(r models.ConditionsResult, now time.Time, device *time.Location) Summary {
	deviceOffset := localtime.DeviceOffset(device, now)
	wallClock := func(epoch int64) time.Time {
		return localtime.LocalWallClock(epoch, r.UTCOffsetSeconds, deviceOffset)
	}

	return Summary{
		LocationName: r.LocationName,
		LocalTime:    localtime.Format(wallClock(r.ObservedAtEpochSeconds)),
		Sunrise:      localtime.FormatClock(wallClock(r.SunriseEpochSeconds)),
		Sunset:       localtime.FormatClock(wallClock(r.SunsetEpochSeconds)),
		Temperature:  formatDegrees(r.TemperatureF),
		FeelsLike:    formatDegrees(r.FeelsLikeF),
		Condition:    primaryCondition(r.ConditionSummaries),
		Items:        ConditionItems(r, now.Unix()),
	}
}

// primaryCondition title-cases the first description, falling back to its title.
func primaryCondition(summaries []models.ConditionSummary) string {
	if len(summaries) == 0 {
		return ""
	}
	text := summaries[0].Description
	if text == "" {
		text = summaries[0].Title
	}
	// Casers are stateful; one per call.
	return cases.Title(language.English).String(text)
}

func formatDegrees(f float64) string {
	return strconv.FormatFloat(math.Round(f), 'f', 0, 64) + "°F"
}

func formatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
