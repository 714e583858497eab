package forecast

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout renders en-US short weekday, short month and day, e.g. "Mon, Jan 2".
	DateLayout = "Mon, Jan 2"
	// TimeLayout renders en-US 2-digit hour and minute on a 12-hour clock, e.g. "03:00 PM".
	TimeLayout = "03:04 PM"
)

var absoluteZero = decimal.RequireFromString("273.15")

// KelvinToCelsius converts and rounds half away from zero to a whole degree.
// Rounding is applied to the shortest decimal form of k, so 273.65 K is 1 °C.
func KelvinToCelsius(k float64) int {
	return int(decimal.NewFromFloat(k).Sub(absoluteZero).Round(0).IntPart())
}

// Normalize converts a raw sample. Labels and the calendar date are computed
// in loc; a nil loc means UTC.
func Normalize(raw RawSample, loc *time.Location) NormalizedSample {
	if loc == nil {
		loc = time.UTC
	}
	ts := time.Unix(raw.TimestampUTC, 0).In(loc)

	return NormalizedSample{
		Timestamp:            ts,
		TemperatureC:         KelvinToCelsius(raw.TemperatureKelvin),
		FeelsLikeC:           KelvinToCelsius(raw.FeelsLikeKelvin),
		HumidityPercent:      raw.HumidityPercent,
		WindSpeedMS:          raw.WindSpeedMetersPerSecond,
		PressureHPa:          raw.PressureHPa,
		ConditionCode:        raw.ConditionCode,
		ConditionDescription: raw.ConditionDescription,
		Date:                 DateOf(ts),
		DateLabel:            ts.Format(DateLayout),
		TimeLabel:            ts.Format(TimeLayout),
	}
}
