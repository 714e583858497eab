package weather

import (
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
)

// SunTimes returns sunrise and sunset on the calendar day of t, expressed in
// t's location. ok is false when the sun does not rise or set (polar day/night).
func SunTimes(t time.Time, lat, lon float64) (sunrise, sunset time.Time, ok bool) {
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
	times := suncalc.GetTimes(noon, lat, lon)

	rise := times["sunrise"].Value
	set := times["sunset"].Value
	if rise.IsZero() || set.IsZero() || !set.After(rise) {
		return time.Time{}, time.Time{}, false
	}
	return rise.In(t.Location()), set.In(t.Location()), true
}

// daylightFor computes sunrise/sunset for each forecast day.
func daylightFor(f forecast.Forecast, loc Location, zone *time.Location) []DayLight {
	if !loc.HasCoordinates() || len(f.Days) == 0 {
		return nil
	}

	out := make([]DayLight, 0, len(f.Days))
	for _, d := range f.Days {
		day := time.Date(d.Date.Year, d.Date.Month, d.Date.Day, 0, 0, 0, 0, zone)
		rise, set, ok := SunTimes(day, *loc.Lat, *loc.Lon)
		if !ok {
			continue
		}
		out = append(out, DayLight{Date: d.Date, Sunrise: rise, Sunset: set})
	}
	return out
}
