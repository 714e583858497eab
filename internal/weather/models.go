package weather

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location represents a logical place for which we track weather.
// Either City (with optional Country) or both coordinates must be set.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// NewCoordinates builds a coordinate-only location.
func NewCoordinates(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.City == "" && l.HasCoordinates() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return l.City + ":" + l.Country
}

// SameCity compares by city and country only, as favorites do.
func (l Location) SameCity(o Location) bool {
	return l.City == o.City && l.Country == o.Country
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`

	Sunrise *time.Time `json:"sunrise,omitempty"`
	Sunset  *time.Time `json:"sunset,omitempty"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// ForecastFeed is what a forecast provider hands back: the resolved place,
// its UTC offset and the raw 3-hour series in time order. ZoneName is the
// IANA zone of the place when the provider reports one.
type ForecastFeed struct {
	Location         Location
	UTCOffsetSeconds int
	ZoneName         string
	Samples          []forecast.RawSample
}

// DayLight holds sunrise and sunset for one forecast day.
type DayLight struct {
	Date    forecast.Date `json:"date"`
	Sunrise time.Time     `json:"sunrise"`
	Sunset  time.Time     `json:"sunset"`
}

// Report is an assembled forecast for one location and one fetch.
type Report struct {
	ID        string            `json:"id"`
	Location  Location          `json:"location"`
	Provider  string            `json:"provider"`
	FetchedAt time.Time         `json:"fetchedAt"`
	TimeZone  string            `json:"timeZone"`
	Forecast  forecast.Forecast `json:"forecast"`
	Daylight  []DayLight        `json:"daylight,omitempty"`
}

// Truncate limits the report to its first n days; n <= 0 keeps all.
func (r Report) Truncate(n int) Report {
	if n <= 0 || n >= len(r.Forecast.Days) {
		return r
	}
	r.Forecast = r.Forecast.Truncate(n)
	daylight := make([]DayLight, 0, n)
	for _, d := range r.Daylight {
		if _, ok := r.Forecast.Day(d.Date); ok {
			daylight = append(daylight, d)
		}
	}
	r.Daylight = daylight
	return r
}
