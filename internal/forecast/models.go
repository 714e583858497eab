package forecast

import (
	"fmt"
	"time"
)

// RawSample is one 3-hour forecast slot as delivered by a forecast provider.
// Temperatures are in Kelvin.
type RawSample struct {
	TimestampUTC             int64   `json:"dt"`
	TemperatureKelvin        float64 `json:"tempK"`
	FeelsLikeKelvin          float64 `json:"feelsLikeK"`
	HumidityPercent          int     `json:"humidity"`
	WindSpeedMetersPerSecond float64 `json:"windSpeed"`
	PressureHPa              int     `json:"pressure"`
	ConditionCode            string  `json:"conditionCode"`
	ConditionDescription     string  `json:"description"`
}

// Date is a civil calendar date used as the day bucket key. It encodes as
// YYYY-MM-DD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a YYYY-MM-DD date.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01-02", string(b))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", string(b), err)
	}
	*d = DateOf(t)
	return nil
}

// NormalizedSample is a RawSample with temperatures in Celsius and display
// labels derived from its timestamp.
type NormalizedSample struct {
	Timestamp            time.Time `json:"timestamp"`
	TemperatureC         int       `json:"temperature"`
	FeelsLikeC           int       `json:"feelsLike"`
	HumidityPercent      int       `json:"humidity"`
	WindSpeedMS          float64   `json:"windSpeed"`
	PressureHPa          int       `json:"pressure"`
	ConditionCode        string    `json:"icon"`
	ConditionDescription string    `json:"description"`

	Date      Date   `json:"date"`
	DateLabel string `json:"dateLabel"`
	TimeLabel string `json:"timeLabel"`
}

// DayBucket groups the samples that fall on one calendar date, in arrival order.
type DayBucket struct {
	Date    Date
	Label   string
	Samples []NormalizedSample
}

// DaySummary holds the daily highlights derived from a bucket.
type DaySummary struct {
	MinTemperature int     `json:"minTemperature"`
	MaxTemperature int     `json:"maxTemperature"`
	AvgHumidity    int     `json:"avgHumidity"`
	AvgWindSpeed   float64 `json:"avgWindSpeed"`
	MaxWindSpeed   float64 `json:"maxWindSpeed"`
	AvgPressure    int     `json:"avgPressure"`
}

// Day is one entry of the grouped forecast: the member samples for the hourly
// strip and the summary for the highlights view.
type Day struct {
	Date    Date               `json:"date"`
	Label   string             `json:"label"`
	Summary DaySummary         `json:"summary"`
	Samples []NormalizedSample `json:"samples"`
}

// Forecast is the assembled result. Days are in first-occurrence order.
type Forecast struct {
	Samples []NormalizedSample `json:"samples"`
	Days    []Day              `json:"groupedByDay"`
}

// Day returns the entry for date, if present.
func (f Forecast) Day(date Date) (Day, bool) {
	for _, d := range f.Days {
		if d.Date == date {
			return d, true
		}
	}
	return Day{}, false
}

// Truncate returns a copy holding at most n days and only their samples.
// n <= 0 keeps everything.
func (f Forecast) Truncate(n int) Forecast {
	if n <= 0 || n >= len(f.Days) {
		return f
	}
	days := f.Days[:n]
	keep := make(map[Date]struct{}, n)
	for _, d := range days {
		keep[d.Date] = struct{}{}
	}
	samples := make([]NormalizedSample, 0, len(f.Samples))
	for _, s := range f.Samples {
		if _, ok := keep[s.Date]; ok {
			samples = append(samples, s)
		}
	}
	return Forecast{Samples: samples, Days: days}
}
