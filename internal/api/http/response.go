package httpapi

import (
	"time"

	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather/providers"
)

type sampleView struct {
	forecast.NormalizedSample
	IconURL string `json:"iconUrl,omitempty"`
}

type dayView struct {
	Date    forecast.Date       `json:"date"`
	Label   string              `json:"label"`
	Summary forecast.DaySummary `json:"summary"`
	Samples []sampleView        `json:"samples"`
}

type forecastResponse struct {
	ID           string             `json:"id"`
	Location     weather.Location   `json:"location"`
	Provider     string             `json:"provider"`
	FetchedAt    time.Time          `json:"fetchedAt"`
	TimeZone     string             `json:"timeZone"`
	Samples      []sampleView       `json:"samples"`
	GroupedByDay []dayView          `json:"groupedByDay"`
	Daylight     []weather.DayLight `json:"daylight,omitempty"`
}

func newForecastResponse(r weather.Report) forecastResponse {
	icons := r.Provider == providers.OpenWeatherName
	views := func(samples []forecast.NormalizedSample) []sampleView {
		out := make([]sampleView, 0, len(samples))
		for _, s := range samples {
			v := sampleView{NormalizedSample: s}
			if icons {
				v.IconURL = providers.IconURL(s.ConditionCode)
			}
			out = append(out, v)
		}
		return out
	}

	days := make([]dayView, 0, len(r.Forecast.Days))
	for _, d := range r.Forecast.Days {
		days = append(days, dayView{
			Date:    d.Date,
			Label:   d.Label,
			Summary: d.Summary,
			Samples: views(d.Samples),
		})
	}

	return forecastResponse{
		ID:           r.ID,
		Location:     r.Location,
		Provider:     r.Provider,
		FetchedAt:    r.FetchedAt,
		TimeZone:     r.TimeZone,
		Samples:      views(r.Forecast.Samples),
		GroupedByDay: days,
		Daylight:     r.Daylight,
	}
}
