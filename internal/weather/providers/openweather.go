package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// OpenWeatherName is the provider name whose condition codes are icon ids.
const OpenWeatherName = "openweathermap"

// OpenWeatherProvider implements weather.Provider and weather.ForecastProvider
// for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(apiKey string, opts Options) *OpenWeatherProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}

	return &OpenWeatherProvider{
		name:    OpenWeatherName,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: defaultHTTPConfig(opts),
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) request(endpoint string, loc weather.Location, metric bool) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		if metric {
			values.Set("units", "metric")
		}

		if loc.HasCoordinates() {
			values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
			values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
		} else {
			values.Set("q", cityQuery(loc))
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

type owmWeather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Weather []owmWeather `json:"weather"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request("weather", loc, true), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH
	}

	reading := weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Main.Temp,
		FeelsLikeC:   payload.Main.FeelsLike,
		HumidityPct:  payload.Main.Humidity,
		WindSpeedMS:  payload.Wind.Speed,
		PressureHpa:  payload.Main.Pressure,
		PrecipMm:     precip,
		Condition:    mapOpenWeatherCondition(payload.Weather),
	}
	if len(payload.Weather) > 0 {
		reading.Description = payload.Weather[0].Description
		reading.Icon = payload.Weather[0].Icon
	}
	return reading, nil
}

// FetchForecast reads the 5 day / 3 hour endpoint. Temperatures stay in Kelvin.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastFeed, error) {
	if p.apiKey == "" {
		return weather.ForecastFeed{}, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		City struct {
			Name     string `json:"name"`
			Country  string `json:"country"`
			Timezone int    `json:"timezone"`
			Coord    struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"coord"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				Humidity  int     `json:"humidity"`
				Pressure  int     `json:"pressure"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []owmWeather `json:"weather"`
		} `json:"list"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request("forecast", loc, false), &payload); err != nil {
		return weather.ForecastFeed{}, err
	}

	samples := make([]forecast.RawSample, 0, len(payload.List))
	for _, item := range payload.List {
		s := forecast.RawSample{
			TimestampUTC:             item.Dt,
			TemperatureKelvin:        item.Main.Temp,
			FeelsLikeKelvin:          item.Main.FeelsLike,
			HumidityPercent:          item.Main.Humidity,
			WindSpeedMetersPerSecond: item.Wind.Speed,
			PressureHPa:              item.Main.Pressure,
		}
		if len(item.Weather) > 0 {
			s.ConditionCode = item.Weather[0].Icon
			s.ConditionDescription = item.Weather[0].Description
		}
		samples = append(samples, s)
	}

	resolved := weather.Location{City: payload.City.Name, Country: payload.City.Country}
	if c := payload.City.Coord; c.Lat != 0 || c.Lon != 0 {
		resolved.Lat, resolved.Lon = &c.Lat, &c.Lon
	}

	return weather.ForecastFeed{
		Location:         resolved,
		UTCOffsetSeconds: payload.City.Timezone,
		Samples:          samples,
	}, nil
}

func mapOpenWeatherCondition(items []owmWeather) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}

var (
	_ weather.Provider         = (*OpenWeatherProvider)(nil)
	_ weather.ForecastProvider = (*OpenWeatherProvider)(nil)
)
