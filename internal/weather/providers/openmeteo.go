package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const openMeteoForecastDays = 5

// OpenMeteoProvider implements weather.Provider and weather.ForecastProvider
// for Open-Meteo. It needs coordinates; city-only locations are resolved
// through the geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder weather.Geocoder
}

func NewOpenMeteoProvider(geocoder weather.Geocoder, opts Options) *OpenMeteoProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1"
	}

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpCfg:  defaultHTTPConfig(opts),
		circuit:  newBreaker("openmeteo"),
		geocoder: geocoder,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// resolve makes sure loc carries coordinates.
func (p *OpenMeteoProvider) resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.HasCoordinates() {
		return loc, nil
	}
	if p.geocoder == nil {
		return weather.Location{}, fmt.Errorf("openmeteo requires latitude and longitude")
	}

	resolved, err := p.geocoder.Forward(ctx, loc.City, loc.Country)
	if err != nil {
		return weather.Location{}, err
	}
	if resolved.City == "" {
		resolved.City = loc.City
	}
	if resolved.Country == "" {
		resolved.Country = loc.Country
	}
	return resolved, nil
}

func (p *OpenMeteoProvider) request(loc weather.Location, extra url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
		values.Set("wind_speed_unit", "ms")
		values.Set("timeformat", "unixtime")
		for k, v := range extra {
			values[k] = v
		}

		u := fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	loc, err := p.resolve(ctx, loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	var payload struct {
		Current struct {
			Time             int64   `json:"time"`
			Temperature      float64 `json:"temperature_2m"`
			ApparentTemp     float64 `json:"apparent_temperature"`
			RelativeHumidity float64 `json:"relative_humidity_2m"`
			WindSpeed        float64 `json:"wind_speed_10m"`
			SurfacePressure  float64 `json:"surface_pressure"`
			Precipitation    float64 `json:"precipitation"`
			WeatherCode      int     `json:"weather_code"`
		} `json:"current"`
	}

	extra := url.Values{}
	extra.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,surface_pressure,precipitation,weather_code")
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request(loc, extra), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Current.Time > 0 {
		ts = time.Unix(payload.Current.Time, 0).UTC()
	}

	cond := mapOpenMeteoCondition(payload.Current.WeatherCode)

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.Temperature,
		FeelsLikeC:   payload.Current.ApparentTemp,
		HumidityPct:  payload.Current.RelativeHumidity,
		WindSpeedMS:  payload.Current.WindSpeed,
		PressureHpa:  payload.Current.SurfacePressure,
		PrecipMm:     payload.Current.Precipitation,
		Condition:    cond,
		Description:  string(cond),
		Icon:         strconv.Itoa(payload.Current.WeatherCode),
	}, nil
}

// FetchForecast reads the hourly series, keeping every third hour.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastFeed, error) {
	loc, err := p.resolve(ctx, loc)
	if err != nil {
		return weather.ForecastFeed{}, err
	}

	var payload struct {
		UTCOffsetSeconds int    `json:"utc_offset_seconds"`
		Timezone         string `json:"timezone"`
		Hourly           struct {
			Time             []int64   `json:"time"`
			Temperature      []float64 `json:"temperature_2m"`
			ApparentTemp     []float64 `json:"apparent_temperature"`
			RelativeHumidity []float64 `json:"relative_humidity_2m"`
			WindSpeed        []float64 `json:"wind_speed_10m"`
			SurfacePressure  []float64 `json:"surface_pressure"`
			WeatherCode      []int     `json:"weather_code"`
		} `json:"hourly"`
	}

	extra := url.Values{}
	extra.Set("hourly", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,surface_pressure,weather_code")
	extra.Set("forecast_days", strconv.Itoa(openMeteoForecastDays))
	extra.Set("timezone", "auto")
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request(loc, extra), &payload); err != nil {
		return weather.ForecastFeed{}, err
	}

	h := payload.Hourly
	n := minLen(len(h.Time), len(h.Temperature), len(h.ApparentTemp), len(h.RelativeHumidity),
		len(h.WindSpeed), len(h.SurfacePressure), len(h.WeatherCode))

	samples := make([]forecast.RawSample, 0, n/3+1)
	for i := 0; i < n; i += 3 {
		cond := mapOpenMeteoCondition(h.WeatherCode[i])
		samples = append(samples, forecast.RawSample{
			TimestampUTC:             h.Time[i],
			TemperatureKelvin:        celsiusToKelvin(h.Temperature[i]),
			FeelsLikeKelvin:          celsiusToKelvin(h.ApparentTemp[i]),
			HumidityPercent:          int(h.RelativeHumidity[i] + 0.5),
			WindSpeedMetersPerSecond: h.WindSpeed[i],
			PressureHPa:              int(h.SurfacePressure[i] + 0.5),
			ConditionCode:            strconv.Itoa(h.WeatherCode[i]),
			ConditionDescription:     string(cond),
		})
	}

	return weather.ForecastFeed{
		Location:         loc,
		UTCOffsetSeconds: payload.UTCOffsetSeconds,
		ZoneName:         payload.Timezone,
		Samples:          samples,
	}, nil
}

func minLen(ns ...int) int {
	m := ns[0]
	for _, n := range ns[1:] {
		if n < m {
			m = n
		}
	}
	return m
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

var (
	_ weather.Provider         = (*OpenMeteoProvider)(nil)
	_ weather.ForecastProvider = (*OpenMeteoProvider)(nil)
)
