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

	"github.com/i474232898/weather-forecast-aggregation/internal/common"
	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// weatherAPIForecastDays is what the free plan serves.
const weatherAPIForecastDays = 3

// WeatherAPIProvider implements weather.Provider and weather.ForecastProvider
// for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(apiKey string, opts Options) *WeatherAPIProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.weatherapi.com/v1"
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: defaultHTTPConfig(opts),
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) request(endpoint string, loc weather.Location, extra url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if loc.HasCoordinates() {
			values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
		} else {
			values.Set("q", cityQuery(loc))
		}
		for k, v := range extra {
			values[k] = v
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

type wapiCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type wapiLocation struct {
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	TzID           string  `json:"tz_id"`
	LocaltimeEpoch int64   `json:"localtime_epoch"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	var payload struct {
		Location wapiLocation `json:"location"`
		Current  struct {
			LastUpdatedEpoch int64         `json:"last_updated_epoch"`
			TempC            float64       `json:"temp_c"`
			FeelsLikeC       float64       `json:"feelslike_c"`
			Humidity         float64       `json:"humidity"`
			WindKph          float64       `json:"wind_kph"`
			PressureMb       float64       `json:"pressure_mb"`
			PrecipMm         float64       `json:"precip_mm"`
			Condition        wapiCondition `json:"condition"`
		} `json:"current"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request("current.json", loc, nil), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	epoch := payload.Current.LastUpdatedEpoch
	if epoch == 0 {
		epoch = payload.Location.LocaltimeEpoch
	}
	ts := time.Now().UTC()
	if epoch > 0 {
		ts = time.Unix(epoch, 0).UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.TempC,
		FeelsLikeC:   payload.Current.FeelsLikeC,
		HumidityPct:  payload.Current.Humidity,
		WindSpeedMS:  kphToMS(payload.Current.WindKph),
		PressureHpa:  payload.Current.PressureMb,
		PrecipMm:     payload.Current.PrecipMm,
		Condition:    mapWeatherAPICondition(payload.Current.Condition.Text),
		Description:  strings.ToLower(payload.Current.Condition.Text),
		Icon:         strconv.Itoa(payload.Current.Condition.Code),
	}, nil
}

// FetchForecast reads the hourly forecast and keeps every third hour so the
// series lines up with the 3-hour slots the other providers deliver.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastFeed, error) {
	if p.apiKey == "" {
		return weather.ForecastFeed{}, fmt.Errorf("weatherapi api key is not configured")
	}

	var payload struct {
		Location wapiLocation `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch  int64         `json:"time_epoch"`
					TempC      float64       `json:"temp_c"`
					FeelsLikeC float64       `json:"feelslike_c"`
					Humidity   int           `json:"humidity"`
					WindKph    float64       `json:"wind_kph"`
					PressureMb float64       `json:"pressure_mb"`
					Condition  wapiCondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	extra := url.Values{}
	extra.Set("days", strconv.Itoa(weatherAPIForecastDays))
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request("forecast.json", loc, extra), &payload); err != nil {
		return weather.ForecastFeed{}, err
	}

	var samples []forecast.RawSample
	for _, day := range payload.Forecast.ForecastDay {
		for i, h := range day.Hour {
			if i%3 != 0 {
				continue
			}
			samples = append(samples, forecast.RawSample{
				TimestampUTC:             h.TimeEpoch,
				TemperatureKelvin:        celsiusToKelvin(h.TempC),
				FeelsLikeKelvin:          celsiusToKelvin(h.FeelsLikeC),
				HumidityPercent:          h.Humidity,
				WindSpeedMetersPerSecond: kphToMS(h.WindKph),
				PressureHPa:              int(h.PressureMb + 0.5),
				ConditionCode:            strconv.Itoa(h.Condition.Code),
				ConditionDescription:     strings.ToLower(h.Condition.Text),
			})
		}
	}

	resolved := weather.Location{City: payload.Location.Name, Country: payload.Location.Country}
	if l := payload.Location; l.Lat != 0 || l.Lon != 0 {
		resolved.Lat, resolved.Lon = &l.Lat, &l.Lon
	}

	at := time.Now()
	if len(samples) > 0 {
		at = time.Unix(samples[0].TimestampUTC, 0)
	}

	return weather.ForecastFeed{
		Location:         resolved,
		UTCOffsetSeconds: zoneOffset(payload.Location.TzID, at),
		ZoneName:         payload.Location.TzID,
		Samples:          samples,
	}, nil
}

// zoneOffset returns the UTC offset of an IANA zone at a given instant, 0 if
// the zone is unknown.
func zoneOffset(tzID string, at time.Time) int {
	if tzID == "" {
		return 0
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return 0
	}
	_, offset := at.In(loc).Zone()
	return offset
}

// kphToMS converts wind from kph to m/s.
func kphToMS(kph float64) float64 {
	return kph / 3.6
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(text, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case common.HasAny(text, "mist", "fog"):
		return weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}

var (
	_ weather.Provider         = (*WeatherAPIProvider)(nil)
	_ weather.ForecastProvider = (*WeatherAPIProvider)(nil)
)
