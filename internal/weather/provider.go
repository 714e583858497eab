package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLocationNotFound is returned when a provider or geocoder does not know the place.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstream covers network failures, rate limiting and server errors from providers.
	ErrUpstream = errors.New("upstream weather service unavailable")
	// ErrNoData is returned when no data is stored for a location.
	ErrNoData = errors.New("no weather data for location")
	// ErrGeocoderUnavailable is returned when no geocoder is configured.
	ErrGeocoderUnavailable = errors.New("geocoder not configured")
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	FeelsLikeC   float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition
	Description  string
	Icon         string
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that serve a 3-hour forecast series.
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location) (ForecastFeed, error)
}

// Geocoder resolves places to coordinates and back.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Location, error)
	Forward(ctx context.Context, city, country string) (Location, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot WeatherSnapshot)
	GetLatest(loc Location) (WeatherSnapshot, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error)
}

// ForecastCache keeps the latest report per location.
type ForecastCache interface {
	Get(key string) (Report, bool)
	// Put stores r unless a newer report is already held; it reports whether r was kept.
	Put(key string, r Report) bool
}

// Publisher receives every refreshed forecast report.
type Publisher interface {
	Publish(r Report)
}
