package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// FetchInterval controls how often we refresh each location.
	FetchInterval time.Duration `validate:"gte=1s"`
	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Locations to track.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of snapshots (0 = unlimited)

	ForecastCacheTTL time.Duration `validate:"gte=0"`
	TimeZone         weather.TimeZone

	ProviderRPS   float64 `validate:"gte=0"`
	ProviderBurst int     `validate:"gte=0"`

	Port     string `validate:"required,numeric"`
	LivePort int    `validate:"gte=0,lte=65535"`

	PrefsDriver        string `validate:"oneof=sqlite postgres"`
	PrefsDSN           string `validate:"required"`
	SearchHistoryLimit int    `validate:"gte=1,lte=100"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.ForecastCacheTTL, err = getenvDuration("FORECAST_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.TimeZone, err = weather.ParseTimeZone(getenvDefault("FORECAST_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}

	cfg.ProviderRPS = getenvFloat("PROVIDER_RPS", 1.0)
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 2)

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LivePort = getenvInt("LIVE_PORT", 0)

	cfg.PrefsDriver = strings.ToLower(getenvDefault("PREFS_DB_DRIVER", "sqlite"))
	cfg.PrefsDSN = getenvDefault("PREFS_DB_DSN", "weather-prefs.db")
	cfg.SearchHistoryLimit = getenvInt("SEARCH_HISTORY_LIMIT", 10)

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if city == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		c := strings.TrimSpace(cities[i])
		if c == "" {
			continue
		}
		locs = append(locs, weather.Location{
			City:    c,
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
