package main

import (
	"context"
	"log"
	"net/http"

	"github.com/i474232898/weather-forecast-aggregation/internal/config"
	"github.com/i474232898/weather-forecast-aggregation/internal/geo"
	"github.com/i474232898/weather-forecast-aggregation/internal/prefs"
	"github.com/i474232898/weather-forecast-aggregation/internal/store"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather/providers"
)

// app holds the wired collaborators shared by every command.
type app struct {
	service   *weather.Service
	db        *prefs.DB
	history   *prefs.History
	favorites *prefs.Favorites
	settings  *prefs.Settings
}

func newApp(ctx context.Context, cfg *config.AppConfig, extra ...weather.Option) (*app, error) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	opts := providers.Options{
		Client: httpClient,
		RPS:    cfg.ProviderRPS,
		Burst:  cfg.ProviderBurst,
	}

	resolver := geo.NewResolver(cfg.GeocoderAPIKey)

	// Providers with resilience (rate limit + backoff + circuit breaker).
	// Forecast failover follows this order.
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(cfg.OpenWeatherAPIKey, opts))
		log.Println("INFO: provider openweathermap enabled")
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(cfg.WeatherAPIKey, opts))
		log.Println("INFO: provider weatherapi enabled")
	}
	// Open-Meteo needs no key; city lookups go through the geocoder.
	provs = append(provs, providers.NewOpenMeteoProvider(resolver, opts))

	svcOpts := []weather.Option{
		weather.WithForecastCache(store.NewForecastCache(cfg.ForecastCacheTTL)),
		weather.WithGeocoder(resolver),
		weather.WithTimeZone(cfg.TimeZone),
	}
	svcOpts = append(svcOpts, extra...)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	db, err := prefs.Open(ctx, cfg.PrefsDriver, cfg.PrefsDSN)
	if err != nil {
		return nil, err
	}

	return &app{
		service:   weather.NewService(memStore, provs, svcOpts...),
		db:        db,
		history:   prefs.NewHistory(db, cfg.SearchHistoryLimit),
		favorites: prefs.NewFavorites(db),
		settings:  prefs.NewSettings(db),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Printf("error closing preferences db: %v", err)
	}
}
