package config

import (
	"testing"
	"time"
)

var envKeys = []string{
	"OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY", "GEOCODER_API_KEY",
	"FETCH_INTERVAL", "HTTP_TIMEOUT", "WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY",
	"STORE_MAX_HISTORY", "STORE_MAX_AGE", "FORECAST_CACHE_TTL", "FORECAST_TIMEZONE",
	"PROVIDER_RPS", "PROVIDER_BURST", "PORT", "LIVE_PORT",
	"PREFS_DB_DRIVER", "PREFS_DB_DSN", "SEARCH_HISTORY_LIMIT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.FetchInterval != 15*time.Minute || cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("intervals = %v / %v", cfg.FetchInterval, cfg.HTTPTimeout)
	}
	if cfg.StoreMaxHistory != 96 || cfg.StoreMaxAge != 24*time.Hour {
		t.Errorf("retention = %d / %v", cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}
	if cfg.ForecastCacheTTL != 30*time.Minute {
		t.Errorf("cache ttl = %v", cfg.ForecastCacheTTL)
	}
	if cfg.TimeZone.String() != "UTC" {
		t.Errorf("zone = %s", cfg.TimeZone)
	}
	if cfg.Port != "8080" || cfg.LivePort != 0 {
		t.Errorf("ports = %s / %d", cfg.Port, cfg.LivePort)
	}
	if cfg.PrefsDriver != "sqlite" || cfg.PrefsDSN != "weather-prefs.db" || cfg.SearchHistoryLimit != 10 {
		t.Errorf("prefs = %s %s %d", cfg.PrefsDriver, cfg.PrefsDSN, cfg.SearchHistoryLimit)
	}
	if cfg.ProviderRPS != 1.0 || cfg.ProviderBurst != 2 {
		t.Errorf("rate = %v / %d", cfg.ProviderRPS, cfg.ProviderBurst)
	}
	if len(cfg.Locations) != 0 {
		t.Errorf("locations = %+v", cfg.Locations)
	}
}

func TestFromEnvLocations(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, ,Oslo")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR,XX, NO")
	t.Setenv("FORECAST_TIMEZONE", "location")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if len(cfg.Locations) != 2 || cfg.Locations[1].City != "Oslo" || cfg.Locations[1].Country != "NO" {
		t.Errorf("locations = %+v", cfg.Locations)
	}
	if cfg.TimeZone.String() != "location" {
		t.Errorf("zone = %s", cfg.TimeZone)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"mismatched locations", map[string]string{"WEATHER_LOCATION_CITY": "A,B", "WEATHER_LOCATION_COUNTRY": "X"}},
		{"bad interval", map[string]string{"FETCH_INTERVAL": "soon"}},
		{"interval too short", map[string]string{"FETCH_INTERVAL": "10ms"}},
		{"bad zone", map[string]string{"FORECAST_TIMEZONE": "Mars/Olympus"}},
		{"bad driver", map[string]string{"PREFS_DB_DRIVER": "mysql"}},
		{"bad port", map[string]string{"PORT": "http"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
