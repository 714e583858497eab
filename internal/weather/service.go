package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-forecast-aggregation/internal/forecast"
)

// MaxForecastDays is the largest number of calendar days a 5-day/3-hour
// series can touch.
const MaxForecastDays = 6

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
	forecasts ForecastCache
	geocoder  Geocoder
	publisher Publisher
	zone      TimeZone
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithForecastCache enables serving forecasts from cache.
func WithForecastCache(c ForecastCache) Option {
	return func(s *Service) { s.forecasts = c }
}

// WithGeocoder enables reverse geocoding.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

// WithPublisher registers a receiver for refreshed forecasts.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTimeZone sets the zone policy used to cut forecast days.
func WithTimeZone(tz TimeZone) Option {
	return func(s *Service) { s.zone = tz }
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		zone:      UTC,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot. When every provider
// fails the stored snapshot is left alone and the provider errors are returned.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
		errs     []error
	)

	log.Printf("DEBUG: FetchAndStore called for %s with %d providers", loc.Key(), len(s.providers))
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return fmt.Errorf("no weather providers configured")
	}

	for _, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				mu.Unlock()
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		// No providers succeeded; do not overwrite last good snapshot.
		log.Printf("no successful provider readings for %s; keeping last good snapshot if any", loc.Key())
		return fmt.Errorf("no weather data available for %s: %w", loc.Key(), errors.Join(errs...))
	}

	snapshot := AggregateReadings(loc, readings)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = s.now()
	}
	if loc.HasCoordinates() {
		if rise, set, ok := SunTimes(snapshot.Timestamp, *loc.Lat, *loc.Lon); ok {
			snapshot.Sunrise, snapshot.Sunset = &rise, &set
		}
	}
	s.store.SaveSnapshot(loc, snapshot)
	return nil
}

// Current returns the latest stored snapshot, fetching once on a miss.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	snap, err := s.store.GetLatest(loc)
	if err == nil || !errors.Is(err, ErrNoData) || len(s.providers) == 0 {
		return snap, err
	}

	if err := s.FetchAndStore(ctx, loc); err != nil {
		return WeatherSnapshot{}, err
	}
	return s.store.GetLatest(loc)
}

// GetForecast returns the grouped forecast for loc, limited to days calendar
// days (0 = all). A fresh cached report is served when available.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (Report, error) {
	if days < 0 || days > MaxForecastDays {
		return Report{}, fmt.Errorf("days must be between 0 and %d", MaxForecastDays)
	}

	log.Printf("DEBUG: GetForecast called for %s for %d days", loc.Key(), days)

	if s.forecasts != nil {
		if r, ok := s.forecasts.Get(loc.Key()); ok {
			return r.Truncate(days), nil
		}
	}

	r, err := s.fetchForecast(ctx, loc)
	if err != nil {
		return Report{}, err
	}
	if s.forecasts != nil {
		s.forecasts.Put(loc.Key(), r)
	}
	return r.Truncate(days), nil
}

// RefreshForecast fetches a new report regardless of the cache and hands it
// to the publisher when it is the newest one for loc.
func (s *Service) RefreshForecast(ctx context.Context, loc Location) (Report, error) {
	r, err := s.fetchForecast(ctx, loc)
	if err != nil {
		return Report{}, err
	}

	kept := true
	if s.forecasts != nil {
		kept = s.forecasts.Put(loc.Key(), r)
	}
	if kept && s.publisher != nil {
		s.publisher.Publish(r)
	}
	return r, nil
}

// fetchForecast tries forecast providers in order; the first success wins.
func (s *Service) fetchForecast(ctx context.Context, loc Location) (Report, error) {
	var errs []error
	tried := 0

	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}
		tried++

		feed, err := fp.FetchForecast(ctx, loc)
		if err != nil {
			log.Printf("provider %s forecast failed for %s: %v", fp.Name(), loc.Key(), err)
			errs = append(errs, fmt.Errorf("%s: %w", fp.Name(), err))
			continue
		}

		return s.buildReport(loc, fp.Name(), feed), nil
	}

	if tried == 0 {
		return Report{}, fmt.Errorf("no forecast providers configured")
	}
	return Report{}, fmt.Errorf("no forecast data available for %s: %w", loc.Key(), errors.Join(errs...))
}

func (s *Service) buildReport(query Location, provider string, feed ForecastFeed) Report {
	zone := s.zone.For(feed)
	agg := forecast.NewAggregator(zone)
	f := agg.Assemble(feed.Samples)

	loc := mergeLocation(query, feed.Location)

	return Report{
		ID:        uuid.NewString(),
		Location:  loc,
		Provider:  provider,
		FetchedAt: s.now(),
		TimeZone:  zone.String(),
		Forecast:  f,
		Daylight:  daylightFor(f, loc, zone),
	}
}

// mergeLocation prefers what the provider resolved and falls back to the query.
func mergeLocation(query, resolved Location) Location {
	out := query
	if resolved.City != "" {
		out.City = resolved.City
	}
	if resolved.Country != "" {
		out.Country = resolved.Country
	}
	if resolved.HasCoordinates() {
		out.Lat, out.Lon = resolved.Lat, resolved.Lon
	}
	return out
}

// ReverseGeocode resolves coordinates to a named place.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (Location, error) {
	if s.geocoder == nil {
		return Location{}, ErrGeocoderUnavailable
	}
	return s.geocoder.Reverse(ctx, lat, lon)
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}

// Providers lists configured provider names.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Stats is a point-in-time view of what the service holds.
type Stats struct {
	Providers        []string `json:"providers"`
	TrackedLocations int      `json:"trackedLocations"`
	CacheHits        int      `json:"cacheHits"`
	CacheMisses      int      `json:"cacheMisses"`
}

// Stats reports provider names plus store and cache counters when the
// backing implementations expose them.
func (s *Service) Stats() Stats {
	st := Stats{Providers: s.Providers()}
	if l, ok := s.store.(interface{ Locations() []Location }); ok {
		st.TrackedLocations = len(l.Locations())
	}
	if c, ok := s.forecasts.(interface{ Stats() (int, int) }); ok {
		st.CacheHits, st.CacheMisses = c.Stats()
	}
	return st
}
