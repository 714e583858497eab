// Package geo resolves device coordinates to named places and back using the
// Google Geocoding API.
package geo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// apiKeyMu guards the package-level key used by the geocoder library.
var apiKeyMu sync.Mutex

// Resolver implements weather.Geocoder.
type Resolver struct {
	apiKey  string
	reverse func(geocoder.Location) ([]geocoder.Address, error)
	forward func(geocoder.Address) (geocoder.Location, error)
}

// NewResolver returns a Google-backed resolver.
func NewResolver(apiKey string) *Resolver {
	return &Resolver{
		apiKey:  apiKey,
		reverse: geocoder.GeocodingReverse,
		forward: geocoder.Geocoding,
	}
}

// Reverse returns the city and country at lat/lon.
func (r *Resolver) Reverse(ctx context.Context, lat, lon float64) (weather.Location, error) {
	if err := r.ready(ctx); err != nil {
		return weather.Location{}, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return weather.Location{}, fmt.Errorf("invalid coordinates %f,%f", lat, lon)
	}

	var addresses []geocoder.Address
	err := r.call(ctx, func() error {
		var err error
		addresses, err = r.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		return err
	})
	if err != nil {
		return weather.Location{}, err
	}

	for _, a := range addresses {
		city := firstNonEmpty(a.City, a.District, a.County, a.State)
		if city == "" {
			continue
		}
		loc := weather.NewCoordinates(lat, lon)
		loc.City = city
		loc.Country = a.Country
		return loc, nil
	}
	return weather.Location{}, weather.ErrLocationNotFound
}

// Forward returns coordinates for a city.
func (r *Resolver) Forward(ctx context.Context, city, country string) (weather.Location, error) {
	if err := r.ready(ctx); err != nil {
		return weather.Location{}, err
	}
	if strings.TrimSpace(city) == "" {
		return weather.Location{}, fmt.Errorf("city is required")
	}

	var point geocoder.Location
	err := r.call(ctx, func() error {
		var err error
		point, err = r.forward(geocoder.Address{City: city, Country: country})
		return err
	})
	if err != nil {
		return weather.Location{}, err
	}
	if point.Latitude == 0 && point.Longitude == 0 {
		return weather.Location{}, weather.ErrLocationNotFound
	}

	loc := weather.NewCoordinates(point.Latitude, point.Longitude)
	loc.City = city
	loc.Country = country
	return loc, nil
}

func (r *Resolver) ready(ctx context.Context) error {
	if r.apiKey == "" {
		return weather.ErrGeocoderUnavailable
	}
	return ctx.Err()
}

// call runs fn with the API key installed and classifies its error.
// The library has no context support, so cancellation is only checked around the call.
func (r *Resolver) call(ctx context.Context, fn func() error) error {
	apiKeyMu.Lock()
	geocoder.ApiKey = r.apiKey
	err := fn()
	apiKeyMu.Unlock()

	if err != nil {
		if isZeroResults(err) {
			return weather.ErrLocationNotFound
		}
		return fmt.Errorf("%w: geocoding: %v", weather.ErrUpstream, err)
	}
	return ctx.Err()
}

func isZeroResults(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "zero_results") || strings.Contains(msg, "no results")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ weather.Geocoder = (*Resolver)(nil)
