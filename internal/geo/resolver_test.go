package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

func TestReverse(t *testing.T) {
	r := NewResolver("key")
	r.reverse = func(loc geocoder.Location) ([]geocoder.Address, error) {
		if loc.Latitude != 48.85 || loc.Longitude != 2.35 {
			t.Errorf("unexpected location %+v", loc)
		}
		if geocoder.ApiKey != "key" {
			t.Errorf("api key not installed")
		}
		return []geocoder.Address{
			{Country: "France"},
			{City: "Paris", Country: "France"},
		}, nil
	}

	loc, err := r.Reverse(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if loc.City != "Paris" || loc.Country != "France" || !loc.HasCoordinates() {
		t.Errorf("loc = %+v", loc)
	}
}

func TestReverseFallsBackToState(t *testing.T) {
	r := NewResolver("key")
	r.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return []geocoder.Address{{State: "Svalbard", Country: "Norway"}}, nil
	}

	loc, err := r.Reverse(context.Background(), 78.2, 15.6)
	if err != nil || loc.City != "Svalbard" {
		t.Fatalf("Reverse = %+v, %v", loc, err)
	}
}

func TestReverseErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		lat     float64
		stubErr error
		want    error
	}{
		{"no key", "", 10, nil, weather.ErrGeocoderUnavailable},
		{"zero results", "key", 10, errors.New("ZERO_RESULTS"), weather.ErrLocationNotFound},
		{"upstream", "key", 10, errors.New("REQUEST_DENIED"), weather.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.key)
			r.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
				return nil, tt.stubErr
			}
			_, err := r.Reverse(context.Background(), tt.lat, 10)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	r := NewResolver("key")
	if _, err := r.Reverse(context.Background(), 123, 0); err == nil {
		t.Error("expected invalid latitude to fail")
	}
}

func TestForward(t *testing.T) {
	r := NewResolver("key")
	r.forward = func(a geocoder.Address) (geocoder.Location, error) {
		if a.City != "Berlin" || a.Country != "DE" {
			t.Errorf("address = %+v", a)
		}
		return geocoder.Location{Latitude: 52.52, Longitude: 13.405}, nil
	}

	loc, err := r.Forward(context.Background(), "Berlin", "DE")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if *loc.Lat != 52.52 || *loc.Lon != 13.405 || loc.City != "Berlin" {
		t.Errorf("loc = %+v", loc)
	}

	r.forward = func(geocoder.Address) (geocoder.Location, error) { return geocoder.Location{}, nil }
	if _, err := r.Forward(context.Background(), "Atlantis", ""); !errors.Is(err, weather.ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}
}
