package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

func TestMemoryStoreLatestAndRange(t *testing.T) {
	s := NewMemoryStore(10, 0)
	loc := weather.Location{City: "Paris", Country: "FR"}
	base := time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)

	// Out of order on purpose.
	for _, h := range []int{2, 0, 1} {
		s.SaveSnapshot(loc, weather.WeatherSnapshot{Timestamp: base.Add(time.Duration(h) * time.Hour), Temperature: float64(h)})
	}

	latest, err := s.GetLatest(loc)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest.Temperature != 2 {
		t.Errorf("latest temperature = %v, want 2", latest.Temperature)
	}

	got, err := s.GetRange(loc, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(got) != 2 || got[0].Temperature != 0 || got[1].Temperature != 1 {
		t.Errorf("unexpected range result: %+v", got)
	}

	if _, err := s.GetRange(loc, base.Add(5*time.Hour), base.Add(6*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty range, got %v", err)
	}
}

func TestMemoryStoreRetention(t *testing.T) {
	now := time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(3, 2*time.Hour)
	s.now = func() time.Time { return now }
	loc := weather.Location{City: "Oslo", Country: "NO"}

	for i := 5; i >= 0; i-- {
		s.SaveSnapshot(loc, weather.WeatherSnapshot{Timestamp: now.Add(-time.Duration(i) * time.Hour)})
	}

	got, err := s.GetRange(loc, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 snapshots after retention, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("oldest kept = %v", got[0].Timestamp)
	}
}

func TestMemoryStoreKeepsNewestEvenIfStale(t *testing.T) {
	now := time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }
	loc := weather.Location{City: "Lima", Country: "PE"}

	s.SaveSnapshot(loc, weather.WeatherSnapshot{Timestamp: now.Add(-3 * time.Hour)})
	if _, err := s.GetLatest(loc); err != nil {
		t.Fatalf("expected newest snapshot to survive, got %v", err)
	}
	if locs := s.Locations(); len(locs) != 1 || locs[0].City != "Lima" {
		t.Errorf("Locations = %+v", locs)
	}
}

func TestMemoryStoreUnknownLocation(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if _, err := s.GetLatest(weather.Location{City: "Nowhere"}); !errors.Is(err, weather.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestForecastCache(t *testing.T) {
	now := time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)
	c := NewForecastCache(30 * time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Get("Paris:FR"); ok {
		t.Fatal("empty cache returned a report")
	}

	newer := weather.Report{ID: "b", FetchedAt: now.Add(-time.Minute)}
	older := weather.Report{ID: "a", FetchedAt: now.Add(-5 * time.Minute)}

	if !c.Put("Paris:FR", newer) {
		t.Fatal("first Put rejected")
	}
	if c.Put("Paris:FR", older) {
		t.Fatal("older report overwrote a newer one")
	}

	r, ok := c.Get("Paris:FR")
	if !ok || r.ID != "b" {
		t.Fatalf("Get = %+v, %v", r, ok)
	}

	now = now.Add(time.Hour)
	if _, ok := c.Get("Paris:FR"); ok {
		t.Fatal("expired report was served")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
}

func TestForecastCacheDropsExpired(t *testing.T) {
	now := time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)
	c := NewForecastCache(30 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put("48.8500,2.3500", weather.Report{ID: "a", FetchedAt: now})
	c.Put("51.5000,-0.1200", weather.Report{ID: "b", FetchedAt: now})

	now = now.Add(time.Hour)
	if _, ok := c.Get("48.8500,2.3500"); ok {
		t.Fatal("expired report was served")
	}
	if c.Len() != 1 {
		t.Errorf("Get left %d entries, want 1", c.Len())
	}

	c.Put("40.7100,-74.0100", weather.Report{ID: "c", FetchedAt: now})
	if c.Len() != 1 {
		t.Errorf("Put left %d entries, want 1", c.Len())
	}
	if r, ok := c.Get("40.7100,-74.0100"); !ok || r.ID != "c" {
		t.Errorf("Get = %+v, %v", r, ok)
	}
}
