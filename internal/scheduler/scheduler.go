package scheduler

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// Refresher is the slice of weather.Service the scheduler drives.
type Refresher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
	RefreshForecast(ctx context.Context, loc weather.Location) (weather.Report, error)
}

// FavoritesSource supplies user-saved locations at each run.
type FavoritesSource interface {
	Load(ctx context.Context) ([]weather.Location, error)
}

// Scheduler periodically refreshes current conditions and forecasts for the
// configured locations and the user's favorites.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	favorites FavoritesSource
	locations []weather.Location
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. favorites may be nil.
func New(locations []weather.Location, interval time.Duration, service Refresher, favorites FavoritesSource) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		favorites: favorites,
		locations: locations,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 && s.favorites == nil {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every tracked location concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	locs := s.targets(ctx)
	if len(locs) == 0 {
		return
	}
	log.Printf("scheduler: running refresh job for %d locations", len(locs))

	var wg sync.WaitGroup
	for _, loc := range locs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, loc); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
			}
			if _, err := s.service.RefreshForecast(ctx, loc); err != nil {
				log.Printf("scheduler: forecast refresh failed for %s: %v", loc.Key(), err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed refresh job")
}

// targets merges configured locations with favorites, first occurrence wins.
func (s *Scheduler) targets(ctx context.Context) []weather.Location {
	out := make([]weather.Location, 0, len(s.locations))
	seen := make(map[string]bool)
	add := func(loc weather.Location) {
		if loc.City == "" && !loc.HasCoordinates() {
			return
		}
		k := strings.ToLower(loc.Key())
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, loc)
	}

	for _, loc := range s.locations {
		add(loc)
	}
	if s.favorites != nil {
		favs, err := s.favorites.Load(ctx)
		if err != nil {
			log.Printf("scheduler: could not load favorites: %v", err)
		}
		for _, loc := range favs {
			add(loc)
		}
	}
	return out
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
