package store

import (
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// ErrNotFound is returned when no data is available for a given location.
var ErrNotFound = weather.ErrNoData

// SnapshotHistory holds a time-ordered list of current-conditions snapshots for a location.
type SnapshotHistory struct {
	Location  weather.Location
	Snapshots []weather.WeatherSnapshot
}

// MemoryStore is a concurrency-safe in-memory store of current-conditions history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*SnapshotHistory

	maxHistory int           // max number of snapshots per location
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited; the same goes for maxAge.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot inserts a snapshot in timestamp order and enforces retention.
// The newest snapshot of a location is never evicted by age.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{Location: loc}
		s.data[key] = history
	}

	snaps := history.Snapshots
	i := sort.Search(len(snaps), func(i int) bool {
		return snaps[i].Timestamp.After(snapshot.Timestamp)
	})
	snaps = append(snaps, weather.WeatherSnapshot{})
	copy(snaps[i+1:], snaps[i:])
	snaps[i] = snapshot

	if s.maxHistory > 0 && len(snaps) > s.maxHistory {
		snaps = snaps[len(snaps)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		drop := sort.Search(len(snaps), func(i int) bool {
			return !snaps[i].Timestamp.Before(cutoff)
		})
		if drop == len(snaps) {
			drop = len(snaps) - 1
		}
		snaps = snaps[drop:]
	}

	history.Snapshots = snaps
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[loc.Key()]
	if !ok || len(history.Snapshots) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[loc.Key()]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.WeatherSnapshot
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Locations lists every location with stored history.
func (s *MemoryStore) Locations() []weather.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Location, 0, len(s.data))
	for _, h := range s.data {
		out = append(out, h.Location)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
