package prefs

import (
	"context"
	"strings"

	"github.com/i474232898/weather-forecast-aggregation/internal/theme"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const (
	keySearchHistory = "searchHistory"
	keyFavorites     = "favoriteLocations"
	keyThemeMode     = "themeMode"
)

// DefaultHistoryLimit is how many searches are remembered.
const DefaultHistoryLimit = 10

// History is the most-recent-first list of search terms.
type History struct {
	db    *DB
	limit int
}

// NewHistory returns a history capped at limit entries (DefaultHistoryLimit if <= 0).
func NewHistory(db *DB, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{db: db, limit: limit}
}

func (h *History) Load(ctx context.Context) ([]string, error) {
	return loadList[string](ctx, h.db, keySearchHistory)
}

// Add moves term to the front, dropping duplicates and anything past the limit.
func (h *History) Add(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)

	h.db.mu.Lock()
	defer h.db.mu.Unlock()

	current, err := h.Load(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return current, nil
	}

	updated := make([]string, 0, len(current)+1)
	updated = append(updated, term)
	for _, t := range current {
		if t != term {
			updated = append(updated, t)
		}
	}
	if len(updated) > h.limit {
		updated = updated[:h.limit]
	}

	if err := h.db.put(ctx, keySearchHistory, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (h *History) Clear(ctx context.Context) error {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	return h.db.put(ctx, keySearchHistory, []string{})
}

// Favorites is the user's saved locations, unique by city and country.
type Favorites struct {
	db *DB
}

func NewFavorites(db *DB) *Favorites {
	return &Favorites{db: db}
}

func (f *Favorites) Load(ctx context.Context) ([]weather.Location, error) {
	return loadList[weather.Location](ctx, f.db, keyFavorites)
}

// Add appends loc unless an entry with the same city and country exists.
func (f *Favorites) Add(ctx context.Context, loc weather.Location) ([]weather.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	current, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, fav := range current {
		if fav.SameCity(loc) {
			return current, nil
		}
	}

	updated := append(current, loc)
	if err := f.db.put(ctx, keyFavorites, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove drops every entry with loc's city and country.
func (f *Favorites) Remove(ctx context.Context, loc weather.Location) ([]weather.Location, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	current, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}

	updated := make([]weather.Location, 0, len(current))
	for _, fav := range current {
		if !fav.SameCity(loc) {
			updated = append(updated, fav)
		}
	}

	if err := f.db.put(ctx, keyFavorites, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (f *Favorites) Clear(ctx context.Context) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.put(ctx, keyFavorites, []weather.Location{})
}

// Settings holds scalar preferences.
type Settings struct {
	db *DB
}

func NewSettings(db *DB) *Settings {
	return &Settings{db: db}
}

// ThemeMode returns the saved mode, system when unset.
func (s *Settings) ThemeMode(ctx context.Context) (theme.Mode, error) {
	var raw string
	found, err := s.db.get(ctx, keyThemeMode, &raw)
	if err != nil {
		return "", err
	}
	if !found {
		return theme.ModeSystem, nil
	}
	mode, err := theme.ParseMode(raw)
	if err != nil {
		return theme.ModeSystem, nil
	}
	return mode, nil
}

func (s *Settings) SetThemeMode(ctx context.Context, mode theme.Mode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.put(ctx, keyThemeMode, string(mode))
}

// ClearAll wipes search history and favorites.
func ClearAll(ctx context.Context, h *History, f *Favorites) error {
	if err := h.Clear(ctx); err != nil {
		return err
	}
	return f.Clear(ctx)
}
