package prefs

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/i474232898/weather-forecast-aggregation/internal/theme"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(openTestDB(t), 3)

	got, err := h.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty Load = %v, %v", got, err)
	}

	for _, term := range []string{"Paris", "Oslo", "Lima", "Oslo", "Rome"} {
		if _, err := h.Add(ctx, term); err != nil {
			t.Fatalf("Add(%s): %v", term, err)
		}
	}

	got, err = h.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"Rome", "Oslo", "Lima"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("history = %v, want %v", got, want)
	}

	if got, _ := h.Add(ctx, "   "); !reflect.DeepEqual(got, want) {
		t.Errorf("blank term changed history: %v", got)
	}

	if err := h.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := h.Load(ctx); len(got) != 0 {
		t.Errorf("history after clear = %v", got)
	}
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	f := NewFavorites(openTestDB(t))

	paris := weather.Location{City: "Paris", Country: "FR"}
	oslo := weather.NewCoordinates(59.91, 10.75)
	oslo.City, oslo.Country = "Oslo", "NO"

	if _, err := f.Add(ctx, paris); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.Add(ctx, oslo); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := f.Add(ctx, weather.Location{City: "Paris", Country: "FR"})
	if err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("duplicate favorite was stored: %+v", got)
	}

	loaded, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded[1].HasCoordinates() || *loaded[1].Lat != 59.91 {
		t.Errorf("coordinates not persisted: %+v", loaded[1])
	}

	got, err = f.Remove(ctx, paris)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(got) != 1 || got[0].City != "Oslo" {
		t.Errorf("after remove = %+v", got)
	}
}

func TestThemeMode(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(openTestDB(t))

	mode, err := s.ThemeMode(ctx)
	if err != nil || mode != theme.ModeSystem {
		t.Fatalf("default mode = %q, %v", mode, err)
	}

	if err := s.SetThemeMode(ctx, theme.ModeDark); err != nil {
		t.Fatalf("SetThemeMode: %v", err)
	}
	if mode, _ := s.ThemeMode(ctx); mode != theme.ModeDark {
		t.Errorf("mode = %q, want dark", mode)
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	h, f := NewHistory(db, 0), NewFavorites(db)

	for i := 0; i < 12; i++ {
		if _, err := h.Add(ctx, fmt.Sprintf("city-%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if got, _ := h.Load(ctx); len(got) != DefaultHistoryLimit {
		t.Errorf("default limit not applied: %d entries", len(got))
	}
	if _, err := f.Add(ctx, weather.Location{City: "Lima", Country: "PE"}); err != nil {
		t.Fatal(err)
	}

	if err := ClearAll(ctx, h, f); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if got, _ := h.Load(ctx); len(got) != 0 {
		t.Error("history not cleared")
	}
	if got, _ := f.Load(ctx); len(got) != 0 {
		t.Error("favorites not cleared")
	}
}

func TestUnreadableValueIsEmpty(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.db.ExecContext(ctx, `INSERT INTO preferences(key, value, updated_at) VALUES(?, ?, ?)`,
		keySearchHistory, "{not json", "2024-01-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}

	got, err := NewHistory(db, 0).Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("Load = %v, %v", got, err)
	}
}

func TestRebind(t *testing.T) {
	d := &DB{driver: DriverPostgres}
	if got := d.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("rebind = %q", got)
	}
	d.driver = DriverSQLite
	if got := d.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", ""); err == nil {
		t.Fatal("expected error")
	}
}
