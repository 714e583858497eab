package forecast

import (
	"reflect"
	"testing"
	"time"
)

func kelvin(c float64) float64 { return c + 273.15 }

func sampleAt(ts time.Time, tempC float64, humidity int, wind float64, pressure int) RawSample {
	return RawSample{
		TimestampUTC:             ts.Unix(),
		TemperatureKelvin:        kelvin(tempC),
		FeelsLikeKelvin:          kelvin(tempC),
		HumidityPercent:          humidity,
		WindSpeedMetersPerSecond: wind,
		PressureHPa:              pressure,
		ConditionCode:            "10d",
		ConditionDescription:     "light rain",
	}
}

func TestKelvinToCelsius(t *testing.T) {
	tests := []struct {
		k    float64
		want int
	}{
		{300.15, 27},
		{273.15, 0},
		{273.65, 1},  // half-way rounds away from zero
		{272.65, -1}, // and symmetric below zero
		{273.64, 0},
		{288.71, 16},
	}

	for _, tt := range tests {
		if got := KelvinToCelsius(tt.k); got != tt.want {
			t.Errorf("KelvinToCelsius(%v) = %d, want %d", tt.k, got, tt.want)
		}
	}
}

func TestNormalizeLabels(t *testing.T) {
	ts := time.Date(2024, time.March, 11, 15, 0, 0, 0, time.UTC)
	n := Normalize(sampleAt(ts, 12, 70, 3.2, 1015), nil)

	if n.DateLabel != "Mon, Mar 11" {
		t.Errorf("DateLabel = %q", n.DateLabel)
	}
	if n.TimeLabel != "03:00 PM" {
		t.Errorf("TimeLabel = %q", n.TimeLabel)
	}
	if n.Date != (Date{Year: 2024, Month: time.March, Day: 11}) {
		t.Errorf("Date = %v", n.Date)
	}
	if n.TemperatureC != 12 || n.FeelsLikeC != 12 {
		t.Errorf("temperatures = %d/%d, want 12/12", n.TemperatureC, n.FeelsLikeC)
	}
	if n.HumidityPercent != 70 || n.PressureHPa != 1015 || n.WindSpeedMS != 3.2 {
		t.Errorf("passthrough fields not preserved: %+v", n)
	}
}

func TestNormalizeUsesLocation(t *testing.T) {
	// 23:00 UTC is already the next day in UTC+2.
	ts := time.Date(2024, time.March, 11, 23, 0, 0, 0, time.UTC)
	loc := time.FixedZone("EET", 2*60*60)

	n := Normalize(sampleAt(ts, 5, 50, 1, 1000), loc)
	if n.Date.Day != 12 {
		t.Fatalf("expected date in UTC+2 to be the 12th, got %v", n.Date)
	}
	if n.TimeLabel != "01:00 AM" {
		t.Errorf("TimeLabel = %q", n.TimeLabel)
	}
}

func TestBucketByDayPreservesAllSamples(t *testing.T) {
	base := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	var raw []RawSample
	for i := 0; i < 40; i++ {
		raw = append(raw, sampleAt(base.Add(time.Duration(i)*3*time.Hour), 10, 50, 1, 1010))
	}

	var normalized []NormalizedSample
	for _, r := range raw {
		normalized = append(normalized, Normalize(r, time.UTC))
	}

	buckets := BucketByDay(normalized)
	total := 0
	for _, b := range buckets {
		total += len(b.Samples)
	}
	if total != len(raw) {
		t.Fatalf("buckets hold %d samples, want %d", total, len(raw))
	}
	if len(buckets) != 5 {
		t.Fatalf("expected 5 days, got %d", len(buckets))
	}
}

func TestBucketByDayFirstOccurrenceOrder(t *testing.T) {
	d1 := time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	var in []NormalizedSample
	for _, ts := range []time.Time{d1, d1.Add(time.Hour), d2, d1.Add(2 * time.Hour), d3} {
		in = append(in, Normalize(sampleAt(ts, 1, 1, 1, 1), time.UTC))
	}

	buckets := BucketByDay(in)
	want := []Date{DateOf(d1), DateOf(d2), DateOf(d3)}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(buckets), len(want))
	}
	for i, b := range buckets {
		if b.Date != want[i] {
			t.Errorf("bucket %d = %v, want %v", i, b.Date, want[i])
		}
	}
	if len(buckets[0].Samples) != 3 {
		t.Errorf("first bucket has %d samples, want 3", len(buckets[0].Samples))
	}
}

func TestBucketByDayEmpty(t *testing.T) {
	buckets := BucketByDay(nil)
	if buckets == nil || len(buckets) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", buckets)
	}
}

func TestSummarize(t *testing.T) {
	ts := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	temps := []float64{10, 15, 12}
	humidity := []int{50, 60, 40}
	wind := []float64{2.0, 3.5, 1.0}
	pressure := []int{1010, 1012, 1008}

	var samples []NormalizedSample
	for i := range temps {
		r := sampleAt(ts.Add(time.Duration(i)*3*time.Hour), temps[i], humidity[i], wind[i], pressure[i])
		samples = append(samples, Normalize(r, time.UTC))
	}

	got := Summarize(samples)
	want := DaySummary{
		MinTemperature: 10,
		MaxTemperature: 15,
		AvgHumidity:    50,
		AvgWindSpeed:   2.2,
		MaxWindSpeed:   3.5,
		AvgPressure:    1010,
	}
	if got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
}

func TestSummarizeEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty bucket")
		}
	}()
	Summarize(nil)
}

func TestAssembleEmpty(t *testing.T) {
	f := Assemble(nil)
	if len(f.Samples) != 0 || len(f.Days) != 0 {
		t.Fatalf("expected empty forecast, got %+v", f)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	base := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	var raw []RawSample
	for i := 0; i < 12; i++ {
		raw = append(raw, sampleAt(base.Add(time.Duration(i)*3*time.Hour), float64(i), 40+i, float64(i)/2, 1000+i))
	}

	agg := NewAggregator(time.UTC)
	first := agg.Assemble(raw)
	second := agg.Assemble(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("Assemble returned different results for the same input")
	}
}

func TestAssembleTwoDays(t *testing.T) {
	dayA := time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC)
	dayB := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

	raw := []RawSample{
		sampleAt(dayA, 10, 50, 2, 1010),
		sampleAt(dayA.Add(3*time.Hour), 14, 60, 4, 1012),
		sampleAt(dayA.Add(6*time.Hour), 12, 70, 3, 1014),
		sampleAt(dayB, 3, 90, 1, 1020),
		sampleAt(dayB.Add(3*time.Hour), 1, 80, 6, 1022),
	}

	f := Assemble(raw)
	if len(f.Samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(f.Samples))
	}
	if len(f.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(f.Days))
	}
	if f.Days[0].Date != DateOf(dayA) || f.Days[1].Date != DateOf(dayB) {
		t.Fatalf("unexpected day order: %v, %v", f.Days[0].Date, f.Days[1].Date)
	}
	if f.Days[0].Label != "Mon, Mar 11" {
		t.Errorf("day A label = %q", f.Days[0].Label)
	}

	a := f.Days[0].Summary
	if a.MinTemperature != 10 || a.MaxTemperature != 14 || a.AvgHumidity != 60 || a.AvgPressure != 1012 || a.MaxWindSpeed != 4 || a.AvgWindSpeed != 3 {
		t.Errorf("day A summary = %+v", a)
	}
	b := f.Days[1].Summary
	if b.MinTemperature != 1 || b.MaxTemperature != 3 || b.AvgHumidity != 85 || b.AvgPressure != 1021 || b.MaxWindSpeed != 6 || b.AvgWindSpeed != 3.5 {
		t.Errorf("day B summary = %+v", b)
	}

	if _, ok := f.Day(DateOf(dayB)); !ok {
		t.Error("Day lookup failed for day B")
	}
}

func TestForecastTruncate(t *testing.T) {
	base := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	var raw []RawSample
	for i := 0; i < 24; i++ {
		raw = append(raw, sampleAt(base.Add(time.Duration(i)*3*time.Hour), 10, 50, 1, 1010))
	}

	f := Assemble(raw).Truncate(2)
	if len(f.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(f.Days))
	}
	if len(f.Samples) != 16 {
		t.Fatalf("expected 16 samples, got %d", len(f.Samples))
	}
}

func TestDateText(t *testing.T) {
	d := Date{Year: 2024, Month: time.March, Day: 5}
	b, err := d.MarshalText()
	if err != nil || string(b) != "2024-03-05" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}

	var back Date
	if err := back.UnmarshalText(b); err != nil || back != d {
		t.Fatalf("UnmarshalText = %v, %v", back, err)
	}
}
