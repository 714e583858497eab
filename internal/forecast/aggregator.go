// Package forecast turns a provider's flat 3-hour forecast series into
// per-day groups with daily highlights.
//
// Everything here is a pure, synchronous transformation: the same input
// always yields an equal result and nothing is shared between calls.
package forecast

import "time"

// Aggregator assembles forecasts in a fixed time zone.
type Aggregator struct {
	loc *time.Location
}

// NewAggregator returns an Aggregator that derives calendar dates and labels
// in loc. A nil loc means UTC.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

// Location returns the time zone used for bucketing.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Assemble normalizes every raw sample, groups them by calendar date and
// summarizes each day. Callers own the returned value.
func (a *Aggregator) Assemble(raw []RawSample) Forecast {
	samples := make([]NormalizedSample, 0, len(raw))
	for _, r := range raw {
		samples = append(samples, Normalize(r, a.loc))
	}

	buckets := BucketByDay(samples)
	days := make([]Day, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, Day{
			Date:    b.Date,
			Label:   b.Label,
			Summary: Summarize(b.Samples),
			Samples: b.Samples,
		})
	}

	return Forecast{Samples: samples, Days: days}
}

// Assemble is a convenience wrapper bucketing in UTC.
func Assemble(raw []RawSample) Forecast {
	return NewAggregator(time.UTC).Assemble(raw)
}
