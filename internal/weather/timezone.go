package weather

import (
	"fmt"
	"strings"
	"time"
)

// ZoneFromProvider selects the UTC offset reported by the forecast provider.
const ZoneFromProvider = "location"

// TimeZone decides in which zone forecast days are cut.
type TimeZone struct {
	loc          *time.Location
	fromProvider bool
}

// UTC is the default zone policy.
var UTC = TimeZone{loc: time.UTC}

// ParseTimeZone accepts "UTC", any IANA zone name, or "location".
func ParseTimeZone(s string) (TimeZone, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, "utc"):
		return UTC, nil
	case strings.EqualFold(s, ZoneFromProvider):
		return TimeZone{loc: time.UTC, fromProvider: true}, nil
	}

	loc, err := time.LoadLocation(s)
	if err != nil {
		return TimeZone{}, fmt.Errorf("invalid time zone %q: %w", s, err)
	}
	return TimeZone{loc: loc}, nil
}

// For returns the zone to use for a given feed. Under the provider policy a
// loadable ZoneName wins over the fixed UTCOffsetSeconds.
func (tz TimeZone) For(feed ForecastFeed) *time.Location {
	if tz.fromProvider {
		// A named zone follows daylight-saving changes inside the window.
		if feed.ZoneName != "" {
			if loc, err := time.LoadLocation(feed.ZoneName); err == nil {
				return loc
			}
		}
		return time.FixedZone(offsetName(feed.UTCOffsetSeconds), feed.UTCOffsetSeconds)
	}
	if tz.loc == nil {
		return time.UTC
	}
	return tz.loc
}

func (tz TimeZone) String() string {
	if tz.fromProvider {
		return ZoneFromProvider
	}
	if tz.loc == nil {
		return "UTC"
	}
	return tz.loc.String()
}

func offsetName(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
