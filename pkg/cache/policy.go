package cache

import (
	"fmt"
	"time"

	"github.com/borsalabs/borsafeed/pkg/types"
)

// Policy computes how long a cached value stays valid as of "now". Policies
// are pure functions of the supplied time: no hidden state, deterministic,
// testable with a fixed clock.
type Policy interface {
	TTLFor(now time.Time) time.Duration
}

// Fixed is a constant-TTL policy. Typical values: 60s for spot quotes, 1h for
// company lists and search results, 4-24h for bond and financial-statement
// data.
type Fixed time.Duration

// TTLFor returns the constant TTL.
func (f Fixed) TTLFor(time.Time) time.Duration {
	return time.Duration(f)
}

// TimeWindowed returns a short TTL inside a known upstream publication window
// and a long TTL outside it. TEFAS publishes fund prices in batches on
// weekday late mornings, so fund data is only worth refetching aggressively
// Monday-Friday between StartHour and EndHour local market time.
//
// EndHour is inclusive: with StartHour=10 and EndHour=14 the hot window
// covers 10:00:00 through 14:59:59 in Location.
type TimeWindowed struct {
	location  *time.Location
	startHour int
	endHour   int
	hotTTL    time.Duration
	coldTTL   time.Duration
}

// NewTimeWindowed builds a time-windowed policy. Invalid parameters are
// ConfigurationErrors: they abort startup rather than surfacing per-request.
func NewTimeWindowed(tz string, startHour, endHour int, hotTTL, coldTTL time.Duration) (*TimeWindowed, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &types.ConfigurationError{
			Field:   "timezone",
			Message: fmt.Sprintf("unknown timezone %q", tz),
		}
	}

	if startHour < 0 || startHour > 23 {
		return nil, &types.ConfigurationError{
			Field:   "hot_window_start",
			Message: fmt.Sprintf("hour %d out of range [0,23]", startHour),
		}
	}

	if endHour < 0 || endHour > 23 {
		return nil, &types.ConfigurationError{
			Field:   "hot_window_end",
			Message: fmt.Sprintf("hour %d out of range [0,23]", endHour),
		}
	}

	if startHour > endHour {
		return nil, &types.ConfigurationError{
			Field:   "hot_window",
			Message: fmt.Sprintf("start hour %d after end hour %d", startHour, endHour),
		}
	}

	if hotTTL <= 0 || coldTTL <= 0 {
		return nil, &types.ConfigurationError{
			Field:   "ttl",
			Message: "hot and cold TTLs must be positive",
		}
	}

	return &TimeWindowed{
		location:  loc,
		startHour: startHour,
		endHour:   endHour,
		hotTTL:    hotTTL,
		coldTTL:   coldTTL,
	}, nil
}

// TTLFor returns the hot TTL when now falls on a weekday inside the hot
// window (end hour inclusive) in the policy's location, else the cold TTL.
func (p *TimeWindowed) TTLFor(now time.Time) time.Duration {
	local := now.In(p.location)

	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return p.coldTTL
	}

	h := local.Hour()
	if h >= p.startHour && h <= p.endHour {
		return p.hotTTL
	}

	return p.coldTTL
}
