package cache

import (
	"testing"
	"time"

	"github.com/borsalabs/borsafeed/pkg/types"
)

const istanbul = "Europe/Istanbul"

func mustWindowed(t *testing.T) *TimeWindowed {
	t.Helper()

	p, err := NewTimeWindowed(istanbul, 10, 14, 15*time.Minute, 4*time.Hour)
	if err != nil {
		t.Fatalf("failed to build policy: %v", err)
	}
	return p
}

func istanbulTime(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()

	loc, err := time.LoadLocation(istanbul)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func TestFixed_TTLFor(t *testing.T) {
	p := Fixed(60 * time.Second)

	if got := p.TTLFor(time.Now()); got != 60*time.Second {
		t.Errorf("expected 60s, got %v", got)
	}
}

func TestTimeWindowed_TTLFor(t *testing.T) {
	p := mustWindowed(t)

	// 2026-01-14 is a Wednesday, 2026-01-17 a Saturday.
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"weekday-inside-window", istanbulTime(t, 2026, time.January, 14, 11, 0), 15 * time.Minute},
		{"saturday-inside-hours", istanbulTime(t, 2026, time.January, 17, 11, 0), 4 * time.Hour},
		{"weekday-after-window", istanbulTime(t, 2026, time.January, 14, 16, 0), 4 * time.Hour},
		{"weekday-before-window", istanbulTime(t, 2026, time.January, 14, 9, 59), 4 * time.Hour},
		{"window-start-hour", istanbulTime(t, 2026, time.January, 14, 10, 0), 15 * time.Minute},
		{"end-hour-is-inclusive", istanbulTime(t, 2026, time.January, 14, 14, 30), 15 * time.Minute},
		{"hour-after-end-is-cold", istanbulTime(t, 2026, time.January, 14, 15, 0), 4 * time.Hour},
		{"sunday", istanbulTime(t, 2026, time.January, 18, 12, 0), 4 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.TTLFor(tt.now); got != tt.want {
				t.Errorf("TTLFor(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestTimeWindowed_ConvertsFromOtherZones(t *testing.T) {
	p := mustWindowed(t)

	// 08:00 UTC on a Wednesday is 11:00 in Istanbul: inside the window even
	// though the UTC hour is not.
	now := time.Date(2026, time.January, 14, 8, 0, 0, 0, time.UTC)
	if got := p.TTLFor(now); got != 15*time.Minute {
		t.Errorf("expected hot TTL for 08:00 UTC Wednesday, got %v", got)
	}
}

func TestNewTimeWindowed_Validation(t *testing.T) {
	tests := []struct {
		name       string
		tz         string
		start, end int
		hot, cold  time.Duration
	}{
		{"bad-timezone", "Mars/Olympus", 10, 14, time.Minute, time.Hour},
		{"start-out-of-range", istanbul, -1, 14, time.Minute, time.Hour},
		{"end-out-of-range", istanbul, 10, 24, time.Minute, time.Hour},
		{"start-after-end", istanbul, 15, 10, time.Minute, time.Hour},
		{"zero-hot-ttl", istanbul, 10, 14, 0, time.Hour},
		{"zero-cold-ttl", istanbul, 10, 14, time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeWindowed(tt.tz, tt.start, tt.end, tt.hot, tt.cold)
			if err == nil {
				t.Fatal("expected a configuration error")
			}

			var cfgErr *types.ConfigurationError
			if !asConfigErr(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %T: %v", err, err)
			}
		})
	}
}

func asConfigErr(err error, target **types.ConfigurationError) bool {
	ce, ok := err.(*types.ConfigurationError)
	if ok {
		*target = ce
	}
	return ok
}
