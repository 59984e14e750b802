// Package timeofday handles wall-clock times of day ("HH:MM:SS") and the
// compact interval strings ("1h30m") used for light schedules.
package timeofday

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const (
	day         = 24 * time.Hour
	clockLayout = "15:04:05"
)

var (
	ErrInvalidInterval = errors.New("interval must look like 1h30m, 45m or 10s")
	ErrInvalidClock    = errors.New("time must be HH:MM:SS")
)

// intervalPattern accepts any subset of h, m, s segments in that order.
var intervalPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// ParseInterval parses strings like "1h30m", "45s" or "2h". An empty string
// is a zero interval.
func ParseInterval(s string) (time.Duration, error) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
	}

	var d time.Duration
	for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil || n > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("%q: out of range: %w", s, ErrInvalidInterval)
		}
		part := time.Duration(n) * unit
		if d > math.MaxInt64-part {
			return 0, fmt.Errorf("%q: out of range: %w", s, ErrInvalidInterval)
		}
		d += part
	}
	return d, nil
}

// Clock is a time of day, stored as the offset from midnight in [0, 24h).
type Clock time.Duration

// ParseClock parses "HH:MM:SS" (24-hour).
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidClock)
	}
	return FromTime(t), nil
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromTime returns the wall-clock part of t in t's location.
func FromTime(t time.Time) Clock {
	h, m, s := t.Clock()
	return Clock(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// Add returns c shifted by d, wrapping around midnight.
func (c Clock) Add(d time.Duration) Clock {
	v := (time.Duration(c) + d) % day
	if v < 0 {
		v += day
	}
	return Clock(v)
}

// String formats the clock as "HH:MM:SS".
func (c Clock) String() string {
	d := time.Duration(c)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

// Within reports whether c lies in the half-open window [on, off). A window
// whose end is before its start spans midnight. An empty window (on == off)
// contains nothing.
func (c Clock) Within(on, off Clock) bool {
	switch {
	case on == off:
		return false
	case on < off:
		return on <= c && c < off
	default:
		return c >= on || c < off
	}
}
