package timeofday

import (
	"errors"
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1h30m", 90 * time.Minute},
		{"45s", 45 * time.Second},
		{"", 0},
		{"2h", 2 * time.Hour},
		{"1h2m3s", time.Hour + 2*time.Minute + 3*time.Second},
		{"90m", 90 * time.Minute},
		{"1h15s", time.Hour + 15*time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseInterval(tc.in)
			if err != nil {
				t.Fatalf("ParseInterval(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseInterval(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseInterval_Invalid(t *testing.T) {
	for _, in := range []string{"abc", "30m1h", "1.5h", "h", "1d", " 1h", "3000000h", "2562047h48m", "99999999999999999999s"} {
		if _, err := ParseInterval(in); !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("ParseInterval(%q) err = %v, want ErrInvalidInterval", in, err)
		}
	}
}

func TestParseInterval_LargestDuration(t *testing.T) {
	d, err := ParseInterval("2562047h47m16s")
	if err != nil {
		t.Fatalf("ParseInterval at the duration limit: %v", err)
	}
	if d <= 0 {
		t.Fatalf("expected a positive duration, got %v", d)
	}
}

func TestClock_ParseAndFormat(t *testing.T) {
	c, err := ParseClock("18:05:09")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	if c.String() != "18:05:09" {
		t.Fatalf("String() = %q", c.String())
	}
	if _, err := ParseClock("6pm"); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
	if _, err := ParseClock("25:00:00"); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock for 25:00:00, got %v", err)
	}
}

func TestClock_Add(t *testing.T) {
	on := MustParseClock("18:00:00")
	if got := on.Add(2 * time.Hour).String(); got != "20:00:00" {
		t.Fatalf("18:00:00 + 2h = %s, want 20:00:00", got)
	}
	late := MustParseClock("23:30:00")
	if got := late.Add(time.Hour).String(); got != "00:30:00" {
		t.Fatalf("23:30:00 + 1h = %s, want 00:30:00", got)
	}
	if got := late.Add(48 * time.Hour).String(); got != "23:30:00" {
		t.Fatalf("23:30:00 + 48h = %s, want 23:30:00", got)
	}
}

func TestClock_Within(t *testing.T) {
	on := MustParseClock("18:00:00")
	off := MustParseClock("20:00:00")
	cases := []struct {
		now  string
		want bool
	}{
		{"19:00:00", true},
		{"18:00:00", true},
		{"20:00:00", false},
		{"17:59:59", false},
	}
	for _, tc := range cases {
		if got := MustParseClock(tc.now).Within(on, off); got != tc.want {
			t.Fatalf("Within(%s) = %v, want %v", tc.now, got, tc.want)
		}
	}

	// window spanning midnight
	on, off = MustParseClock("23:00:00"), MustParseClock("01:00:00")
	for now, want := range map[string]bool{
		"23:30:00": true,
		"00:30:00": true,
		"01:00:00": false,
		"22:59:59": false,
	} {
		if got := MustParseClock(now).Within(on, off); got != want {
			t.Fatalf("wrapped Within(%s) = %v, want %v", now, got, want)
		}
	}

	if MustParseClock("12:00:00").Within(on, on) {
		t.Fatalf("empty window must contain nothing")
	}
}

func TestFromTime(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, 3, 1, 19, 4, 5, 999, loc)
	if got := FromTime(ts).String(); got != "19:04:05" {
		t.Fatalf("FromTime = %s", got)
	}
}
