package sunset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"smart_hub"
)

var kingston = Location{Latitude: 17.97787, Longitude: -76.77339}

func TestAPIResolver_ParsesTwelveHourSunset(t *testing.T) {
	var gotLat, gotLng string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLat, gotLng = r.URL.Query().Get("lat"), r.URL.Query().Get("lng")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":{"sunrise":"5:40:01 AM","sunset":"6:12:34 PM"},"status":"OK"}`))
	}))
	defer srv.Close()

	r := NewAPIResolver(srv.URL, kingston)
	c, err := r.Sunset(context.Background())
	if err != nil {
		t.Fatalf("Sunset: %v", err)
	}
	if c.String() != "18:12:34" {
		t.Fatalf("sunset = %s, want 18:12:34", c)
	}
	if gotLat != "17.97787" || gotLng != "-76.77339" {
		t.Fatalf("unexpected query lat=%q lng=%q", gotLat, gotLng)
	}
}

func TestAPIResolver_RetriesOnceThenUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewAPIResolver(srv.URL, kingston).Sunset(context.Background())
	if !errors.Is(err, smart_hub.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
}

func TestAPIResolver_RetryRecovers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results":{"sunset":"7:01:00 PM"},"status":"OK"}`))
	}))
	defer srv.Close()

	c, err := NewAPIResolver(srv.URL, kingston).Sunset(context.Background())
	if err != nil {
		t.Fatalf("Sunset: %v", err)
	}
	if c.String() != "19:01:00" {
		t.Fatalf("sunset = %s", c)
	}
}

func TestAPIResolver_UnexpectedShapes(t *testing.T) {
	cases := map[string]string{
		"not json":       `<html>`,
		"missing sunset": `{"results":{},"status":"OK"}`,
		"bad format":     `{"results":{"sunset":"18:12"},"status":"OK"}`,
		"api error":      `{"results":{"sunset":"6:00:00 PM"},"status":"INVALID_REQUEST"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewAPIResolver(srv.URL, kingston, WithRetries(0)).Sunset(context.Background())
			if !errors.Is(err, smart_hub.ErrDependencyUnavailable) {
				t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
			}
		})
	}
}

func TestAPIResolver_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewAPIResolver(srv.URL, kingston, WithTimeout(50*time.Millisecond), WithRetries(0)).Sunset(context.Background())
	if !errors.Is(err, smart_hub.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout was not applied")
	}
}
