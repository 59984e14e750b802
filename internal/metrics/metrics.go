// Package metrics exposes Prometheus collectors for the hub.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart_hub/internal/sunset"
	"smart_hub/internal/timeofday"
)

const namespace = "smarthub"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	samplesRecorded   prometheus.Counter
	settingsWrites    *prometheus.CounterVec
	sunsetLookups     *prometheus.CounterVec
	sunsetDuration    prometheus.Histogram
	decisionsPushed   *prometheus.CounterVec
}

// New builds the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		samplesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_recorded_total",
			Help:      "Total sensor samples stored.",
		}),
		settingsWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_writes_total",
			Help:      "Preference writes by result (created or updated).",
		}, []string{"result"}),
		sunsetLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sunset_lookups_total",
			Help:      "Sunset resolutions by outcome.",
		}, []string{"outcome"}),
		sunsetDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sunset_lookup_duration_seconds",
			Help:      "Histogram of sunset resolution latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		decisionsPushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_published_total",
			Help:      "Decisions pushed to the device channel by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.samplesRecorded,
		m.settingsWrites,
		m.sunsetLookups,
		m.sunsetDuration,
		m.decisionsPushed,
	)
	return m
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request count and latency keyed by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) SampleRecorded() {
	if m == nil {
		return
	}
	m.samplesRecorded.Inc()
}

func (m *Metrics) SettingsWritten(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.settingsWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) DecisionPublished(err error) {
	if m == nil {
		return
	}
	m.decisionsPushed.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) SunsetLookup(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.sunsetDuration.Observe(duration.Seconds())
	m.sunsetLookups.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

type instrumentedResolver struct {
	next sunset.Resolver
	m    *Metrics
}

// InstrumentResolver wraps r so every lookup is timed and counted.
func (m *Metrics) InstrumentResolver(r sunset.Resolver) sunset.Resolver {
	if m == nil {
		return r
	}
	return &instrumentedResolver{next: r, m: m}
}

func (r *instrumentedResolver) Sunset(ctx context.Context) (timeofday.Clock, error) {
	start := time.Now()
	c, err := r.next.Sunset(ctx)
	r.m.SunsetLookup(time.Since(start), err)
	return c, err
}
