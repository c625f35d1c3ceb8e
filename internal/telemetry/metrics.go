package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed at /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	cardViews       *prometheus.CounterVec
	conversions     *prometheus.CounterVec
	refreshRuns     *prometheus.CounterVec
	refreshUpdated  prometheus.Counter
}

// NewMetrics registers the service collectors on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	cardViews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gymcard_card_views_total",
		Help: "Member card views by badge state",
	}, []string{"badge", "scanned"})

	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gymcard_calendar_requests_total",
		Help: "Calendar endpoint requests by operation and outcome",
	}, []string{"operation", "outcome"})

	refreshRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gymcard_refresh_runs_total",
		Help: "Remaining-days refresh runs by outcome",
	}, []string{"outcome"})

	refreshUpdated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gymcard_refresh_members_updated_total",
		Help: "Members whose stored remaining figure was rewritten",
	})

	registry.MustRegister(
		requestDuration, cardViews, conversions, refreshRuns, refreshUpdated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		cardViews:       cardViews,
		conversions:     conversions,
		refreshRuns:     refreshRuns,
		refreshUpdated:  refreshUpdated,
	}
}

// Handler serves the Prometheus exposition format through Fiber
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
	}
	return adaptor.HTTPHandler(m.handler)
}

// Middleware observes request latency per matched route
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.requestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// CardViewed counts a rendered card by its badge
func (m *Metrics) CardViewed(badge string, scanned bool) {
	if m == nil {
		return
	}
	m.cardViews.WithLabelValues(badge, strconv.FormatBool(scanned)).Inc()
}

// CalendarRequest counts a calendar endpoint call
func (m *Metrics) CalendarRequest(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.conversions.WithLabelValues(operation, outcome).Inc()
}

// RefreshRun records one refresher pass
func (m *Metrics) RefreshRun(updated int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.refreshRuns.WithLabelValues(outcome).Inc()
	m.refreshUpdated.Add(float64(updated))
}
