// Package metrics exposes Prometheus instrumentation for the roster service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "raidledger"

// Collector owns the service's Prometheus metrics.
type Collector struct {
	autoFillRuns     *prometheus.CounterVec
	seatsFilled      *prometheus.CounterVec
	seatsUnfilled    *prometheus.CounterVec
	autoFillDuration prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

// New creates the collector and registers everything on reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		autoFillRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autofill",
			Name:      "runs_total",
			Help:      "Total auto-fill engine invocations by event mode.",
		}, []string{"mode"}),
		seatsFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autofill",
			Name:      "seats_filled_total",
			Help:      "Total seats filled by auto-fill runs.",
		}, []string{"mode"}),
		seatsUnfilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autofill",
			Name:      "seats_unfilled_total",
			Help:      "Open seats that remained unfilled after auto-fill runs.",
		}, []string{"mode"}),
		autoFillDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "autofill",
			Name:      "duration_seconds",
			Help:      "Wall time of auto-fill runs, snapshot build included.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.autoFillRuns,
		c.seatsFilled,
		c.seatsUnfilled,
		c.autoFillDuration,
		c.httpRequests,
	)
	return c
}

// ObserveAutoFill records one engine run. mode is "roles" or "generic";
// open is the number of open seats before the run.
func (c *Collector) ObserveAutoFill(mode string, filled, open int, seconds float64) {
	c.autoFillRuns.WithLabelValues(mode).Inc()
	c.seatsFilled.WithLabelValues(mode).Add(float64(filled))
	if remaining := open - filled; remaining > 0 {
		c.seatsUnfilled.WithLabelValues(mode).Add(float64(remaining))
	}
	c.autoFillDuration.Observe(seconds)
}

// ObserveRequest records one routed HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
