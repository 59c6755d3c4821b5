package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application metric vectors. A single instance is
// registered at startup and shared through fx.
type Metrics struct {
	// Total HTTP requests (method, path, status_code)
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency (method, path)
	HTTPRequestDuration *prometheus.HistogramVec

	// Reservation engine outcomes (operation: reserve/purchase/cancel,
	// status: success, exhausted, expired, invalid_transition, not_found, error)
	ReservationsTotal *prometheus.CounterVec

	// Sweep runs (status: completed, skipped, failed)
	SweepRunsTotal *prometheus.CounterVec

	// Holds released back to inventory by the sweeper
	SweepReleasedTotal prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation engine operations",
			},
			[]string{"operation", "status"},
		),
		SweepRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweep_runs_total",
				Help: "Total number of sweeper runs",
			},
			[]string{"status"},
		),
		SweepReleasedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sweep_released_holds_total",
				Help: "Total number of expired holds released by the sweeper",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.SweepRunsTotal,
		m.SweepReleasedTotal,
	)

	return m
}
