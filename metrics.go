package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors served on /metrics. Each Handler
// gets its own registry so tests can build several without collisions.
type metrics struct {
	registry *prometheus.Registry

	calculations     *prometheus.CounterVec
	steps            *prometheus.CounterVec
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,

		calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_calculations_total",
			Help: "Completed calorie calculations by sex and goal",
		}, []string{"sex", "goal"}),

		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_step_submissions_total",
			Help: "Funnel step submissions by step and outcome",
		}, []string{"step", "outcome"}),

		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_checkouts_total",
			Help: "Checkout requests by plan and outcome",
		}, []string{"plan", "outcome"}),

		checkoutDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "funnel_checkout_request_duration_seconds",
			Help:    "Latency of calls to the payment API",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Step outcomes.
const (
	outcomeOK           = "ok"
	outcomeInvalid      = "invalid"
	outcomeMissingState = "missing_state"
	outcomeRemoteError  = "remote_error"
	outcomeError        = "error"
)

func (m *metrics) step(step, outcome string) {
	m.steps.WithLabelValues(step, outcome).Inc()
}
