package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several pipelines (and tests) can coexist.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchInFlight prometheus.Gauge

	ItemsFiltered prometheus.Counter
	ItemsRanked   prometheus.Counter
	RunsTotal     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustrank_fetch_total",
				Help: "Upstream fetches by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		FetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustrank_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),
		FetchInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "trustrank_fetch_in_flight",
				Help: "Upstream fetches currently holding a concurrency slot",
			},
		),
		ItemsFiltered: f.NewCounter(
			prometheus.CounterOpts{
				Name: "trustrank_items_filtered_total",
				Help: "Search records dropped by the rating filter",
			},
		),
		ItemsRanked: f.NewCounter(
			prometheus.CounterOpts{
				Name: "trustrank_items_ranked_total",
				Help: "Items scored and ranked",
			},
		),
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustrank_runs_total",
				Help: "Ranking runs by status",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The recorders below accept a nil receiver so callers can run without metrics.

func (m *Metrics) RecordFetch(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(endpoint, outcome).Inc()
	m.FetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.FetchInFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.FetchInFlight.Dec()
	}
}

func (m *Metrics) RecordFiltered(n int) {
	if m != nil {
		m.ItemsFiltered.Add(float64(n))
	}
}

func (m *Metrics) RecordRun(status string, ranked int) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.ItemsRanked.Add(float64(ranked))
}
