package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the prometheus collectors exported by `cooc serve`.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	EventsTotal         *prometheus.CounterVec
	TicksTotal          prometheus.Counter
	TickDuration        prometheus.Histogram
	Alpha               prometheus.Gauge
	GraphNodes          prometheus.Gauge
	GraphLinks          prometheus.Gauge
	ReloadsTotal        *prometheus.CounterVec
}

// NewRegistry creates a registry with Go runtime collectors and the
// application metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	r := &Registry{registry: reg}
	f := promauto.With(reg)

	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "cooc_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "path", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cooc_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	r.EventsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "cooc_interaction_events_total",
		Help: "Interaction events applied, by type and outcome",
	}, []string{"type", "status"})
	r.TicksTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "cooc_simulation_ticks_total",
		Help: "Layout simulation ticks",
	})
	r.TickDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "cooc_simulation_tick_duration_seconds",
		Help:    "Duration of one simulation tick including scene update",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
	r.Alpha = f.NewGauge(prometheus.GaugeOpts{
		Name: "cooc_simulation_alpha",
		Help: "Current simulation temperature",
	})
	r.GraphNodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "cooc_graph_nodes",
		Help: "Nodes in the loaded graph",
	})
	r.GraphLinks = f.NewGauge(prometheus.GaugeOpts{
		Name: "cooc_graph_links",
		Help: "Links in the loaded graph",
	})
	r.ReloadsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "cooc_reloads_total",
		Help: "Data reloads by outcome",
	}, []string{"status"})

	return r
}

// Gatherer exposes the underlying registry for promhttp.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordEvent counts an interaction event.
func (r *Registry) RecordEvent(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.EventsTotal.WithLabelValues(kind, status).Inc()
}

// RecordTick records one simulation tick.
func (r *Registry) RecordTick(d time.Duration, alpha float64) {
	r.TicksTotal.Inc()
	r.TickDuration.Observe(d.Seconds())
	r.Alpha.Set(alpha)
}

// SetGraphSize updates the graph size gauges.
func (r *Registry) SetGraphSize(nodes, links int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphLinks.Set(float64(links))
}

// RecordReload counts a data reload.
func (r *Registry) RecordReload(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.ReloadsTotal.WithLabelValues(status).Inc()
}
