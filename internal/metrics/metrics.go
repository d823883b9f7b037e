package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the collectors for one timeline process, registered on a
// private registry so tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	EventsLoaded   prometheus.Counter
	ChartsRendered *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		EventsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timeline_events_loaded_total",
			Help: "Event rows read from input tables.",
		}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timeline_charts_rendered_total",
			Help: "Charts encoded, by output format.",
		}, []string{"format"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timeline_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		m.EventsLoaded,
		m.ChartsRendered,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
