// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "emotion_atlas"

// Failure stages used as the stage label of LocalFailures.
const (
	StageAttractions = "attractions"
	StageReviews     = "reviews"
	StageClassify    = "classify"
	StageRecord      = "record"
)

// Metrics holds the collectors for one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ReviewsProcessed     prometheus.Counter
	ObservationsRecorded prometheus.Counter
	LocalFailures        *prometheus.CounterVec
	Retries              prometheus.Counter
	AttractionsCompleted prometheus.Counter
	GraphNodes           prometheus.Gauge
	GraphEdges           prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ReviewsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_processed_total",
			Help:      "Reviews fully applied to the graph",
		}),
		ObservationsRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_recorded_total",
			Help:      "Attraction/emotion observations recorded",
		}),
		LocalFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "local_failures_total",
			Help:      "Units of work left not done after an error",
		}, []string{"stage"}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Transient external failures that were retried",
		}),
		AttractionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attractions_completed_total",
			Help:      "Attractions marked done",
		}),
		GraphNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the in-memory graph",
		}),
		GraphEdges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the in-memory graph",
		}),
	}
}

// Failure counts one local failure at stage. Safe on a nil receiver.
func (m *Metrics) Failure(stage string) {
	if m == nil {
		return
	}
	m.LocalFailures.WithLabelValues(stage).Inc()
}

// SetGraphSize updates the graph gauges. Safe on a nil receiver.
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
}

// ReviewDone counts one applied review. Safe on a nil receiver.
func (m *Metrics) ReviewDone() {
	if m != nil {
		m.ReviewsProcessed.Inc()
	}
}

// Observation counts one recorded observation. Safe on a nil receiver.
func (m *Metrics) Observation() {
	if m != nil {
		m.ObservationsRecorded.Inc()
	}
}

// Retry counts one retried failure. Safe on a nil receiver.
func (m *Metrics) Retry() {
	if m != nil {
		m.Retries.Inc()
	}
}

// AttractionDone counts one completed attraction. Safe on a nil receiver.
func (m *Metrics) AttractionDone() {
	if m != nil {
		m.AttractionsCompleted.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
