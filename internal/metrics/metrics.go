// Package metrics holds the Prometheus collectors of the assistant.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	answersTotal     *prometheus.CounterVec
	requestsTotal    *prometheus.CounterVec
	indexRebuilds    prometheus.Counter
	indexedEvents    prometheus.Gauge
	retrieveDuration prometheus.Histogram
	generationErrors prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{gatherer: reg}
	m.answersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "etkinlik",
		Name:      "answers_total",
		Help:      "Answers produced, by fallback tier",
	}, []string{"tier"})
	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "etkinlik",
		Name:      "requests_total",
		Help:      "Questions received, by channel",
	}, []string{"channel"})
	m.indexRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "etkinlik",
		Name:      "index_rebuilds_total",
		Help:      "Semantic index rebuilds",
	})
	m.indexedEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "etkinlik",
		Name:      "indexed_events",
		Help:      "Events in the current semantic index",
	})
	m.retrieveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "etkinlik",
		Name:      "retrieve_duration_seconds",
		Help:      "Time spent answering a question end to end",
		Buckets:   prometheus.DefBuckets,
	})
	m.generationErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "etkinlik",
		Name:      "generation_errors_total",
		Help:      "Failed or empty generation calls that fell back to the template",
	})
	reg.MustRegister(
		m.answersTotal, m.requestsTotal, m.indexRebuilds,
		m.indexedEvents, m.retrieveDuration, m.generationErrors,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.gatherer
}

func (m *Metrics) ObserveAnswer(tier string, took time.Duration) {
	if m == nil {
		return
	}
	m.answersTotal.WithLabelValues(tier).Inc()
	m.retrieveDuration.Observe(took.Seconds())
}

func (m *Metrics) RequestReceived(channel string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(channel).Inc()
}

func (m *Metrics) IndexRebuilt(events int) {
	if m == nil {
		return
	}
	m.indexRebuilds.Inc()
	m.indexedEvents.Set(float64(events))
}

func (m *Metrics) GenerationFailed() {
	if m == nil {
		return
	}
	m.generationErrors.Inc()
}
