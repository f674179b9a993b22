// Package metrics provides Prometheus metrics export for the recommendation
// engine and its API surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports recommendation metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	recommendationLatency  *prometheus.HistogramVec
	recommendationRequests *prometheus.CounterVec
	candidateCount         prometheus.Histogram
	feedbackEvents         *prometheus.CounterVec
	onboardingSamples      prometheus.Counter
	contentPruned          prometheus.Counter
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.recommendationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gourmet",
			Subsystem: "recommender",
			Name:      "request_latency_seconds",
			Help:      "Recommendation request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"subject"},
	)

	e.recommendationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gourmet",
			Subsystem: "recommender",
			Name:      "requests_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"subject", "status"},
	)

	e.candidateCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gourmet",
			Subsystem: "recommender",
			Name:      "candidates_per_request",
			Help:      "Number of retrieval candidates per recommendation request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	e.feedbackEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gourmet",
			Subsystem: "recommender",
			Name:      "feedback_events_total",
			Help:      "Total number of feedback events",
		},
		[]string{"subject", "status"},
	)

	e.onboardingSamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gourmet",
			Subsystem: "recommender",
			Name:      "onboarding_samples_total",
			Help:      "Total number of content items sampled during onboarding",
		},
	)

	e.contentPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gourmet",
			Subsystem: "store",
			Name:      "content_pruned_total",
			Help:      "Total number of content rows removed by the pruner",
		},
	)

	registry.MustRegister(
		e.recommendationLatency,
		e.recommendationRequests,
		e.candidateCount,
		e.feedbackEvents,
		e.onboardingSamples,
		e.contentPruned,
	)

	return e
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ObserveRecommendation records one recommendation request.
func (e *Exporter) ObserveRecommendation(subject string, seconds float64, candidates int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.recommendationRequests.WithLabelValues(subject, status).Inc()
	if err == nil {
		e.recommendationLatency.WithLabelValues(subject).Observe(seconds)
		e.candidateCount.Observe(float64(candidates))
	}
}

// ObserveFeedback records one feedback event.
func (e *Exporter) ObserveFeedback(subject string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.feedbackEvents.WithLabelValues(subject, status).Inc()
}

// AddOnboardingSamples records freshly sampled onboarding content.
func (e *Exporter) AddOnboardingSamples(n int) {
	e.onboardingSamples.Add(float64(n))
}

// AddContentPruned records rows deleted by the pruner.
func (e *Exporter) AddContentPruned(n int64) {
	e.contentPruned.Add(float64(n))
}
