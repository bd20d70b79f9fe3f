package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Identifier-mapping metrics. These mirror the resolver's in-process
	// statistics so operators can watch mapping coverage over time.
	MappingRequestsTotal prometheus.Counter
	MappingDirectHits    prometheus.Counter
	MappingEnhancedHits  prometheus.Counter
	MappingMisses        prometheus.Counter
	MappingErrors        prometheus.Counter

	// Recommendation metrics
	RecommendationsServed prometheus.CounterVec
	RecommendationLatency prometheus.HistogramVec

	// Model metrics
	ModelLoaded    prometheus.Gauge
	ModelItemCount prometheus.Gauge

	// OMDb client metrics
	OMDbRequestsTotal prometheus.CounterVec
	OMDbErrorsTotal   prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			MappingRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mapping_requests_total",
				Help: "Total number of IMDb-to-MovieLens mapping lookups",
			}),
			MappingDirectHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mapping_direct_hits_total",
				Help: "Mapping lookups satisfied by the model map or links table",
			}),
			MappingEnhancedHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mapping_enhanced_hits_total",
				Help: "Mapping lookups satisfied by the enhanced_links table",
			}),
			MappingMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mapping_misses_total",
				Help: "Mapping lookups that found no MovieLens ID",
			}),
			MappingErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mapping_errors_total",
				Help: "Mapping lookups that failed with a database error",
			}),

			RecommendationsServed: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "recommendations_served_total",
					Help: "Recommendation results served, labeled by outcome",
				},
				[]string{"outcome"},
			),
			RecommendationLatency: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "recommendation_duration_seconds",
					Help:    "Time spent generating a recommendation list",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"kind"},
			),

			ModelLoaded: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "model_loaded",
				Help: "1 when the embedding model is loaded and ready, else 0",
			}),
			ModelItemCount: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "model_item_count",
				Help: "Number of item vectors in the loaded embedding matrix",
			}),

			OMDbRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "omdb_requests_total",
					Help: "Total number of OMDb API requests",
				},
				[]string{"operation"},
			),
			OMDbErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "omdb_errors_total",
					Help: "Total number of failed OMDb API requests",
				},
				[]string{"operation"},
			),
		}
	})

	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
