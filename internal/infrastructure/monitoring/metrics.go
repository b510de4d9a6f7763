package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "postgen"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Upstream metrics
	UpstreamCalls    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	// Pipeline metrics
	Generations       *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	ImageSources      *prometheus.CounterVec
	Publishes         *prometheus.CounterVec

	// WebSocket metrics
	StreamConnections prometheus.Gauge
}

// NewMetrics registers all collectors on reg. Pass prometheus.NewRegistry()
// in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		ResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
			},
			[]string{"method", "path"},
		),

		UpstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_calls_total",
				Help:      "Outbound calls by upstream and outcome",
			},
			[]string{"service", "outcome"},
		),
		UpstreamDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Outbound call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"service"},
		),
		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "upstream_breaker_state",
				Help:      "Circuit breaker state per upstream (0 closed, 1 half-open, 2 open)",
			},
			[]string{"service"},
		),

		Generations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Post generations by outcome",
			},
			[]string{"outcome"},
		),
		GenerationLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "End to end pipeline duration",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
			},
		),
		ImageSources: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_source_total",
				Help:      "Where the attached image came from",
			},
			[]string{"source"},
		),
		Publishes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publishes_total",
				Help:      "Webhook publishes by outcome",
			},
			[]string{"outcome"},
		),

		StreamConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stream_connections",
				Help:      "Open generation stream WebSocket connections",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordUpstream records one outbound call
func (m *Metrics) RecordUpstream(service, outcome string, duration time.Duration) {
	m.UpstreamCalls.WithLabelValues(service, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// SetBreakerState exports a breaker state as a number
func (m *Metrics) SetBreakerState(service string, state int) {
	m.BreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordGeneration records a finished pipeline run
func (m *Metrics) RecordGeneration(outcome string, duration time.Duration) {
	m.Generations.WithLabelValues(outcome).Inc()
	m.GenerationLatency.Observe(duration.Seconds())
}

// RecordImageSource records where an image came from
func (m *Metrics) RecordImageSource(source string) {
	m.ImageSources.WithLabelValues(source).Inc()
}

// RecordPublish records a publish attempt
func (m *Metrics) RecordPublish(outcome string) {
	m.Publishes.WithLabelValues(outcome).Inc()
}
