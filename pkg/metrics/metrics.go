package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Model Metrics
	ModelRequestDuration *prometheus.HistogramVec
	ModelErrorsTotal     *prometheus.CounterVec
	ModelTimeoutsTotal   *prometheus.CounterVec

	// Analysis Metrics
	AnalysesTotal            *prometheus.CounterVec
	SoilClassificationsTotal *prometheus.CounterVec
	AnalysisDuration         prometheus.Histogram
	UploadSizeBytes          prometheus.Histogram
}

// NewCollector creates a new metrics collector on the default registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWith(namespace, prometheus.DefaultRegisterer)
}

// NewCollectorWith creates a new metrics collector on the given registerer
func NewCollectorWith(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		ModelRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_request_duration_seconds",
				Help:      "Model sidecar request duration in seconds by model",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"model"},
		),

		ModelErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_errors_total",
				Help:      "Total number of model sidecar errors by model and type",
			},
			[]string{"model", "error_type"},
		),

		ModelTimeoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_timeouts_total",
				Help:      "Total number of model sidecar calls that exceeded their time budget",
			},
			[]string{"model"},
		),

		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of soil analyses by outcome",
			},
			[]string{"outcome"}, // "completed", "failed"
		),

		SoilClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "soil_classifications_total",
				Help:      "Total number of successful soil classifications by predicted type",
			},
			[]string{"soil_type"},
		),

		AnalysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "End-to-end duration of a complete analysis in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
		),

		UploadSizeBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_size_bytes",
				Help:      "Size of uploaded soil images in bytes",
				Buckets:   []float64{4096, 65536, 262144, 1048576, 2097152, 5242880, 10485760},
			},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordModelError increments model error counter
func (c *Collector) RecordModelError(model, errorType string) {
	c.ModelErrorsTotal.WithLabelValues(model, errorType).Inc()
}

// RecordModelTimeout increments model timeout counter
func (c *Collector) RecordModelTimeout(model string) {
	c.ModelTimeoutsTotal.WithLabelValues(model).Inc()
}

// RecordSoilClassification increments the per-type classification counter
func (c *Collector) RecordSoilClassification(soilType string) {
	c.SoilClassificationsTotal.WithLabelValues(soilType).Inc()
}

// RecordAnalysis increments the analysis counter for the given outcome
func (c *Collector) RecordAnalysis(outcome string) {
	c.AnalysesTotal.WithLabelValues(outcome).Inc()
}
