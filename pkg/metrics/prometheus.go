package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's Prometheus collectors on a private registry.
type Recorder struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	snapshotsApplied  *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
}

// NewRecorder registers the collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		snapshotsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_snapshots_applied_total",
			Help: "Snapshots applied to the dashboard by source.",
		}, []string{"source"}),
		predictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_prediction_errors_total",
			Help: "Failed prediction requests by reason.",
		}, []string{"reason"}),
	}
	r.registry.MustRegister(
		r.httpRequestsTotal,
		r.httpDuration,
		r.snapshotsApplied,
		r.predictionErrors,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SnapshotApplied counts a snapshot applied to the dashboard.
func (r *Recorder) SnapshotApplied(source string) {
	r.snapshotsApplied.WithLabelValues(source).Inc()
}

// PredictionFailed counts a failed prediction.
func (r *Recorder) PredictionFailed(reason string) {
	r.predictionErrors.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
