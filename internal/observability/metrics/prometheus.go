package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// PrometheusMetrics provides Prometheus-based metrics collection for
// analysis runs.
type PrometheusMetrics struct {
	logger   *logrus.Logger
	registry *prometheus.Registry

	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	sourcesTotal      *prometheus.CounterVec
	violationsTotal   *prometheus.CounterVec
	reportScore       prometheus.Histogram
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
func NewPrometheusMetrics(logger *logrus.Logger) *PrometheusMetrics {
	if logger == nil {
		logger = logrus.New()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confaudit",
			Name:      "analysis_runs_total",
			Help:      "Total analysis runs by outcome",
		}, []string{"status"}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "confaudit",
			Name:      "analysis_run_duration_seconds",
			Help:      "Duration of analysis runs",
			Buckets:   prometheus.DefBuckets,
		}),

		sourcesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confaudit",
			Name:      "sources_processed_total",
			Help:      "Sources processed by kind and outcome",
		}, []string{"kind", "status"}),

		violationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confaudit",
			Name:      "violations_total",
			Help:      "Violations detected by severity and kind",
		}, []string{"severity", "kind"}),

		reportScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "confaudit",
			Name:      "report_score",
			Help:      "Distribution of overall quality scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confaudit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status",
		}, []string{"method", "path", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "confaudit",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	pm.registry.MustRegister(
		pm.runsTotal,
		pm.runDuration,
		pm.sourcesTotal,
		pm.violationsTotal,
		pm.reportScore,
		pm.httpRequestsTotal,
		pm.httpDuration,
	)

	return pm
}

// RecordRun records the outcome and duration of one analysis run.
func (pm *PrometheusMetrics) RecordRun(status string, duration time.Duration) {
	pm.runsTotal.WithLabelValues(status).Inc()
	pm.runDuration.Observe(duration.Seconds())
}

// RecordSource records the outcome of normalizing one source.
func (pm *PrometheusMetrics) RecordSource(kind, status string) {
	pm.sourcesTotal.WithLabelValues(kind, status).Inc()
}

// RecordViolation counts one detected violation.
func (pm *PrometheusMetrics) RecordViolation(severity, kind string) {
	pm.violationsTotal.WithLabelValues(severity, kind).Inc()
}

// RecordScore observes a report's overall score.
func (pm *PrometheusMetrics) RecordScore(score int) {
	pm.reportScore.Observe(float64(score))
}

// RecordHTTPRequest records one served HTTP request.
func (pm *PrometheusMetrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	pm.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	pm.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns the scrape handler for this registry.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
