package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scoring pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	scoringRuns     *prometheus.CounterVec
	scoringDuration prometheus.Observer
	adjustments     prometheus.Histogram
	analysisJobs    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scoringRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scoring_runs_total",
		Help: "Total scoring runs by outcome",
	}, []string{"outcome"})

	scoringDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scoring_duration_seconds",
		Help:    "Duration of full scoring runs",
		Buckets: prometheus.DefBuckets,
	})

	adjustments := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "score_adjustment_points",
		Help:    "Distribution of LLM score adjustments in points",
		Buckets: []float64{-20, -15, -10, -5, 0, 5, 10, 15, 20},
	})

	analysisJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_jobs_total",
		Help: "Total analysis jobs by status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scoringRuns, scoringDuration, adjustments, analysisJobs, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		scoringRuns:     scoringRuns,
		scoringDuration: scoringDuration,
		adjustments:     adjustments,
		analysisJobs:    analysisJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScoringRun records the outcome and duration of one scoring run.
func (m *MetricsService) ObserveScoringRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.scoringRuns.WithLabelValues(outcome).Inc()
	m.scoringDuration.Observe(duration.Seconds())
}

// ObserveAdjustment records one LLM score adjustment.
func (m *MetricsService) ObserveAdjustment(points float64) {
	if m == nil {
		return
	}
	m.adjustments.Observe(points)
}

// ObserveAnalysisJob counts analysis jobs by terminal status.
func (m *MetricsService) ObserveAnalysisJob(status string) {
	if m == nil {
		return
	}
	m.analysisJobs.WithLabelValues(status).Inc()
}
