package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exported by this service.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	analysisStartedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "analysis_started_total",
		Help: "Total analyses started",
	})
	analysisCompletedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "analysis_completed_total",
		Help: "Total analyses completed",
	})
	analysisFailedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "analysis_failed_total",
		Help: "Total analyses failed",
	})
	analysisDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_ms",
		Help:    "Analysis duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
	roleResolutions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "role_resolutions_total",
		Help: "Role lookups by source tier and outcome",
	}, []string{"source", "outcome"})
	pollTicks = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_poll_ticks_total",
		Help: "Status polls issued by the assistant, by observed status",
	}, []string{"status"})
	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method, route and status code",
	}, []string{"method", "route", "code"})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Inc()
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Inc()
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// IncRoleResolution counts one tier attempt of the role resolver.
func IncRoleResolution(source, outcome string) {
	roleResolutions.WithLabelValues(source, outcome).Inc()
}

// IncPollTick counts one status poll.
func IncPollTick(status string) {
	if status == "" {
		status = "unknown"
	}
	pollTicks.WithLabelValues(status).Inc()
}

// IncHTTPRequest counts one served request.
func IncHTTPRequest(method, route, code string) {
	httpRequests.WithLabelValues(method, route, code).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// SinceMillis returns the elapsed milliseconds since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
