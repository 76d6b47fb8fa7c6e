package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/student-risk-api/internal/models"
)

// Assessment sources used as metric labels.
const (
	SourceForm   = "form"
	SourceRoster = "roster"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	assessments     *prometheus.CounterVec
	scores          *prometheus.HistogramVec
	rosterRows      *prometheus.CounterVec
	documents       *prometheus.CounterVec
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

	assessments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_assessments_total",
		Help: "Completed risk assessments by tier and source",
	}, []string{"tier", "source"})

	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "risk_assessment_score",
		Help:    "Distribution of computed risk scores",
		Buckets: []float64{0, 10, 19, 20, 35, 50, 51, 70, 100, 150},
	}, []string{"source"})

	rosterRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_rows_total",
		Help: "Roster rows processed by outcome",
	}, []string{"outcome"})

	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_documents_total",
		Help: "Rendered report documents by format",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, assessments, scores, rosterRows, documents, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		assessments:     assessments,
		scores:          scores,
		rosterRows:      rosterRows,
		documents:       documents,
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

// ObserveAssessment counts one scored assessment.
func (m *MetricsService) ObserveAssessment(source string, result models.AssessmentResult) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(string(result.Tier), source).Inc()
	m.scores.WithLabelValues(source).Observe(float64(result.Score))
}

// ObserveRosterRows counts roster rows that were scored or rejected.
func (m *MetricsService) ObserveRosterRows(scored, rejected int) {
	if m == nil {
		return
	}
	m.rosterRows.WithLabelValues("scored").Add(float64(scored))
	m.rosterRows.WithLabelValues("rejected").Add(float64(rejected))
}

// ObserveDocument counts a rendered report.
func (m *MetricsService) ObserveDocument(format string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(format).Inc()
}
