package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/student-risk-api/internal/models"
)

func TestMetricsServiceObservations(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/assessments", http.StatusOK, 15*time.Millisecond)
	m.ObserveAssessment(SourceForm, models.AssessmentResult{Score: 70, Tier: models.RiskTierHigh})
	m.ObserveAssessment(SourceRoster, models.AssessmentResult{Score: 0, Tier: models.RiskTierLow})
	m.ObserveRosterRows(4, 1)
	m.ObserveDocument("csv")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodPost, "/api/v1/assessments", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.assessments.WithLabelValues("HIGH", SourceForm)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.assessments.WithLabelValues("LOW", SourceRoster)))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.rosterRows.WithLabelValues("scored")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rosterRows.WithLabelValues("rejected")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.documents.WithLabelValues("csv")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "risk_assessment_score_bucket")
	assert.Contains(t, w.Body.String(), "goroutines_total")
}

func TestMetricsServiceNilReceiver(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
		m.ObserveAssessment(SourceForm, models.AssessmentResult{Tier: models.RiskTierLow})
		m.ObserveRosterRows(1, 0)
		m.ObserveDocument("pdf")
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
