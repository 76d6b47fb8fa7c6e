package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-risk-api/internal/dto"
	"github.com/noah-isme/student-risk-api/internal/middleware"
	"github.com/noah-isme/student-risk-api/internal/models"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
)

type rosterServiceMock struct {
	report *models.RosterReport
	err    error
	body   string
	opts   dto.RosterOptions
	calls  int
}

func (m *rosterServiceMock) Assess(ctx context.Context, r io.Reader, opts dto.RosterOptions) (*models.RosterReport, error) {
	m.calls++
	data, _ := io.ReadAll(r)
	m.body = string(data)
	m.opts = opts
	return m.report, m.err
}

type rosterReporterMock struct {
	format string
}

func (m *rosterReporterMock) Roster(report *models.RosterReport, format string) (*dto.Document, error) {
	m.format = format
	return &dto.Document{Filename: "roster_" + report.ID + "." + format, ContentType: "text/csv; charset=utf-8", Content: []byte("student_id\n")}, nil
}

const rosterCSV = "student_id,full_name,gad7_score,gpa,attendance_rate,psych_history,failed_courses\nS1,Ana,12,10,90,no,0\n"

func multipartBody(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func buildRosterRouter(svc *rosterServiceMock, reporter *rosterReporterMock, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRosterHandler(svc, reporter)
	r.POST("/rosters/assessments", middleware.BodyLimit(limit), h.Assess)
	return r
}

func sampleReport() *models.RosterReport {
	return &models.RosterReport{
		ID:        "roster-1",
		Total:     1,
		Counts:    map[models.RiskTier]int{models.RiskTierHigh: 1, models.RiskTierModerate: 0, models.RiskTierLow: 0},
		AtRisk:    1,
		RowErrors: []models.RowError{{Row: 3, StudentID: "S2", Message: "gpa is required"}},
	}
}

func TestRosterHandlerJSON(t *testing.T) {
	svc := &rosterServiceMock{report: sampleReport()}
	router := buildRosterRouter(svc, &rosterReporterMock{}, 1<<20)
	body, contentType := multipartBody(t, "file", rosterCSV)

	req := httptest.NewRequest(http.MethodPost, "/rosters/assessments?tier=high&top=3", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rosterCSV, svc.body)
	assert.Equal(t, dto.RosterOptions{Tier: models.RiskTierHigh, Top: 3}, svc.opts)
	assert.Contains(t, w.Body.String(), `"rejected_rows":1`)
	assert.Contains(t, w.Body.String(), `"filename":"roster.csv"`)
}

func TestRosterHandlerCSVAttachment(t *testing.T) {
	reporter := &rosterReporterMock{}
	router := buildRosterRouter(&rosterServiceMock{report: sampleReport()}, reporter, 1<<20)
	body, contentType := multipartBody(t, "file", rosterCSV)

	req := httptest.NewRequest(http.MethodPost, "/rosters/assessments?format=CSV", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.FormatCSV, reporter.format)
	assert.Equal(t, `attachment; filename="roster_roster-1.csv"`, w.Header().Get("Content-Disposition"))
}

func TestRosterHandlerRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		field  string
		status int
		code   string
	}{
		{name: "unknown format", query: "?format=xlsx", field: "file", status: http.StatusBadRequest, code: "UNSUPPORTED_FORMAT"},
		{name: "bad top", query: "?top=0", field: "file", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "missing file", field: "upload", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &rosterServiceMock{report: sampleReport()}
			router := buildRosterRouter(svc, &rosterReporterMock{}, 1<<20)
			body, contentType := multipartBody(t, tc.field, rosterCSV)

			req := httptest.NewRequest(http.MethodPost, "/rosters/assessments"+tc.query, body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tc.code+`"`)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestRosterHandlerPropagatesServiceErrors(t *testing.T) {
	svc := &rosterServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "roster is missing columns: gpa")}
	router := buildRosterRouter(svc, &rosterReporterMock{}, 1<<20)
	body, contentType := multipartBody(t, "file", "student_id\n")

	req := httptest.NewRequest(http.MethodPost, "/rosters/assessments", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "roster is missing columns: gpa")
}

func TestRosterHandlerPayloadTooLarge(t *testing.T) {
	large := rosterCSV + strings.Repeat("S9,Zoe,1,15,95,no,0\n", 200)

	t.Run("declared length", func(t *testing.T) {
		svc := &rosterServiceMock{report: sampleReport()}
		router := buildRosterRouter(svc, &rosterReporterMock{}, 512)
		body, contentType := multipartBody(t, "file", large)

		req := httptest.NewRequest(http.MethodPost, "/rosters/assessments", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("streamed body", func(t *testing.T) {
		svc := &rosterServiceMock{report: sampleReport()}
		router := buildRosterRouter(svc, &rosterReporterMock{}, 512)
		body, contentType := multipartBody(t, "file", large)

		req := httptest.NewRequest(http.MethodPost, "/rosters/assessments", io.NopCloser(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"PAYLOAD_TOO_LARGE"`)
		assert.Zero(t, svc.calls)
	})
}

func TestMetricsHandlerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil, "1.0.0")

	c, w := newGinContext(http.MethodGet, "/health", nil)
	handler.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.0.0"}`, w.Body.String())

	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
