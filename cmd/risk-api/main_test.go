package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-risk-api/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Roster:    config.RosterConfig{MaxUploadBytes: 4096, MaxRows: 100, TopN: 5},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterScenarios(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(testConfig(), zap.NewNop())

	cases := []struct {
		name    string
		payload string
		score   int
		tier    string
		factors int
	}{
		{name: "anxiety and grades", payload: `{"gad7_score":12,"gpa":10,"attendance_rate":90,"psych_history":"no","failed_courses":0}`, score: 70, tier: "HIGH", factors: 2},
		{name: "nothing flagged", payload: `{"gad7_score":5,"gpa":15,"attendance_rate":95,"psych_history":"no","failed_courses":0}`, score: 0, tier: "LOW", factors: 0},
		{name: "attendance and failures", payload: `{"gad7_score":8,"gpa":14,"attendance_rate":80,"psych_history":"no","failed_courses":1}`, score: 20, tier: "MODERATE", factors: 2},
		{name: "boundary fifty", payload: `{"gad7_score":11,"gpa":12,"attendance_rate":90,"psych_history":"no","failed_courses":0}`, score: 50, tier: "MODERATE", factors: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(tc.payload))
			req.Header.Set("Content-Type", "application/json")
			w := serve(router, req)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var body struct {
				Data struct {
					Result struct {
						Score   int               `json:"score"`
						Tier    string            `json:"tier"`
						Factors []json.RawMessage `json:"factors"`
					} `json:"result"`
					View struct {
						Style string `json:"style"`
					} `json:"view"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.score, body.Data.Result.Score)
			assert.Equal(t, tc.tier, body.Data.Result.Tier)
			assert.Len(t, body.Data.Result.Factors, tc.factors)
			assert.Equal(t, "risk-"+strings.ToLower(tc.tier), body.Data.View.Style)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouterValidationEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(testConfig(), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(`{"gad7_score":30,"gpa":12}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"gad7_score"`)
	assert.Contains(t, w.Body.String(), `"field":"psych_history"`)
}

func TestRouterAssessmentReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(testConfig(), zap.NewNop())

	payload := `{"gad7_score":15,"gpa":9,"attendance_rate":60,"psych_history":"yes","failed_courses":4}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/report", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestRouterRosterAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(testConfig(), zap.NewNop())

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("DNI,Nombre_Completo,Resultado_Cuestionario_GAD7,Promedio_General,Porcentaje_Asistencia,Antecedentes_Psic,Num_Cursos_Desaprobados\n" +
		"1,Ana,12,10,90,0,0\n2,Luis,2,16,97,0,0\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rosters/assessments", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := serve(router, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":2`)
	assert.Contains(t, w.Body.String(), `"at_risk":1`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `risk_assessments_total{source="roster",tier="HIGH"} 1`)
	assert.Contains(t, w.Body.String(), `roster_rows_total{outcome="scored"} 2`)
}

func TestRouterOptionalRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Env = config.EnvProduction
	cfg.Metrics.Enabled = false
	router := newRouter(cfg, zap.NewNop())

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/ready", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil)).Code)
}
