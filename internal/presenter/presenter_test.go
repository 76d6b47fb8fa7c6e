package presenter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-risk-api/internal/assessment"
	"github.com/noah-isme/student-risk-api/internal/models"
)

func TestView(t *testing.T) {
	assert.Equal(t, TierView{Title: "HIGH RISK", Style: "risk-high", Icon: "fa-exclamation-triangle"}, View(models.RiskTierHigh))
	assert.Equal(t, "risk-moderate", View(models.RiskTierModerate).Style)
	assert.Equal(t, "fa-check-circle", View(models.RiskTierLow).Icon)
}

func TestFactorText(t *testing.T) {
	assert.Equal(t, "Failed course count (+15 points)", FactorText(models.RiskFactor{Label: "failed course count", Points: 15}))
}

func TestTextRendererHigh(t *testing.T) {
	result := assessment.Assess(models.AssessmentInput{AnxietyScore: 12, GPA: 10, AttendanceRate: 90})
	var buf bytes.Buffer

	require.NoError(t, NewTextRenderer().Render(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "HIGH RISK  (score 70)")
	assert.Contains(t, out, assessment.MessageHigh)
	assert.Contains(t, out, "Elevated anxiety score (+50 points)")
	assert.Contains(t, out, "Low academic performance (+20 points)")
	assert.Contains(t, out, "one-on-one session")
}

func TestTextRendererNoFactors(t *testing.T) {
	result := assessment.Assess(models.AssessmentInput{GPA: 18, AttendanceRate: 99})
	var buf bytes.Buffer

	require.NoError(t, (&TextRenderer{}).Render(&buf, result))

	assert.Contains(t, buf.String(), "No risk factors detected")
	assert.Contains(t, buf.String(), "LOW RISK")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestTextRendererPropagatesWriteError(t *testing.T) {
	var r Renderer = NewTextRenderer()
	err := r.Render(failingWriter{}, assessment.Assess(models.AssessmentInput{GPA: 18, AttendanceRate: 99}))
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four five", 9)
	assert.Equal(t, []string{"one two", "three", "four five"}, lines)
	assert.Nil(t, wrap("   ", 10))
	assert.Equal(t, []string{"one", "two"}, wrap("one two", 0))
	assert.Equal(t, []string{"one", "two"}, wrap("one two", -1))
}

func TestTextRendererNarrowWidths(t *testing.T) {
	result := assessment.Assess(models.AssessmentInput{})
	for _, width := range []int{1, 2, 19} {
		var buf bytes.Buffer
		r := &TextRenderer{Width: width}

		require.NotPanics(t, func() { require.NoError(t, r.Render(&buf, result)) })

		first := strings.SplitN(buf.String(), "\n", 2)[0]
		assert.Equal(t, strings.Repeat("=", 20), first, "width %d", width)
	}
}

func TestRenderRosterSummary(t *testing.T) {
	top := models.RosterResult{StudentID: "S1", FullName: "Ana Quispe", Result: models.AssessmentResult{
		Score:   70,
		Tier:    models.RiskTierHigh,
		Factors: []models.RiskFactor{{Label: "elevated anxiety score", Points: 50}, {Label: "low academic performance", Points: 20}},
	}}
	low := models.RosterResult{StudentID: "S2", FullName: "Luis Rojas", Result: models.AssessmentResult{Score: 0, Tier: models.RiskTierLow}}
	report := &models.RosterReport{
		ID:          "batch-1",
		Total:       2,
		Counts:      map[models.RiskTier]int{models.RiskTierHigh: 1, models.RiskTierLow: 1},
		AtRisk:      1,
		Prevalence:  50,
		Highest:     &top,
		MostStable:  &low,
		MostFactors: &top,
		Priority:    []models.RosterResult{top},
		RowErrors:   []models.RowError{{Row: 4, Message: "gpa: not a number"}},
	}
	var buf bytes.Buffer

	require.NoError(t, RenderRosterSummary(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "Total students: 2")
	assert.Contains(t, out, "Prevalence:     50.0%")
	assert.Contains(t, out, "HIGH 1 / MODERATE 0 / LOW 1")
	assert.Contains(t, out, "Highest risk:   Ana Quispe (S1) score 70")
	assert.Contains(t, out, "Most factors:   Ana Quispe (S1) 2 factors")
	assert.Contains(t, out, "1. Ana Quispe (S1) 70 HIGH")
	assert.Contains(t, out, "row 4: gpa: not a number")
}
