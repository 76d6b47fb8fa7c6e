package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-risk-api/internal/dto"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
	"github.com/noah-isme/student-risk-api/pkg/response"
)

type assessmentService interface {
	Assess(ctx context.Context, req dto.AssessmentRequest) (*dto.AssessmentResponse, error)
}

type assessmentReporter interface {
	AssessmentPDF(resp *dto.AssessmentResponse) (*dto.Document, error)
}

// AssessmentHandler serves the single student risk form.
type AssessmentHandler struct {
	assessments assessmentService
	reports     assessmentReporter
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(assessments assessmentService, reports assessmentReporter) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, reports: reports}
}

// Create godoc
// @Summary Score one student
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body dto.AssessmentRequest true "Form values"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	start := time.Now()
	req, ok := bindAssessment(c)
	if !ok {
		return
	}
	resp, err := h.assessments.Assess(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}

// Report godoc
// @Summary Printable result card
// @Tags Assessments
// @Accept json
// @Produce application/pdf
// @Param payload body dto.AssessmentRequest true "Form values"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /assessments/report [post]
func (h *AssessmentHandler) Report(c *gin.Context) {
	req, ok := bindAssessment(c)
	if !ok {
		return
	}
	resp, err := h.assessments.Assess(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.reports.AssessmentPDF(resp)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Content)
}

func bindAssessment(c *gin.Context) (dto.AssessmentRequest, bool) {
	var req dto.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid JSON payload"))
		return req, false
	}
	return req, true
}
