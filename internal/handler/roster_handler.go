package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-risk-api/internal/dto"
	"github.com/noah-isme/student-risk-api/internal/models"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
	"github.com/noah-isme/student-risk-api/pkg/response"
)

const rosterFormField = "file"

type rosterService interface {
	Assess(ctx context.Context, r io.Reader, opts dto.RosterOptions) (*models.RosterReport, error)
}

type rosterReporter interface {
	Roster(report *models.RosterReport, format string) (*dto.Document, error)
}

// RosterHandler scores uploaded class rosters.
type RosterHandler struct {
	rosters rosterService
	reports rosterReporter
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(rosters rosterService, reports rosterReporter) *RosterHandler {
	return &RosterHandler{rosters: rosters, reports: reports}
}

// Assess godoc
// @Summary Score a roster CSV
// @Tags Rosters
// @Accept multipart/form-data
// @Produce json,text/csv,application/pdf
// @Param file formData file true "Roster CSV"
// @Param format query string false "json, csv or pdf"
// @Param tier query string false "LOW, MODERATE or HIGH"
// @Param top query int false "Priority list length"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /rosters/assessments [post]
func (h *RosterHandler) Assess(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", dto.FormatJSON))
	switch format {
	case dto.FormatJSON, dto.FormatCSV, dto.FormatPDF:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported roster format %q", format)))
		return
	}

	opts := dto.RosterOptions{Tier: models.RiskTier(strings.ToUpper(strings.TrimSpace(c.Query("tier"))))}
	if raw := c.Query("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "top must be a positive integer"))
			return
		}
		opts.Top = top
	}

	header, err := c.FormFile(rosterFormField)
	if err != nil {
		response.Error(c, uploadError(err))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open roster upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	report, err := h.rosters.Assess(c.Request.Context(), file, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	if format == dto.FormatJSON {
		response.JSON(c, http.StatusOK, report, map[string]interface{}{
			"filename":      header.Filename,
			"rejected_rows": len(report.RowErrors),
		})
		return
	}
	doc, err := h.reports.Roster(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Content)
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("roster exceeds %d bytes", maxErr.Limit))
	}
	if errors.Is(err, http.ErrMissingFile) {
		return appErrors.Clone(appErrors.ErrValidation, "multipart field \"file\" is required")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart upload")
}
