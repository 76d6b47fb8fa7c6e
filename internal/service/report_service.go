package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-risk-api/internal/dto"
	"github.com/noah-isme/student-risk-api/internal/models"
	"github.com/noah-isme/student-risk-api/internal/presenter"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
	"github.com/noah-isme/student-risk-api/pkg/export"
)

const (
	contentTypeCSV = "text/csv; charset=utf-8"
	contentTypePDF = "application/pdf"
)

var rosterHeaders = []string{"student_id", "full_name", "score", "tier", "factors"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderPanel(panel export.Panel, title string) ([]byte, error)
}

// ReportConfig tunes rendered documents.
type ReportConfig struct {
	Title string
}

// ReportService renders assessments and rosters into printable documents.
type ReportService struct {
	csv     csvRenderer
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ReportConfig
	now     func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(cfg ReportConfig, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Student Anxiety Risk Report"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{csv: csv, pdf: pdf, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// AssessmentPDF prints a single assessment result card.
func (s *ReportService) AssessmentPDF(resp *dto.AssessmentResponse) (*dto.Document, error) {
	if resp == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assessment is required")
	}
	result := resp.Result
	view := presenter.View(result.Tier)

	factors := make([]string, 0, len(result.Factors))
	for _, f := range result.Factors {
		factors = append(factors, presenter.FactorText(f))
	}
	if len(factors) == 0 {
		factors = append(factors, "No risk factors detected")
	}

	in := resp.Input
	panel := export.Panel{
		Title:    view.Title,
		Subtitle: fmt.Sprintf("Score %d - %s", result.Score, result.Message),
		Accent:   accent(result.Tier),
		Sections: []export.PanelSection{
			{Heading: "Inputs", Items: []string{
				fmt.Sprintf("GAD-7 score: %d", in.AnxietyScore),
				fmt.Sprintf("GPA: %s", formatFloat(in.GPA)),
				fmt.Sprintf("Attendance rate: %s%%", formatFloat(in.AttendanceRate)),
				fmt.Sprintf("Previous psychological history: %s", yesNo(in.HasPsychHistory)),
				fmt.Sprintf("Failed courses: %d", in.FailedCourseCount),
			}},
			{Heading: "Risk factors", Items: factors},
			{Heading: "Recommendation", Paragraph: result.Recommendation},
			{Heading: "Reference", Paragraph: fmt.Sprintf("Assessment %s, %s", resp.ID, resp.AssessedAt.Format(time.RFC1123))},
		},
	}

	payload, err := s.pdf.RenderPanel(panel, s.cfg.Title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render assessment report")
	}
	s.metrics.ObserveDocument(dto.FormatPDF)
	return &dto.Document{
		Filename:    s.filename("assessment", resp.ID, dto.FormatPDF),
		ContentType: contentTypePDF,
		Content:     payload,
	}, nil
}

// Roster renders a roster report as CSV or PDF.
func (s *ReportService) Roster(report *models.RosterReport, format string) (*dto.Document, error) {
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster report is required")
	}
	dataset := rosterDataset(report)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case dto.FormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = contentTypeCSV
	case dto.FormatPDF:
		payload, err = s.pdf.Render(dataset, s.cfg.Title)
		contentType = contentTypePDF
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported roster format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster report")
	}
	s.metrics.ObserveDocument(format)
	s.logger.Debug("roster document rendered", zap.String("roster_id", report.ID), zap.String("format", format), zap.Int("bytes", len(payload)))
	return &dto.Document{
		Filename:    s.filename("roster", report.ID, format),
		ContentType: contentType,
		Content:     payload,
	}, nil
}

func rosterDataset(report *models.RosterReport) export.Dataset {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		labels := make([]string, 0, len(r.Result.Factors))
		for _, f := range r.Result.Factors {
			labels = append(labels, f.Label)
		}
		rows = append(rows, []string{
			r.StudentID,
			r.FullName,
			strconv.Itoa(r.Result.Score),
			string(r.Result.Tier),
			strings.Join(labels, "; "),
		})
	}
	summary := [][2]string{
		{"Total students", strconv.Itoa(report.Total)},
		{"At risk (HIGH)", strconv.Itoa(report.AtRisk)},
		{"Prevalence", fmt.Sprintf("%.1f%%", report.Prevalence)},
		{"Moderate", strconv.Itoa(report.Counts[models.RiskTierModerate])},
		{"Low", strconv.Itoa(report.Counts[models.RiskTierLow])},
	}
	if report.Highest != nil {
		summary = append(summary, [2]string{"Highest risk", fmt.Sprintf("%s (%d)", report.Highest.FullName, report.Highest.Result.Score)})
	}
	if report.MostFactors != nil {
		summary = append(summary, [2]string{"Most factors", fmt.Sprintf("%s (%d)", report.MostFactors.FullName, len(report.MostFactors.Result.Factors))})
	}
	if len(report.RowErrors) > 0 {
		summary = append(summary, [2]string{"Skipped rows", strconv.Itoa(len(report.RowErrors))})
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows, Summary: summary}
}

func (s *ReportService) filename(kind, id, format string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", kind, sanitizeFilename(id), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 36 {
		return result[:36]
	}
	return result
}

func accent(tier models.RiskTier) [3]int {
	switch tier {
	case models.RiskTierHigh:
		return [3]int{220, 53, 69}
	case models.RiskTierModerate:
		return [3]int{230, 126, 34}
	default:
		return [3]int{40, 167, 69}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
