package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-risk-api/internal/assessment"
	"github.com/noah-isme/student-risk-api/internal/dto"
	"github.com/noah-isme/student-risk-api/internal/models"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
)

// Canonical roster columns.
const (
	ColumnStudentID      = "student_id"
	ColumnFullName       = "full_name"
	ColumnGAD7Score      = "gad7_score"
	ColumnGPA            = "gpa"
	ColumnAttendanceRate = "attendance_rate"
	ColumnPsychHistory   = "psych_history"
	ColumnFailedCourses  = "failed_courses"
)

var requiredColumns = []string{
	ColumnStudentID,
	ColumnFullName,
	ColumnGAD7Score,
	ColumnGPA,
	ColumnAttendanceRate,
	ColumnPsychHistory,
	ColumnFailedCourses,
}

// columnAliases maps headers used by the school's registry exports.
var columnAliases = map[string]string{
	"dni":                         ColumnStudentID,
	"nombre_completo":             ColumnFullName,
	"resultado_cuestionario_gad7": ColumnGAD7Score,
	"promedio_general":            ColumnGPA,
	"promedio_notas":              ColumnGPA,
	"porcentaje_asistencia":       ColumnAttendanceRate,
	"antecedentes_psic":           ColumnPsychHistory,
	"num_cursos_desaprobados":     ColumnFailedCourses,
}

// RosterServiceConfig bounds roster processing.
type RosterServiceConfig struct {
	MaxRows int
	TopN    int
}

// RosterService scores whole student rosters and summarises them.
type RosterService struct {
	assessments *AssessmentService
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         RosterServiceConfig
	now         func() time.Time
	newID       func() string
}

// NewRosterService constructs a roster service.
func NewRosterService(assessments *AssessmentService, metrics *MetricsService, logger *zap.Logger, cfg RosterServiceConfig) *RosterService {
	if assessments == nil {
		assessments = NewAssessmentService(nil, metrics, logger, AssessmentServiceConfig{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 5000
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	return &RosterService{
		assessments: assessments,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Parse reads a roster CSV. Rows that fail to parse or validate are returned as
// RowErrors; a malformed header fails the whole file.
func (s *RosterService) Parse(r io.Reader) ([]models.RosterEntry, []models.RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "roster file is empty")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read roster header")
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]models.RosterEntry, 0)
	rowErrors := make([]models.RowError, 0)
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
					fmt.Sprintf("malformed roster at line %d", parseErr.Line))
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read roster")
		}
		if blank(record) {
			continue
		}
		rows++
		if rows > s.cfg.MaxRows {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("roster exceeds %d rows", s.cfg.MaxRows))
		}

		line, _ := reader.FieldPos(0)
		entry, rowErr := s.parseRow(line, record, index)
		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rowErrors, nil
}

// Assess parses and scores a roster, producing the dashboard summary.
func (s *RosterService) Assess(ctx context.Context, r io.Reader, opts dto.RosterOptions) (*models.RosterReport, error) {
	if opts.Tier != "" && !opts.Tier.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown tier %q", opts.Tier))
	}
	entries, rowErrors, err := s.Parse(r)
	if err != nil {
		return nil, err
	}

	scored := make([]models.RosterResult, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCanceled.Code, appErrors.ErrCanceled.Status, "roster assessment canceled")
		}
		result := assessment.Assess(entry.Input)
		s.metrics.ObserveAssessment(SourceRoster, result)
		scored = append(scored, models.RosterResult{
			StudentID: entry.StudentID,
			FullName:  entry.FullName,
			Row:       entry.Row,
			Result:    result,
		})
	}
	s.metrics.ObserveRosterRows(len(scored), len(rowErrors))

	top := s.cfg.TopN
	if opts.Top > 0 {
		top = opts.Top
	}
	report := buildRosterReport(scored, opts.Tier, top)
	report.ID = s.newID()
	report.GeneratedAt = s.now().UTC()
	report.RowErrors = rowErrors

	s.logger.Info("roster assessed",
		zap.String("roster_id", report.ID),
		zap.Int("total", report.Total),
		zap.Int("at_risk", report.AtRisk),
		zap.Int("rejected_rows", len(rowErrors)),
	)
	return report, nil
}

func (s *RosterService) parseRow(line int, record []string, index map[string]int) (models.RosterEntry, *models.RowError) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	studentID := field(ColumnStudentID)
	fail := func(msg string) (models.RosterEntry, *models.RowError) {
		return models.RosterEntry{}, &models.RowError{Row: line, StudentID: studentID, Message: msg}
	}
	if studentID == "" {
		return fail(ColumnStudentID + " is required")
	}

	var req dto.AssessmentRequest
	var err error
	if req.GAD7Score, err = parseInt(field(ColumnGAD7Score)); err != nil {
		return fail(ColumnGAD7Score + ": " + err.Error())
	}
	if req.GPA, err = parseFloat(field(ColumnGPA)); err != nil {
		return fail(ColumnGPA + ": " + err.Error())
	}
	if req.AttendanceRate, err = parseFloat(strings.TrimSuffix(field(ColumnAttendanceRate), "%")); err != nil {
		return fail(ColumnAttendanceRate + ": " + err.Error())
	}
	req.PsychHistory = parseYesNo(field(ColumnPsychHistory))
	if req.FailedCourses, err = parseInt(field(ColumnFailedCourses)); err != nil {
		return fail(ColumnFailedCourses + ": " + err.Error())
	}

	input, err := s.assessments.Input(req)
	if err != nil {
		return fail(flattenDetails(err))
	}
	return models.RosterEntry{
		Row:       line,
		StudentID: studentID,
		FullName:  field(ColumnFullName),
		Input:     input,
	}, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		name = strings.ReplaceAll(name, " ", "_")
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	missing := make([]string, 0)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		details := make([]appErrors.FieldError, 0, len(missing))
		for _, col := range missing {
			details = append(details, appErrors.FieldError{Field: col, Message: "column is required"})
		}
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "roster is missing columns: "+strings.Join(missing, ", ")),
			details,
		)
	}
	return index, nil
}

func buildRosterReport(results []models.RosterResult, tier models.RiskTier, top int) *models.RosterReport {
	report := &models.RosterReport{
		Total: len(results),
		Counts: map[models.RiskTier]int{
			models.RiskTierHigh:     0,
			models.RiskTierModerate: 0,
			models.RiskTierLow:      0,
		},
		Priority: make([]models.RosterResult, 0),
		Results:  make([]models.RosterResult, 0, len(results)),
	}
	for _, r := range results {
		report.Counts[r.Result.Tier]++
		if tier == "" || r.Result.Tier == tier {
			report.Results = append(report.Results, r)
		}
	}
	report.AtRisk = report.Counts[models.RiskTierHigh]
	if report.Total > 0 {
		report.Prevalence = math.Round(float64(report.AtRisk)/float64(report.Total)*10000) / 100
	}
	if len(results) == 0 {
		return report
	}

	ranked := make([]models.RosterResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Result.Score != ranked[j].Result.Score {
			return ranked[i].Result.Score > ranked[j].Result.Score
		}
		return ranked[i].FullName < ranked[j].FullName
	})
	highest := ranked[0]
	report.Highest = &highest

	stable := ranked[len(ranked)-1]
	for i := len(ranked) - 1; i >= 0 && ranked[i].Result.Score == stable.Result.Score; i-- {
		stable = ranked[i]
	}
	report.MostStable = &stable

	for i := range ranked {
		n := len(ranked[i].Result.Factors)
		if n > 0 && (report.MostFactors == nil || n > len(report.MostFactors.Result.Factors)) {
			most := ranked[i]
			report.MostFactors = &most
		}
	}

	// only students needing follow-up are listed
	for _, r := range ranked {
		if len(report.Priority) >= top {
			break
		}
		if r.Result.Tier != models.RiskTierLow {
			report.Priority = append(report.Priority, r)
		}
	}
	return report
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		// registry exports sometimes write counts as 2.0
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		v = int(f)
	}
	return &v, nil
}

func parseFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return &v, nil
}

func parseYesNo(raw string) *string {
	if raw == "" {
		return nil
	}
	var v string
	switch strings.ToLower(raw) {
	case "yes", "y", "si", "sí", "1", "true":
		v = "yes"
	case "no", "n", "0", "false":
		v = "no"
	default:
		v = raw
	}
	return &v
}
