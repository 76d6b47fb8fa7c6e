package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-risk-api/internal/assessment"
	"github.com/noah-isme/student-risk-api/internal/dto"
	"github.com/noah-isme/student-risk-api/internal/models"
	"github.com/noah-isme/student-risk-api/internal/presenter"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
)

// AssessmentServiceConfig tunes the form boundary.
type AssessmentServiceConfig struct {
	// SimulatedLatency delays scoring to mimic a processing step. Zero disables it.
	SimulatedLatency time.Duration
}

// AssessmentService validates form input and runs the risk scorer.
type AssessmentService struct {
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       AssessmentServiceConfig
	now       func() time.Time
	newID     func() string
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg AssessmentServiceConfig) *AssessmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SimulatedLatency < 0 {
		cfg.SimulatedLatency = 0
	}
	return &AssessmentService{
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Input validates the raw request and converts it into scorer input.
func (s *AssessmentService) Input(req dto.AssessmentRequest) (models.AssessmentInput, error) {
	if req.PsychHistory != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.PsychHistory))
		req.PsychHistory = &normalized
	}
	if err := s.validator.Struct(req); err != nil {
		return models.AssessmentInput{}, validationError(err, "invalid assessment payload")
	}
	return models.AssessmentInput{
		AnxietyScore:      *req.GAD7Score,
		GPA:               *req.GPA,
		AttendanceRate:    *req.AttendanceRate,
		HasPsychHistory:   *req.PsychHistory == "yes",
		FailedCourseCount: *req.FailedCourses,
	}, nil
}

// Assess validates the request, waits the simulated latency and scores it.
func (s *AssessmentService) Assess(ctx context.Context, req dto.AssessmentRequest) (*dto.AssessmentResponse, error) {
	input, err := s.Input(req)
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	result := assessment.Assess(input)
	s.metrics.ObserveAssessment(SourceForm, result)
	s.logger.Debug("assessment computed",
		zap.String("tier", string(result.Tier)),
		zap.Int("score", result.Score),
		zap.Int("factors", len(result.Factors)),
	)

	return &dto.AssessmentResponse{
		ID:         s.newID(),
		AssessedAt: s.now().UTC(),
		Input:      input,
		Result:     result,
		View:       presenter.View(result.Tier),
	}, nil
}

func (s *AssessmentService) wait(ctx context.Context) error {
	if s.cfg.SimulatedLatency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.SimulatedLatency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return appErrors.Wrap(ctx.Err(), appErrors.ErrCanceled.Code, appErrors.ErrCanceled.Status, "assessment canceled")
	case <-timer.C:
		return nil
	}
}
