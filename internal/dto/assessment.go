package dto

import (
	"time"

	"github.com/noah-isme/student-risk-api/internal/models"
	"github.com/noah-isme/student-risk-api/internal/presenter"
)

// MaxFailedCourses bounds failed_courses at the host so the uncapped score
// stays well inside int.
const MaxFailedCourses = 1000

// AssessmentRequest is the raw form payload. Pointer fields let validation
// tell an absent value from a zero.
type AssessmentRequest struct {
	GAD7Score      *int     `json:"gad7_score" validate:"required,min=0,max=21"`
	GPA            *float64 `json:"gpa" validate:"required,gte=0"`
	AttendanceRate *float64 `json:"attendance_rate" validate:"required,gte=0,lte=100"`
	PsychHistory   *string  `json:"psych_history" validate:"required,oneof=yes no"`
	FailedCourses  *int     `json:"failed_courses" validate:"required,min=0,max=1000"`
}

// AssessmentResponse is returned to form clients.
type AssessmentResponse struct {
	ID         string                  `json:"id"`
	AssessedAt time.Time               `json:"assessed_at"`
	Input      models.AssessmentInput  `json:"input"`
	Result     models.AssessmentResult `json:"result"`
	View       presenter.TierView      `json:"view"`
}
