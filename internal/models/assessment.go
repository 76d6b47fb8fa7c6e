package models

// RiskTier is the coarse classification surfaced to the counselor.
type RiskTier string

const (
	RiskTierLow      RiskTier = "LOW"
	RiskTierModerate RiskTier = "MODERATE"
	RiskTierHigh     RiskTier = "HIGH"
)

// Valid reports whether the tier is one of the known values.
func (t RiskTier) Valid() bool {
	switch t {
	case RiskTierLow, RiskTierModerate, RiskTierHigh:
		return true
	}
	return false
}

// AssessmentInput is the fully populated, type-correct input to the scorer.
// Callers validate presence and ranges before building it.
type AssessmentInput struct {
	AnxietyScore      int     `json:"anxiety_score"`
	GPA               float64 `json:"gpa"`
	AttendanceRate    float64 `json:"attendance_rate"`
	HasPsychHistory   bool    `json:"has_psych_history"`
	FailedCourseCount int     `json:"failed_course_count"`
}

// RiskFactor is one triggered condition and the points it contributed.
type RiskFactor struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// AssessmentResult is the scorer output. Factors are in evaluation order.
type AssessmentResult struct {
	Score          int          `json:"score"`
	Tier           RiskTier     `json:"tier"`
	Factors        []RiskFactor `json:"factors"`
	Message        string       `json:"message"`
	Recommendation string       `json:"recommendation"`
}
