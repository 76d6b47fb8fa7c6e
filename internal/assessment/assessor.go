// Package assessment scores a student's anxiety risk from a handful of form
// inputs. Assess is pure: it performs no I/O and keeps no state between calls.
package assessment

import "github.com/noah-isme/student-risk-api/internal/models"

// Thresholds compared against the input fields.
const (
	AnxietyThreshold    = 10
	GPAThreshold        = 11.0
	AttendanceThreshold = 85.0
)

// Points contributed by each triggered condition.
const (
	AnxietyPoints      = 50
	GPAPoints          = 20
	AttendancePoints   = 15
	PsychHistoryPoints = 15
	FailedCoursePoints = 5
)

// Tier cutoffs.
const (
	ModerateTierMinimum = 20
	HighTierFloor       = 50
)

// Factor labels in evaluation order.
const (
	LabelElevatedAnxiety = "elevated anxiety score"
	LabelLowAcademic     = "low academic performance"
	LabelLowAttendance   = "low attendance rate"
	LabelPsychHistory    = "previous psychological history"
	LabelFailedCourses   = "failed course count"
)

// Tier messages.
const (
	MessageHigh     = "HIGH RISK DETECTED. Schedule intervention immediately."
	MessageModerate = "MODERATE RISK. Monitor student."
	MessageLow      = "LOW RISK. Standard follow-up."
)

// Tier recommendations.
const (
	RecommendationHigh = "Immediate intervention is recommended. Schedule a one-on-one session with the student within 48 hours. " +
		"Consider notifying parents/guardians and coordinating with teachers to develop an academic accommodation plan if needed."
	RecommendationModerate = "Regular monitoring is recommended. Schedule a check-in within the next week. " +
		"Consider a follow-up GAD-7 assessment in 2-3 weeks and develop a preliminary support plan."
	RecommendationLow = "Standard follow-up procedures are sufficient. Include student in routine wellness check-ins and preventative mental health programs. " +
		"Re-evaluate if any significant academic or behavioral changes occur."
)

// Assess computes the weighted risk score for input, classifies it and returns
// a freshly allocated result. Every condition is evaluated independently.
// Behaviour for NaN values is undefined; callers validate first.
func Assess(input models.AssessmentInput) models.AssessmentResult {
	factors := make([]models.RiskFactor, 0, 5)

	if input.AnxietyScore > AnxietyThreshold {
		factors = append(factors, models.RiskFactor{Label: LabelElevatedAnxiety, Points: AnxietyPoints})
	}
	if input.GPA < GPAThreshold {
		factors = append(factors, models.RiskFactor{Label: LabelLowAcademic, Points: GPAPoints})
	}
	if input.AttendanceRate < AttendanceThreshold {
		factors = append(factors, models.RiskFactor{Label: LabelLowAttendance, Points: AttendancePoints})
	}
	if input.HasPsychHistory {
		factors = append(factors, models.RiskFactor{Label: LabelPsychHistory, Points: PsychHistoryPoints})
	}
	// linear, no cap
	if input.FailedCourseCount > 0 {
		factors = append(factors, models.RiskFactor{Label: LabelFailedCourses, Points: FailedCoursePoints * input.FailedCourseCount})
	}

	score := 0
	for _, f := range factors {
		score += f.Points
	}

	tier := Classify(score)
	return models.AssessmentResult{
		Score:          score,
		Tier:           tier,
		Factors:        factors,
		Message:        Message(tier),
		Recommendation: Recommendation(tier),
	}
}

// Classify maps a score to its tier. HIGH is strictly above 50 while MODERATE
// includes both 20 and 50.
func Classify(score int) models.RiskTier {
	switch {
	case score > HighTierFloor:
		return models.RiskTierHigh
	case score >= ModerateTierMinimum:
		return models.RiskTierModerate
	default:
		return models.RiskTierLow
	}
}

// Message returns the short status line for tier.
func Message(tier models.RiskTier) string {
	switch tier {
	case models.RiskTierHigh:
		return MessageHigh
	case models.RiskTierModerate:
		return MessageModerate
	default:
		return MessageLow
	}
}

// Recommendation returns the guidance text for tier.
func Recommendation(tier models.RiskTier) string {
	switch tier {
	case models.RiskTierHigh:
		return RecommendationHigh
	case models.RiskTierModerate:
		return RecommendationModerate
	default:
		return RecommendationLow
	}
}
