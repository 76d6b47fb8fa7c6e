package models

import "time"

// RosterEntry is one student row read from a roster file.
type RosterEntry struct {
	Row       int             `json:"row"`
	StudentID string          `json:"student_id"`
	FullName  string          `json:"full_name"`
	Input     AssessmentInput `json:"input"`
}

// RosterResult pairs a roster entry with its computed assessment.
type RosterResult struct {
	StudentID string           `json:"student_id"`
	FullName  string           `json:"full_name"`
	Row       int              `json:"row"`
	Result    AssessmentResult `json:"result"`
}

// RowError describes a roster row that could not be assessed.
type RowError struct {
	Row       int    `json:"row"`
	StudentID string `json:"student_id,omitempty"`
	Message   string `json:"message"`
}

// RosterReport summarises a scored roster.
type RosterReport struct {
	ID          string           `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Total       int              `json:"total"`
	Counts      map[RiskTier]int `json:"counts"`
	AtRisk      int              `json:"at_risk"`
	Prevalence  float64          `json:"prevalence"`
	Highest     *RosterResult    `json:"highest,omitempty"`
	MostStable  *RosterResult    `json:"most_stable,omitempty"`
	MostFactors *RosterResult    `json:"most_factors,omitempty"`
	Priority    []RosterResult   `json:"priority"`
	Results     []RosterResult   `json:"results"`
	RowErrors   []RowError       `json:"row_errors,omitempty"`
}
