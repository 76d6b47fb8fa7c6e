package dto

import "github.com/noah-isme/student-risk-api/internal/models"

// Roster output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatText = "text"
)

// RosterOptions shapes a roster assessment run.
type RosterOptions struct {
	// Tier restricts Results to one tier when set.
	Tier models.RiskTier
	// Top overrides the configured priority list length when positive.
	Top int
}

// Document is a rendered file ready to be served or written.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}
