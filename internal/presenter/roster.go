package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/student-risk-api/internal/models"
)

// RenderRosterSummary writes the dashboard style overview of a scored roster.
func RenderRosterSummary(w io.Writer, report *models.RosterReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Roster %s\n", report.ID)
	fmt.Fprintf(&b, "Total students: %d\n", report.Total)
	fmt.Fprintf(&b, "At risk (HIGH): %d\n", report.AtRisk)
	fmt.Fprintf(&b, "Prevalence:     %.1f%%\n", report.Prevalence)
	fmt.Fprintf(&b, "By tier:        HIGH %d / MODERATE %d / LOW %d\n",
		report.Counts[models.RiskTierHigh], report.Counts[models.RiskTierModerate], report.Counts[models.RiskTierLow])

	if report.Highest != nil {
		fmt.Fprintf(&b, "Highest risk:   %s (%s) score %d\n", report.Highest.FullName, report.Highest.StudentID, report.Highest.Result.Score)
	}
	if report.MostStable != nil {
		fmt.Fprintf(&b, "Most stable:    %s (%s) score %d\n", report.MostStable.FullName, report.MostStable.StudentID, report.MostStable.Result.Score)
	}
	if report.MostFactors != nil {
		fmt.Fprintf(&b, "Most factors:   %s (%s) %d factors\n", report.MostFactors.FullName, report.MostFactors.StudentID, len(report.MostFactors.Result.Factors))
	}

	if len(report.Priority) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Priority list:")
		for i, item := range report.Priority {
			fmt.Fprintf(&b, "  %d. %s (%s) %d %s\n", i+1, item.FullName, item.StudentID, item.Result.Score, item.Result.Tier)
		}
	}

	if len(report.RowErrors) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Skipped rows: %d\n", len(report.RowErrors))
		for _, rowErr := range report.RowErrors {
			fmt.Fprintf(&b, "  row %d: %s\n", rowErr.Row, rowErr.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
