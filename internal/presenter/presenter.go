package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/student-risk-api/internal/models"
)

// TierView carries the display attributes a front end needs for a tier.
type TierView struct {
	Title string `json:"title"`
	Style string `json:"style"`
	Icon  string `json:"icon"`
}

// View returns the display attributes for tier.
func View(tier models.RiskTier) TierView {
	switch tier {
	case models.RiskTierHigh:
		return TierView{Title: "HIGH RISK", Style: "risk-high", Icon: "fa-exclamation-triangle"}
	case models.RiskTierModerate:
		return TierView{Title: "MODERATE RISK", Style: "risk-moderate", Icon: "fa-exclamation-circle"}
	default:
		return TierView{Title: "LOW RISK", Style: "risk-low", Icon: "fa-check-circle"}
	}
}

// FactorText formats a factor for display.
func FactorText(f models.RiskFactor) string {
	label := f.Label
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s (+%d points)", label, f.Points)
}

// Renderer writes an assessment result to some output surface.
type Renderer interface {
	Render(w io.Writer, result models.AssessmentResult) error
}

const (
	defaultWidth = 60
	minWidth     = 20
)

// TextRenderer renders a plain terminal panel. Widths below 20 columns are
// raised to 20.
type TextRenderer struct {
	Width int
}

// NewTextRenderer constructs a TextRenderer with the default width.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Width: defaultWidth}
}

// Render implements Renderer.
func (r *TextRenderer) Render(w io.Writer, result models.AssessmentResult) error {
	width := r.Width
	switch {
	case width <= 0:
		width = defaultWidth
	case width < minWidth:
		width = minWidth
	}
	view := View(result.Tier)
	rule := strings.Repeat("=", width)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s  (score %d)\n", view.Title, result.Score)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, result.Message)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Risk factors:")
	if len(result.Factors) == 0 {
		fmt.Fprintln(&b, "  - No risk factors detected")
	}
	for _, f := range result.Factors {
		fmt.Fprintf(&b, "  - %s\n", FactorText(f))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Recommendation:")
	for _, line := range wrap(result.Recommendation, width-2) {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width < 1 {
		width = 1
	}
	lines := make([]string, 0, len(text)/width+1)
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
