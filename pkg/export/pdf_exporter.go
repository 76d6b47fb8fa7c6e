package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders datasets and text panels into printable A4 documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Panel is a single titled card, used for one assessment printout.
type Panel struct {
	Title    string
	Subtitle string
	// Accent is the RGB fill used behind the subtitle band.
	Accent   [3]int
	Sections []PanelSection
}

// PanelSection is a heading followed by bullet items or a paragraph.
type PanelSection struct {
	Heading   string
	Items     []string
	Paragraph string
}

// Render creates a PDF document with an optional title, summary lines and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf, latin := newDocument()
	writeTitle(pdf, latin, title)

	if len(data.Summary) > 0 {
		for _, line := range data.Summary {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(45, 6, latin(line[0]), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 6, latin(line[1]), "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 9)
	colWidth := pageWidth / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, latin(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for i := range data.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, 7, truncate(pdf, latin(value), colWidth-2), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderPanel prints a single card style document.
func (e *PDFExporter) RenderPanel(panel Panel, title string) ([]byte, error) {
	pdf, latin := newDocument()
	writeTitle(pdf, latin, title)

	if panel.Title != "" {
		r, g, b := panel.Accent[0], panel.Accent[1], panel.Accent[2]
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 12, latin(panel.Title), "", 1, "C", true, 0, "")
		if panel.Subtitle != "" {
			pdf.SetFont("Arial", "", 11)
			pdf.CellFormat(0, 8, latin(panel.Subtitle), "", 1, "C", true, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	for _, section := range panel.Sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, latin(section.Heading), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, item := range section.Items {
			pdf.MultiCell(0, 6, "- "+latin(item), "", "", false)
		}
		if section.Paragraph != "" {
			pdf.MultiCell(0, 6, latin(section.Paragraph), "", "", false)
		}
		pdf.Ln(4)
	}

	return output(pdf)
}

// newDocument starts an A4 page and returns a translator from UTF-8 to the
// cp1252 encoding of the core fonts, so names with accents print correctly.
func newDocument() (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func writeTitle(pdf *gofpdf.Fpdf, latin func(string) string, title string) {
	if title == "" {
		return
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(latin(title)), "", 1, "C", false, 0, "")
	pdf.Ln(5)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
