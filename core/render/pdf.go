// Package render — PDF renderer.
// Lays out the article collection as a simple A4 report using gofpdf:
// a title, then one block per article with its title in bold and the
// author and date beneath it.
package render

import (
	"bytes"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders articles as a PDF document.
type PDFRenderer struct {
	Heading string
}

// NewPDFRenderer creates a PDFRenderer with the given heading.
func NewPDFRenderer(heading string) *PDFRenderer {
	if heading == "" {
		heading = "Articles"
	}
	return &PDFRenderer{Heading: heading}
}

// Render converts the articles into PDF bytes.
func (r *PDFRenderer) Render(articles []core.Article) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252; translate the UTF-8 input.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(r.Heading), "", "L", false)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, fmt.Sprintf("%d articles", len(articles)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	for _, a := range articles {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(a.Title), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.MultiCell(0, 5, tr(a.Author+" | "+a.Date), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}
