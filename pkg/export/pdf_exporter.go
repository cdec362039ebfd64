package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SummarySection is a block of label/value pairs rendered above the table.
type SummarySection struct {
	Title string
	Items [][2]string
}

// PDFExporter renders a summary report with an optional detail table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title, summary sections and a table body.
func (e *PDFExporter) Render(title string, sections []SummarySection, table Dataset) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, section := range sections {
		if section.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, section.Title, "", 1, "", false, 0, "")
		}
		pdf.SetFont("Arial", "", 10)
		for _, item := range section.Items {
			pdf.CellFormat(60, 6, item[0], "", 0, "", false, 0, "")
			pdf.CellFormat(0, 6, item[1], "", 1, "", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(table.Headers) > 0 {
		pdf.SetFont("Arial", "B", 10)
		colWidth := 190.0 / float64(len(table.Headers))
		for _, header := range table.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range table.Rows {
			for i := range table.Headers {
				value := ""
				if i < len(row) {
					value = row[i]
				}
				pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
