package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Fact is a label/value line printed below a report title.
type Fact struct {
	Label string
	Value string
}

// Section is a headed table inside a report.
type Section struct {
	Heading string
	Table   Dataset
}

// Report is a multi-section PDF document.
type Report struct {
	Title    string
	Facts    []Fact
	Sections []Section
}

// PDFExporter renders reports with gofpdf core fonts.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderTable renders a single dataset under title.
func (e *PDFExporter) RenderTable(data Dataset, title string) ([]byte, error) {
	return e.Render(Report{Title: title, Sections: []Section{{Table: data}}})
}

// Render lays out the report on A4 portrait pages.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	if len(report.Sections) == 0 && len(report.Facts) == 0 {
		return nil, fmt.Errorf("pdf report is empty")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(report.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, fact := range report.Facts {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 6, tr(fact.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(fact.Value), "", "", false)
	}

	for _, section := range report.Sections {
		if len(section.Table.Headers) == 0 {
			continue
		}
		pdf.Ln(4)
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "", false, 0, "")
		}
		colWidth := 190.0 / float64(len(section.Table.Headers))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range section.Table.Headers {
			pdf.CellFormat(colWidth, 7, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Table.Rows {
			for _, header := range section.Table.Headers {
				pdf.CellFormat(colWidth, 6, tr(row[header]), "1", 0, "", false, 0, "")
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
