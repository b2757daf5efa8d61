package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthLandscape = 277.0
	headerHeight       = 8.0
	rowHeight          = 7.0
)

// PDFExporter renders datasets into a landscape tabular PDF report.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title, an optional subtitle, the table
// body and the totals row. The column header repeats on every page.
func (e *PDFExporter) Render(data Dataset, title, subtitle string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	colWidth := pageWidthLandscape / float64(len(data.Headers))
	align := func(header string) string {
		if data.Numeric[header] {
			return "R"
		}
		return "L"
	}
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, headerHeight, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		writeHeader()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, tr(subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	writeHeader()

	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, rowHeight, tr(row[header]), "1", 0, align(header), false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(data.Totals) > 0 {
		pdf.SetFont("Arial", "B", 9)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, rowHeight, tr(data.Totals[header]), "1", 0, align(header), false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
