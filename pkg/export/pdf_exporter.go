package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 277.0
	rowHeight  = 7.0
	minColumn  = 18.0
	headerFill = 230
)

// PDFExporter renders tables into a landscape A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays the table out with column widths proportional to their longest cell.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(table.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	widths := columnWidths(table)
	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(headerFill, headerFill, headerFill)
		for i, h := range table.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	header()
	for _, row := range table.Rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], rowHeight, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(table Table) []float64 {
	longest := make([]int, len(table.Headers))
	total := 0
	for i, h := range table.Headers {
		longest[i] = len(h)
	}
	for _, row := range table.Rows {
		for i, cell := range row {
			longest[i] = max(longest[i], len(cell))
		}
	}
	for _, n := range longest {
		total += n
	}

	widths := make([]float64, len(longest))
	flexible := pageWidth - minColumn*float64(len(longest))
	for i, n := range longest {
		widths[i] = minColumn
		if total > 0 && flexible > 0 {
			widths[i] += flexible * float64(n) / float64(total)
		}
	}
	return widths
}
