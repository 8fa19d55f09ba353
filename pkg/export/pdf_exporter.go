package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0 // A4 landscape minus margins
	headerRowH  = 8.0
	bodyRowH    = 7.0
	minColWidth = 18.0
)

// PDFExporter renders datasets as a landscape table with a repeating header row.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	widths := scaleWidths(data.columnWidths())
	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(220, 230, 241)
		for j, h := range data.Headers {
			pdf.CellFormat(widths[j], headerRowH, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if title != "" && pdf.PageNo() == 1 {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
			pdf.Ln(3)
		}
		header()
	})
	pdf.AddPage()

	pdf.SetFillColor(245, 245, 245)
	for i := range data.Rows {
		fill := i%2 == 1
		for j, value := range data.Record(i) {
			pdf.CellFormat(widths[j], bodyRowH, value, "1", 0, "", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleWidths spreads the page width across columns in proportion to content.
func scaleWidths(chars []int) []float64 {
	total := 0
	for _, n := range chars {
		total += n
	}
	widths := make([]float64, len(chars))
	if total == 0 {
		for i := range widths {
			widths[i] = pageWidth / float64(len(chars))
		}
		return widths
	}
	for i, n := range chars {
		widths[i] = pageWidth * float64(n) / float64(total)
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
	}
	return widths
}
