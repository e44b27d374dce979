package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WeekGrid describes a seven-column calendar page. Box positions are given in
// pixels relative to a grid of GridHeight pixels per full day; the renderer
// scales them onto the page.
type WeekGrid struct {
	Title      string
	GridHeight float64
	Columns    []WeekGridColumn
}

// WeekGridColumn is a single day column of the grid.
type WeekGridColumn struct {
	Label  string
	Blocks []WeekGridBlock
}

// WeekGridBlock is one positioned box inside a column.
type WeekGridBlock struct {
	Label  string
	Top    float64
	Height float64
	Shaded bool
}

// PDFExporter renders datasets and week grids into PDF documents.
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
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i := range data.Headers {
			var value string
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWeekGrid draws a week calendar page in landscape with one column per
// day and time-proportional blocks.
func (e *PDFExporter) RenderWeekGrid(grid WeekGrid) ([]byte, error) {
	if len(grid.Columns) == 0 {
		return nil, fmt.Errorf("week grid requires at least one column")
	}
	if grid.GridHeight <= 0 {
		return nil, fmt.Errorf("week grid requires a positive grid height")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if grid.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, grid.Title, "", 1, "C", false, 0, "")
	}

	const (
		gutterWidth  = 14.0
		headerHeight = 7.0
		bodyHeight   = 160.0
	)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right - gutterWidth) / float64(len(grid.Columns))
	bodyTop := pdf.GetY() + headerHeight
	scale := bodyHeight / grid.GridHeight

	pdf.SetFont("Arial", "B", 9)
	pdf.SetX(left + gutterWidth)
	for _, col := range grid.Columns {
		pdf.CellFormat(colWidth, headerHeight, col.Label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	// Hour gutter and ruling lines.
	pdf.SetFont("Arial", "", 6)
	pdf.SetDrawColor(200, 200, 200)
	hours := 24
	for h := 0; h <= hours; h++ {
		y := bodyTop + float64(h)*(bodyHeight/float64(hours))
		pdf.Line(left+gutterWidth, y, left+gutterWidth+colWidth*float64(len(grid.Columns)), y)
		if h < hours {
			pdf.SetXY(left, y)
			pdf.CellFormat(gutterWidth-2, 3, fmt.Sprintf("%02d:00", h), "", 0, "R", false, 0, "")
		}
	}

	pdf.SetDrawColor(120, 120, 120)
	for i := range grid.Columns {
		x := left + gutterWidth + colWidth*float64(i)
		pdf.Line(x, bodyTop, x, bodyTop+bodyHeight)
	}
	pdf.Line(left+gutterWidth+colWidth*float64(len(grid.Columns)), bodyTop, left+gutterWidth+colWidth*float64(len(grid.Columns)), bodyTop+bodyHeight)

	for i, col := range grid.Columns {
		x := left + gutterWidth + colWidth*float64(i)
		for _, block := range col.Blocks {
			y := bodyTop + block.Top*scale
			h := block.Height * scale
			if y+h > bodyTop+bodyHeight {
				h = bodyTop + bodyHeight - y
			}
			if h <= 0 {
				continue
			}
			if block.Shaded {
				pdf.SetFillColor(235, 235, 235)
			} else {
				pdf.SetFillColor(214, 230, 248)
			}
			pdf.Rect(x+0.5, y, colWidth-1, h, "F")
			if block.Label != "" && h >= 3 {
				pdf.SetXY(x+1, y+0.5)
				pdf.SetFont("Arial", "", 6)
				pdf.CellFormat(colWidth-2, 3, block.Label, "", 0, "L", false, 0, "")
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render week grid pdf: %w", err)
	}
	return buf.Bytes(), nil
}
