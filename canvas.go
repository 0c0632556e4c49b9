package main

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

// Canvas is the paginated drawing surface the layout engine renders onto.
// Coordinates are millimetres from the top-left corner of the page; text
// is positioned by its baseline.
type Canvas interface {
	AddPage()
	SetPage(n int)
	PageCount() int

	SetFont(style string, size float64)
	SetTextColor(c RGB)
	SetFillColor(c RGB)
	SetDrawColor(c RGB)
	SetLineWidth(w float64)

	Text(x, y float64, s string)
	Rect(x, y, w, h float64, style string)
	RoundedRect(x, y, w, h, r float64, style string)
	Circle(x, y, r float64, style string)
	Line(x1, y1, x2, y2 float64)

	// StringWidth measures s in the current font
	StringWidth(s string) float64
}

// fpdfCanvas draws onto an A4 portrait fpdf document
type fpdfCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newFPDFCanvas() *fpdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	// Page breaks are owned by the layout engine
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont(reportFont, "", 10)
	return &fpdfCanvas{
		pdf: pdf,
		// Core fonts are cp1252; this maps "—", "’" and friends
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *fpdfCanvas) AddPage()       { c.pdf.AddPage() }
func (c *fpdfCanvas) SetPage(n int)  { c.pdf.SetPage(n) }
func (c *fpdfCanvas) PageCount() int { return c.pdf.PageCount() }

func (c *fpdfCanvas) SetFont(style string, size float64) { c.pdf.SetFont(reportFont, style, size) }
func (c *fpdfCanvas) SetTextColor(col RGB)              { c.pdf.SetTextColor(col.R, col.G, col.B) }
func (c *fpdfCanvas) SetFillColor(col RGB)              { c.pdf.SetFillColor(col.R, col.G, col.B) }
func (c *fpdfCanvas) SetDrawColor(col RGB)              { c.pdf.SetDrawColor(col.R, col.G, col.B) }
func (c *fpdfCanvas) SetLineWidth(w float64)            { c.pdf.SetLineWidth(w) }

func (c *fpdfCanvas) Text(x, y float64, s string) { c.pdf.Text(x, y, c.tr(s)) }

func (c *fpdfCanvas) Rect(x, y, w, h float64, style string) { c.pdf.Rect(x, y, w, h, style) }

func (c *fpdfCanvas) RoundedRect(x, y, w, h, r float64, style string) {
	c.pdf.RoundedRect(x, y, w, h, r, "1234", style)
}

func (c *fpdfCanvas) Circle(x, y, r float64, style string) { c.pdf.Circle(x, y, r, style) }

func (c *fpdfCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *fpdfCanvas) StringWidth(s string) float64 { return c.pdf.GetStringWidth(c.tr(s)) }

// Bytes finalises the document
func (c *fpdfCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// DrawOp is one drawing call captured by the recording canvas.
// Top/Bottom bound the ink on the page (text uses ascent/descent estimates).
type DrawOp struct {
	Page   int     `json:"page"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Bottom float64 `json:"bottom"`
	Text   string  `json:"text,omitempty"`
	Fill   RGB     `json:"-"`
	Color  RGB     `json:"-"`
}

const ptToMM = 25.4 / 72

// recordingCanvas keeps drawing calls in memory instead of producing a PDF
type recordingCanvas struct {
	page      int
	pages     int
	fontStyle string
	fontSize  float64
	textColor RGB
	fillColor RGB
	drawColor RGB
	ops       []DrawOp
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{fontSize: 10}
}

func (c *recordingCanvas) AddPage() {
	c.pages++
	c.page = c.pages
}

func (c *recordingCanvas) SetPage(n int) {
	if n >= 1 && n <= c.pages {
		c.page = n
	}
}

func (c *recordingCanvas) PageCount() int { return c.pages }

func (c *recordingCanvas) SetFont(style string, size float64) {
	c.fontStyle = style
	c.fontSize = size
}

func (c *recordingCanvas) SetTextColor(col RGB)   { c.textColor = col }
func (c *recordingCanvas) SetFillColor(col RGB)   { c.fillColor = col }
func (c *recordingCanvas) SetDrawColor(col RGB)   { c.drawColor = col }
func (c *recordingCanvas) SetLineWidth(w float64) {}

func (c *recordingCanvas) Text(x, y float64, s string) {
	size := c.fontSize * ptToMM
	c.record(DrawOp{Kind: "text", X: x, Top: y - 0.7*size, Width: c.StringWidth(s), Bottom: y + 0.25*size, Text: s, Color: c.textColor})
}

func (c *recordingCanvas) Rect(x, y, w, h float64, style string) {
	c.record(DrawOp{Kind: "rect", X: x, Top: y, Width: w, Bottom: y + h, Fill: c.fillColor, Color: c.drawColor})
}

func (c *recordingCanvas) RoundedRect(x, y, w, h, r float64, style string) {
	c.record(DrawOp{Kind: "rounded_rect", X: x, Top: y, Width: w, Bottom: y + h, Fill: c.fillColor, Color: c.drawColor})
}

func (c *recordingCanvas) Circle(x, y, r float64, style string) {
	c.record(DrawOp{Kind: "circle", X: x - r, Top: y - r, Width: 2 * r, Bottom: y + r, Fill: c.fillColor})
}

func (c *recordingCanvas) Line(x1, y1, x2, y2 float64) {
	top, bottom := y1, y2
	if top > bottom {
		top, bottom = bottom, top
	}
	c.record(DrawOp{Kind: "line", X: x1, Top: top, Width: x2 - x1, Bottom: bottom, Color: c.drawColor})
}

// StringWidth approximates Helvetica at half an em per character
func (c *recordingCanvas) StringWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * c.fontSize * ptToMM * 0.5
}

func (c *recordingCanvas) record(op DrawOp) {
	op.Page = c.page
	c.ops = append(c.ops, op)
}

// textOps returns the text drawn on a page, in drawing order
func (c *recordingCanvas) textOps(page int) []string {
	var out []string
	for _, op := range c.ops {
		if op.Page == page && op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// allText returns every text op in drawing order
func (c *recordingCanvas) allText() []string {
	var out []string
	for _, op := range c.ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}
