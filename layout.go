package main

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Page geometry in millimetres (A4 portrait)
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	pageMargin   = 16.0
	contentWidth = pageWidth - 2*pageMargin
	bottomSafe   = 18.0
	bodyLimit    = pageHeight - bottomSafe // lowest y any body content may reach

	headerBandHeight = 28.0
	headerAccent     = 2.0
	bodyTop          = 36.0

	footerRuleY = pageHeight - 10
	footerTextY = pageHeight - 6

	reportFont = "Helvetica"
)

// Block sizes used by the drawing primitives
const (
	sectionTitleReserve = 14.0
	sectionTitleAdvance = 8.0
	subtitleAdvance     = 5.0

	kvCardHeight = 16.0
	kvCardPitch  = 18.0 // card plus gap below it
	kvColumnGap  = 6.0
	kvGridGap    = 2.0

	barBlockHeight  = 12.0
	barBlockAdvance = 14.0
	barTrackOffset  = 5.0
	barTrackHeight  = 5.0

	tablePadding    = 3.2
	tableLineHeight = 3.6
	tableBodySize   = 8.8
	tableHeadSize   = 9.0

	founderCardHeight  = 10.0
	founderCardAdvance = 13.0
	founderLineHeight  = 5.0

	timelineLineHeight = 3.6
	timelineColumn     = 38.0

	noteBoxHeight   = 8.0
	noteBoxAdvance  = 13.0
	noteLineHeight  = 4.2
	noteTrailingGap = 3.0
)

var (
	colorBrandDark = RGB{16, 24, 39}
	colorBrandBlue = RGB{59, 91, 219}
	colorSlate     = RGB{100, 116, 139}
	colorTextDark  = RGB{30, 41, 59}
	colorBorder    = RGB{222, 226, 235}
	colorPanel     = RGB{248, 250, 253}
	colorWhite     = RGB{255, 255, 255}
	colorRiskTrack = RGB{230, 236, 246}
	colorFundTrack = RGB{232, 238, 247}
)

// allocationPalette colours distribution bar segments in order
var allocationPalette = []RGB{
	{59, 91, 219},
	{16, 185, 129},
	{245, 158, 11},
	{14, 165, 233},
	{139, 92, 246},
	{239, 68, 68},
}

// HeaderChrome is the banner repeated at the top of every page
type HeaderChrome struct {
	Title     string
	Company   string
	Generated string
}

// KeyValue is one labelled card in a key-value grid
type KeyValue struct {
	Label string
	Value string
}

// textStyle is the drawing state the engine restores after a page break
type textStyle struct {
	fontStyle string
	fontSize  float64
	text      RGB
	fill      RGB
	draw      RGB
}

// LayoutEngine lays report content out top to bottom on a paginated canvas.
// It tracks a vertical cursor on the current page; every primitive reserves
// its own height with EnsureSpace before drawing and advances the cursor
// afterwards, so content never lands in the footer band.
type LayoutEngine struct {
	canvas Canvas
	header HeaderChrome
	y      float64
	breaks int
	style  textStyle
}

// NewLayoutEngine creates an engine over canvas; call Start before drawing
func NewLayoutEngine(canvas Canvas, header HeaderChrome) *LayoutEngine {
	return &LayoutEngine{
		canvas: canvas,
		header: header,
		style:  textStyle{fontStyle: "", fontSize: 10, text: colorTextDark},
	}
}

// Start opens the first page
func (e *LayoutEngine) Start() {
	e.canvas.AddPage()
	e.drawHeader()
	e.y = bodyTop
}

// Y returns the cursor position on the current page
func (e *LayoutEngine) Y() float64 { return e.y }

// Page returns the 1-based index of the current page
func (e *LayoutEngine) Page() int { return e.canvas.PageCount() }

// PageBreaks returns how many breaks EnsureSpace has triggered
func (e *LayoutEngine) PageBreaks() int { return e.breaks }

// Advance moves the cursor down by dy
func (e *LayoutEngine) Advance(dy float64) { e.y += dy }

// EnsureSpace starts a new page when needed more millimetres would run past
// the footer band. It reports whether a break happened.
func (e *LayoutEngine) EnsureSpace(needed float64) bool {
	if e.y+needed <= bodyLimit {
		return false
	}
	e.breakPage()
	return true
}

// breakPage starts a new page unconditionally and puts the cursor at the
// top of its body band
func (e *LayoutEngine) breakPage() {
	e.canvas.AddPage()
	e.breaks++
	e.drawHeader()
	e.y = bodyTop
}

func (e *LayoutEngine) setFont(style string, size float64) {
	e.style.fontStyle, e.style.fontSize = style, size
	e.canvas.SetFont(style, size)
}

func (e *LayoutEngine) setTextColor(c RGB) {
	e.style.text = c
	e.canvas.SetTextColor(c)
}

func (e *LayoutEngine) setFillColor(c RGB) {
	e.style.fill = c
	e.canvas.SetFillColor(c)
}

func (e *LayoutEngine) setDrawColor(c RGB) {
	e.style.draw = c
	e.canvas.SetDrawColor(c)
}

func (e *LayoutEngine) restoreStyle() {
	e.canvas.SetFont(e.style.fontStyle, e.style.fontSize)
	e.canvas.SetTextColor(e.style.text)
	e.canvas.SetFillColor(e.style.fill)
	e.canvas.SetDrawColor(e.style.draw)
}

func (e *LayoutEngine) textRight(xRight, y float64, s string) {
	e.canvas.Text(xRight-e.canvas.StringWidth(s), y, s)
}

// drawHeader paints the banner. It talks to the canvas directly and then
// puts back whatever style the interrupted primitive was using.
func (e *LayoutEngine) drawHeader() {
	c := e.canvas
	c.SetFillColor(colorBrandDark)
	c.Rect(0, 0, pageWidth, headerBandHeight, "F")
	c.SetFillColor(colorBrandBlue)
	c.Rect(0, headerBandHeight, pageWidth, headerAccent, "F")

	c.SetTextColor(colorWhite)
	c.SetFont("B", 15)
	c.Text(pageMargin, 13, e.header.Title)

	c.SetFont("", 9)
	c.Text(pageMargin, 20, e.header.Company)
	if e.header.Generated != "" {
		e.textRight(pageWidth-pageMargin, 20, e.header.Generated)
	}
	e.restoreStyle()
}

// StampFooters draws the footer on every page. It runs once the body is
// complete because the total page count is only known then.
func (e *LayoutEngine) StampFooters(note string) {
	c := e.canvas
	total := c.PageCount()
	for i := 1; i <= total; i++ {
		c.SetPage(i)
		c.SetDrawColor(colorBorder)
		c.SetLineWidth(0.2)
		c.Line(pageMargin, footerRuleY, pageWidth-pageMargin, footerRuleY)
		c.SetFont("", 8)
		c.SetTextColor(colorSlate)
		c.Text(pageMargin, footerTextY, note)
		e.textRight(pageWidth-pageMargin, footerTextY, pageLabel(i, total))
	}
	c.SetPage(total)
}

func pageLabel(page, total int) string {
	return "Page " + strconv.Itoa(page) + " of " + strconv.Itoa(total)
}

// SectionTitle draws a heading with an accent marker and optional subtitle
func (e *LayoutEngine) SectionTitle(title, subtitle string) {
	e.EnsureSpace(sectionTitleReserve)
	e.setFillColor(colorBrandBlue)
	e.canvas.RoundedRect(pageMargin, e.y, 2.4, 7, 1, "F")
	e.setFont("B", 12)
	e.setTextColor(colorTextDark)
	e.canvas.Text(pageMargin+6, e.y+5, title)
	e.y += sectionTitleAdvance

	if subtitle != "" {
		e.setFont("", 8.5)
		e.setTextColor(colorSlate)
		e.canvas.Text(pageMargin+6, e.y+3, subtitle)
		e.y += subtitleAdvance
	}
}

// KeyValueGrid lays rows out as fixed-height cards, columns per row.
// The cursor advances by ceil(len(rows)/columns) card pitches plus a
// small gap under the grid.
func (e *LayoutEngine) KeyValueGrid(rows []KeyValue, columns int) {
	if columns < 1 {
		columns = 1
	}
	cardW := (contentWidth - float64(columns-1)*kvColumnGap) / float64(columns)

	for start := 0; start < len(rows); start += columns {
		e.EnsureSpace(kvCardPitch)
		for col := 0; col < columns && start+col < len(rows); col++ {
			item := rows[start+col]
			x := pageMargin + float64(col)*(cardW+kvColumnGap)

			e.setFillColor(colorPanel)
			e.setDrawColor(colorBorder)
			e.canvas.RoundedRect(x, e.y, cardW, kvCardHeight, 2, "FD")

			e.setFont("", 8)
			e.setTextColor(colorSlate)
			e.canvas.Text(x+3, e.y+5, item.Label)

			e.setFont("B", 9.5)
			e.setTextColor(colorTextDark)
			lines := wrapText(e.canvas.StringWidth, orDash(item.Value), cardW-6)
			e.canvas.Text(x+3, e.y+11, lines[0])
		}
		e.y += kvCardPitch
	}
	e.y += kvGridGap
}

// WrappedText word-wraps text to maxWidth using the current font, reserving
// each line before drawing it. Empty text renders as "—".
func (e *LayoutEngine) WrappedText(text string, x, maxWidth, lineHeight float64) {
	for _, line := range wrapText(e.canvas.StringWidth, orDash(text), maxWidth) {
		e.EnsureSpace(lineHeight)
		e.canvas.Text(x, e.y+baselineOffset(lineHeight), line)
		e.y += lineHeight
	}
}

// baselineOffset places a text baseline inside a line box of height h
func baselineOffset(h float64) float64 {
	return h * 0.76
}

// Table draws a grid table across as many pages as it needs, repeating the
// header row at the top of each continuation page. Rows taller than a page
// are split between pages. It returns the cursor
// position just below the last row.
func (e *LayoutEngine) Table(head []string, body [][]string) float64 {
	if len(head) == 0 {
		return e.y
	}
	colW := contentWidth / float64(len(head))

	e.setFont("B", tableHeadSize)
	headLines := e.wrapCells(head, colW)
	headH := cellRowHeight(headLines)

	// Keep the header together with the first row, or with its first
	// line when the row is too tall for any page
	first := headH
	var firstLines [][]string
	if len(body) > 0 {
		e.setFont("", tableBodySize)
		firstLines = e.wrapCells(body[0], colW)
		rowH := cellRowHeight(firstLines)
		if rowH > tableRowCapacity(headH) {
			rowH = tableLineHeight + 2*tablePadding
		}
		first += rowH
	}
	e.EnsureSpace(first)
	e.drawTableRow(headLines, colW, headH, true, false)

	for i, row := range body {
		e.setFont("", tableBodySize)
		lines := firstLines
		if i > 0 {
			lines = e.wrapCells(row, colW)
		}
		e.drawBodyRow(lines, headLines, colW, headH, i%2 == 1)
	}
	return e.y
}

// tableRowCapacity is the tallest row that fits under a repeated header on
// a fresh page
func tableRowCapacity(headH float64) float64 {
	return bodyLimit - bodyTop - headH
}

// drawBodyRow draws one body row. A row that fits on a fresh page is moved
// there whole; a taller one is split line by line, with the header
// repeated on every page it continues onto.
func (e *LayoutEngine) drawBodyRow(lines, headLines [][]string, colW, headH float64, alternate bool) {
	newPage := func() {
		e.breakPage()
		e.drawTableRow(headLines, colW, headH, true, false)
	}

	h := cellRowHeight(lines)
	if e.y+h > bodyLimit && h <= tableRowCapacity(headH) {
		newPage()
	}
	for {
		h = cellRowHeight(lines)
		if e.y+h <= bodyLimit {
			e.drawTableRow(lines, colW, h, false, alternate)
			return
		}
		fit := int((bodyLimit - e.y - 2*tablePadding) / tableLineHeight)
		if fit < 1 {
			newPage()
			continue
		}
		var part [][]string
		part, lines = splitCellLines(lines, fit)
		e.drawTableRow(part, colW, cellRowHeight(part), false, alternate)
		newPage()
	}
}

// splitCellLines cuts every cell after its first n lines
func splitCellLines(cells [][]string, n int) (head, rest [][]string) {
	head = make([][]string, len(cells))
	rest = make([][]string, len(cells))
	for i, lines := range cells {
		k := min(n, len(lines))
		head[i], rest[i] = lines[:k], lines[k:]
	}
	return head, rest
}

func (e *LayoutEngine) wrapCells(cells []string, colW float64) [][]string {
	out := make([][]string, len(cells))
	for i, cell := range cells {
		out[i] = wrapText(e.canvas.StringWidth, cell, colW-2*tablePadding)
	}
	return out
}

func cellRowHeight(cells [][]string) float64 {
	maxLines := 1
	for _, lines := range cells {
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	return float64(maxLines)*tableLineHeight + 2*tablePadding
}

func (e *LayoutEngine) drawTableRow(cells [][]string, colW, h float64, isHead, alternate bool) {
	fill, text := colorWhite, colorTextDark
	style, size := "", tableBodySize
	switch {
	case isHead:
		fill, text, style, size = colorBrandDark, colorWhite, "B", tableHeadSize
	case alternate:
		fill = colorPanel
	}

	e.setDrawColor(colorBorder)
	e.canvas.SetLineWidth(0.2)
	e.setFillColor(fill)
	e.setFont(style, size)
	e.setTextColor(text)
	for col, lines := range cells {
		x := pageMargin + float64(col)*colW
		e.canvas.Rect(x, e.y, colW, h, "FD")
		for k, line := range lines {
			e.canvas.Text(x+tablePadding, e.y+tablePadding+float64(k)*tableLineHeight+baselineOffset(tableLineHeight), line)
		}
	}
	e.y += h
}

// BarSegment is one filled slice of the allocation distribution bar
type BarSegment struct {
	Category   string
	Percentage int
	X          float64
	Width      float64
	Color      RGB
}

// AllocationSegments lays allocations out left to right along a track.
// Each segment is clamped to 0-100% of the track; a set summing past 100%
// is drawn as-is and runs past the end of the track.
func AllocationSegments(allocs []FundAllocation, x, trackWidth float64) []BarSegment {
	var segments []BarSegment
	for i, a := range allocs {
		width := float64(clampPercent(a.Percentage)) / 100 * trackWidth
		if width <= 0 {
			continue
		}
		segments = append(segments, BarSegment{
			Category:   a.Category,
			Percentage: a.Percentage,
			X:          x,
			Width:      width,
			Color:      allocationPalette[i%len(allocationPalette)],
		})
		x += width
	}
	return segments
}

// AllocationBar draws the labelled distribution bar for allocations
func (e *LayoutEngine) AllocationBar(label string, allocs []FundAllocation) []BarSegment {
	e.EnsureSpace(barBlockHeight)
	e.barLabel(label)
	trackY := e.y + barTrackOffset
	e.setFillColor(colorFundTrack)
	e.canvas.RoundedRect(pageMargin, trackY, contentWidth, barTrackHeight, 2, "F")

	segments := AllocationSegments(allocs, pageMargin, contentWidth)
	for _, s := range segments {
		e.setFillColor(s.Color)
		e.canvas.Rect(s.X, trackY, s.Width, barTrackHeight, "F")
	}
	e.y += barBlockAdvance
	return segments
}

// RiskBandBar draws the 0-3 risk score scale, filled to score when rated
func (e *LayoutEngine) RiskBandBar(label string, score float64, rated bool, band RiskBand) {
	e.EnsureSpace(barBlockHeight)
	e.barLabel(label)
	trackY := e.y + barTrackOffset
	e.setFillColor(colorRiskTrack)
	e.canvas.RoundedRect(pageMargin, trackY, contentWidth, barTrackHeight, 2, "F")
	if rated {
		w := math.Max(0, math.Min(score, 3)) / 3 * contentWidth
		e.setFillColor(band.Color)
		e.canvas.RoundedRect(pageMargin, trackY, w, barTrackHeight, 2, "F")
	}
	e.y += barBlockAdvance
}

func (e *LayoutEngine) barLabel(label string) {
	e.setFont("", 8.5)
	e.setTextColor(colorSlate)
	e.canvas.Text(pageMargin, e.y+3, label)
}

// FounderCard draws a founder's name/role card followed by experience and
// background text when present.
func (e *LayoutEngine) FounderCard(index int, f Founder) {
	e.EnsureSpace(founderCardHeight)
	e.setFillColor(colorPanel)
	e.setDrawColor(colorBorder)
	e.canvas.RoundedRect(pageMargin, e.y, contentWidth, founderCardHeight, 2, "FD")

	e.setFont("B", 9.5)
	e.setTextColor(colorTextDark)
	e.canvas.Text(pageMargin+3, e.y+6.5, founderHeading(index, f))
	e.y += founderCardAdvance

	if f.Experience != "" {
		e.setFont("", 8)
		lines := wrapText(e.canvas.StringWidth, f.Experience, contentWidth-24)
		for i, line := range lines {
			e.EnsureSpace(founderLineHeight)
			baseline := e.y + baselineOffset(founderLineHeight)
			if i == 0 {
				e.setFont("B", 8)
				e.setTextColor(colorSlate)
				e.canvas.Text(pageMargin+3, baseline, "Experience:")
			}
			e.setFont("", 8)
			e.setTextColor(colorTextDark)
			e.canvas.Text(pageMargin+21, baseline, line)
			e.y += founderLineHeight
		}
	}

	if f.Background != "" {
		e.setFont("B", 8)
		e.setTextColor(colorSlate)
		e.EnsureSpace(founderLineHeight)
		e.canvas.Text(pageMargin+3, e.y+3.5, "Background Summary")
		e.y += 4
		e.setFont("", 8.8)
		e.setTextColor(colorTextDark)
		e.WrappedText(f.Background, pageMargin+3, contentWidth-6, 4.1)
	}
	e.y += 4
}

func founderHeading(index int, f Founder) string {
	name := f.Name
	if name == "" {
		name = "Founder " + strconv.Itoa(index+1)
	}
	if f.Role != "" {
		return name + " — " + f.Role
	}
	return name
}

// TimelineEntry draws a milestone: marker and title on the left, the
// timeline text right-aligned in a narrow column.
func (e *LayoutEngine) TimelineEntry(m Milestone) {
	e.setFont("B", 9.3)
	titleLines := wrapText(e.canvas.StringWidth, m.Title, contentWidth-6-timelineColumn-4)
	var timeLines []string
	if m.Timeline != "" {
		e.setFont("", 8.4)
		timeLines = wrapText(e.canvas.StringWidth, m.Timeline, timelineColumn)
	}
	// An entry that fits on one page is never split
	if h := timelineEntryHeight(max(len(titleLines), len(timeLines))); h <= bodyLimit-bodyTop {
		e.EnsureSpace(h)
	}

	marker := true
	for marker || len(titleLines) > 0 || len(timeLines) > 0 {
		fit := int((bodyLimit - e.y - timelineEntryHeight(0)) / timelineLineHeight)
		if fit < 1 {
			e.breakPage()
			continue
		}
		n := min(max(len(titleLines), len(timeLines), 1), fit)
		titlePart, timePart := titleLines[:min(n, len(titleLines))], timeLines[:min(n, len(timeLines))]
		titleLines, timeLines = titleLines[len(titlePart):], timeLines[len(timePart):]

		e.drawTimelineRows(titlePart, timePart, marker)
		e.y += timelineEntryHeight(n)
		marker = false
		if len(titleLines) > 0 || len(timeLines) > 0 {
			e.breakPage()
		}
	}
}

func (e *LayoutEngine) drawTimelineRows(titleLines, timeLines []string, marker bool) {
	if marker {
		e.setFillColor(colorBrandBlue)
		e.canvas.Circle(pageMargin+2, e.y+3.1, 1.4, "F")
	}

	e.setFont("B", 9.3)
	e.setTextColor(colorTextDark)
	for k, line := range titleLines {
		e.canvas.Text(pageMargin+6, e.y+4.2+float64(k)*timelineLineHeight, line)
	}

	e.setFont("", 8.4)
	e.setTextColor(colorSlate)
	for k, line := range timeLines {
		e.textRight(pageWidth-pageMargin, e.y+4.2+float64(k)*timelineLineHeight, line)
	}
}

// timelineEntryHeight is 7.5mm for a single-line entry
func timelineEntryHeight(rows int) float64 {
	return 3.9 + float64(rows)*timelineLineHeight
}

// Message draws a single muted line, e.g. an empty-state notice
func (e *LayoutEngine) Message(text string) {
	e.EnsureSpace(6)
	e.setFont("", 9)
	e.setTextColor(colorSlate)
	e.canvas.Text(pageMargin, e.y+4, text)
	e.y += 6
}

// NoteBlock draws a labelled box followed by the wrapped note text. The
// label is kept on the same page as the first line of text.
func (e *LayoutEngine) NoteBlock(label, content string) {
	e.EnsureSpace(noteBoxAdvance + noteLineHeight)
	e.setFillColor(colorPanel)
	e.setDrawColor(colorBorder)
	e.canvas.RoundedRect(pageMargin, e.y, contentWidth, noteBoxHeight, 2, "FD")
	e.setFont("B", 8.5)
	e.setTextColor(colorTextDark)
	e.canvas.Text(pageMargin+3, e.y+5.3, label)
	e.y += noteBoxAdvance

	e.setFont("", 8.8)
	e.setTextColor(colorTextDark)
	e.WrappedText(content, pageMargin+2.5, contentWidth-5, noteLineHeight)
	e.y += noteTrailingGap
}

// wrapText breaks text into lines no wider than maxWidth as measured by
// width. Explicit newlines are kept; a word wider than the line is split
// by characters. Always returns at least one line.
func wrapText(width func(string) float64, text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if width(candidate) <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = word
			for width(current) > maxWidth && utf8.RuneCountInString(current) > 1 {
				head, tail := splitToWidth(width, current, maxWidth)
				lines = append(lines, head)
				current = tail
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// splitToWidth returns the longest prefix of word that fits (at least one rune)
func splitToWidth(width func(string) float64, word string, maxWidth float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && width(string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
