package main

import (
	"math"
	"strings"
	"testing"
)

const layoutEpsilon = 1e-6

func newTestEngine() (*LayoutEngine, *recordingCanvas) {
	canvas := newRecordingCanvas()
	engine := NewLayoutEngine(canvas, HeaderChrome{Title: "Investment Deal Summary", Company: "Acme", Generated: "Generated Jan 2, 2026"})
	engine.Start()
	return engine, canvas
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func countOf(list []string, s string) int {
	n := 0
	for _, item := range list {
		if item == s {
			n++
		}
	}
	return n
}

// assertBands checks every op sits in the header band, the footer band or
// the usable body band
func assertBands(t *testing.T, ops []DrawOp) {
	t.Helper()
	for _, op := range ops {
		switch {
		case op.Bottom <= headerBandHeight+headerAccent+layoutEpsilon:
		case op.Top >= footerRuleY-2:
		default:
			if op.Top < bodyTop-layoutEpsilon || op.Bottom > bodyLimit+layoutEpsilon {
				t.Errorf("page %d %s %q spans %.2f-%.2f, outside body band %.0f-%.0f",
					op.Page, op.Kind, op.Text, op.Top, op.Bottom, bodyTop, bodyLimit)
			}
		}
	}
}

func TestEnsureSpaceBreaksExactlyOnce(t *testing.T) {
	engine, canvas := newTestEngine()

	// 40 six-millimetre lines fill 36..276 exactly
	for i := 0; i < 40; i++ {
		engine.Message("line")
	}
	if engine.PageBreaks() != 0 {
		t.Fatalf("page breaks after 40 lines = %d, want 0", engine.PageBreaks())
	}
	if math.Abs(engine.Y()-276) > layoutEpsilon {
		t.Fatalf("cursor = %.2f, want 276", engine.Y())
	}

	engine.Message("overflow")
	if engine.PageBreaks() != 1 {
		t.Fatalf("page breaks = %d, want 1", engine.PageBreaks())
	}
	if engine.Page() != 2 {
		t.Errorf("page = %d, want 2", engine.Page())
	}
	if math.Abs(engine.Y()-(bodyTop+6)) > layoutEpsilon {
		t.Errorf("cursor after break = %.2f, want %.2f", engine.Y(), bodyTop+6)
	}
	if contains(canvas.textOps(1), "overflow") || !contains(canvas.textOps(2), "overflow") {
		t.Error("overflowing block should be drawn on the new page only")
	}
	if !contains(canvas.textOps(2), "Investment Deal Summary") {
		t.Error("header should be redrawn on the new page")
	}
	assertBands(t, canvas.ops)
}

func TestEnsureSpaceNoBreakWhenExactFit(t *testing.T) {
	engine, _ := newTestEngine()
	engine.Advance(bodyLimit - bodyTop - 10)
	if engine.EnsureSpace(10) {
		t.Error("block ending exactly at the body limit should not break")
	}
	if !engine.EnsureSpace(10.01) {
		t.Error("block past the body limit should break")
	}
}

func TestKeyValueGridAdvancesPerRow(t *testing.T) {
	engine, _ := newTestEngine()
	rows := []KeyValue{{"A", "1"}, {"B", "2"}, {"C", "3"}, {"D", "4"}, {"E", "5"}}
	engine.KeyValueGrid(rows, 2)

	want := bodyTop + 3*kvCardPitch + kvGridGap
	if math.Abs(engine.Y()-want) > layoutEpsilon {
		t.Errorf("cursor = %.2f, want %.2f", engine.Y(), want)
	}
}

func TestKeyValueGridReservesFullPitch(t *testing.T) {
	engine, canvas := newTestEngine()
	// the card itself fits but the gap under it does not
	engine.Advance(bodyLimit - bodyTop - kvCardHeight - 1)
	engine.KeyValueGrid([]KeyValue{{"First", "1"}}, 2)

	if contains(canvas.textOps(1), "First") || !contains(canvas.textOps(2), "First") {
		t.Error("the card row should move to page 2")
	}
}

func TestKeyValueGridBreaksBetweenRows(t *testing.T) {
	engine, canvas := newTestEngine()
	// room for one card row only
	engine.Advance(bodyLimit - bodyTop - kvCardPitch)
	engine.KeyValueGrid([]KeyValue{{"First", "1"}, {"Second", "2"}, {"Third", "3"}}, 2)

	if !contains(canvas.textOps(1), "First") || !contains(canvas.textOps(1), "Second") {
		t.Error("first row should stay on page 1")
	}
	if !contains(canvas.textOps(2), "Third") {
		t.Error("second row should move to page 2")
	}
	assertBands(t, canvas.ops)
}

func TestAllocationSegmentsSumToTrack(t *testing.T) {
	allocs := []FundAllocation{
		{Category: "Product", Percentage: 30},
		{Category: "Hiring", Percentage: 20},
		{Category: "Marketing", Percentage: 50},
	}
	segments := AllocationSegments(allocs, pageMargin, contentWidth)
	if len(segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(segments))
	}

	total := 0.0
	x := pageMargin
	for _, s := range segments {
		if math.Abs(s.X-x) > layoutEpsilon {
			t.Errorf("%s starts at %.3f, want %.3f", s.Category, s.X, x)
		}
		x += s.Width
		total += s.Width
	}
	if math.Abs(total-contentWidth) > layoutEpsilon {
		t.Errorf("segment widths sum to %.4f, want %.4f", total, contentWidth)
	}
}

func TestAllocationSegmentsOverHundredDrawSequentially(t *testing.T) {
	segments := AllocationSegments([]FundAllocation{{Percentage: 60}, {Percentage: 60}}, 0, 100)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if math.Abs(segments[0].Width-60) > layoutEpsilon || math.Abs(segments[1].Width-60) > layoutEpsilon {
		t.Errorf("widths = %.1f, %.1f; want 60, 60 (set not renormalized)", segments[0].Width, segments[1].Width)
	}
	if math.Abs(segments[1].X-60) > layoutEpsilon {
		t.Errorf("second segment starts at %.1f, want 60", segments[1].X)
	}
}

func TestAllocationSegmentsClampEachSegment(t *testing.T) {
	segments := AllocationSegments([]FundAllocation{{Percentage: 0}, {Percentage: 150}, {Percentage: -20}}, 0, 100)
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1 (zero and negative skipped)", len(segments))
	}
	if math.Abs(segments[0].Width-100) > layoutEpsilon {
		t.Errorf("width = %.1f, want 100 (clamped)", segments[0].Width)
	}
	if segments[0].Color != allocationPalette[1] {
		t.Errorf("colour should follow input position")
	}
}

func TestTableRepeatsHeaderOnContinuationPages(t *testing.T) {
	engine, canvas := newTestEngine()

	var body [][]string
	for i := 0; i < 60; i++ {
		body = append(body, []string{"Row", "Value"})
	}
	engine.Table([]string{"Metric", "Amount"}, body)

	pages := canvas.PageCount()
	if pages < 3 {
		t.Fatalf("pages = %d, want at least 3", pages)
	}
	for p := 1; p <= pages; p++ {
		if got := countOf(canvas.textOps(p), "Metric"); got != 1 {
			t.Errorf("page %d has %d header rows, want 1", p, got)
		}
	}
	if got := countOf(canvas.allText(), "Row"); got != 60 {
		t.Errorf("drew %d body rows, want 60", got)
	}
	assertBands(t, canvas.ops)
}

func TestTableKeepsHeaderWithFirstRow(t *testing.T) {
	engine, canvas := newTestEngine()
	// header row fits, header plus first row does not
	rowH := tableLineHeight + 2*tablePadding
	engine.Advance(bodyLimit - bodyTop - rowH - 1)
	engine.Table([]string{"Metric", "Amount"}, [][]string{{"Revenue", "$1"}})

	if contains(canvas.textOps(1), "Metric") {
		t.Error("header row should not be left alone at the bottom of page 1")
	}
	if !contains(canvas.textOps(2), "Metric") || !contains(canvas.textOps(2), "Revenue") {
		t.Error("header and first row should both be on page 2")
	}
	if engine.PageBreaks() != 1 {
		t.Errorf("page breaks = %d, want 1", engine.PageBreaks())
	}
}

func TestTableSplitsRowTallerThanPage(t *testing.T) {
	engine, canvas := newTestEngine()
	category := strings.Repeat("Hiring engineers ", 400)
	engine.Table([]string{"Category", "Allocation"}, [][]string{{category, "100%"}})

	pages := canvas.PageCount()
	if pages < 2 {
		t.Fatalf("pages = %d, want the row split over several pages", pages)
	}
	for p := 1; p <= pages; p++ {
		texts := canvas.textOps(p)
		if got := countOf(texts, "Category"); got != 1 {
			t.Errorf("page %d has %d header rows, want 1", p, got)
		}
		body := 0
		for _, text := range texts {
			if strings.HasPrefix(text, "Hiring") || strings.HasPrefix(text, "engineers") {
				body++
			}
		}
		if body == 0 {
			t.Errorf("page %d carries no part of the row", p)
		}
	}

	engine.setFont("", tableBodySize)
	wantLines := len(wrapText(canvas.StringWidth, category, contentWidth/2-2*tablePadding))
	gotLines := 0
	for _, text := range canvas.allText() {
		if strings.HasPrefix(text, "Hiring") || strings.HasPrefix(text, "engineers") {
			gotLines++
		}
	}
	if gotLines != wantLines {
		t.Errorf("drew %d row lines, want %d", gotLines, wantLines)
	}
	if got := countOf(canvas.allText(), "100%"); got != 1 {
		t.Errorf("short cell drawn %d times, want 1", got)
	}
	if engine.PageBreaks() != pages-1 {
		t.Errorf("page breaks = %d, pages = %d", engine.PageBreaks(), pages)
	}
	assertBands(t, canvas.ops)
}

func TestTimelineEntrySplitsTallTitle(t *testing.T) {
	engine, canvas := newTestEngine()
	engine.Advance(100)
	engine.TimelineEntry(Milestone{Title: strings.Repeat("Regional rollout ", 530), Timeline: "Q4 2027"})

	if canvas.PageCount() < 2 {
		t.Fatalf("pages = %d, want the title split over several pages", canvas.PageCount())
	}
	if !contains(canvas.textOps(1), "Q4 2027") {
		t.Error("the timeline should start next to the first title line")
	}
	markers := 0
	for _, op := range canvas.ops {
		if op.Kind == "circle" {
			markers++
		}
	}
	if markers != 1 {
		t.Errorf("markers = %d, want 1", markers)
	}
	assertBands(t, canvas.ops)
}

func TestTimelineEntryKeptWhole(t *testing.T) {
	engine, canvas := newTestEngine()
	engine.Advance(bodyLimit - bodyTop - 5)
	engine.TimelineEntry(Milestone{Title: "Series B", Timeline: "2028"})

	if contains(canvas.textOps(1), "Series B") || !contains(canvas.textOps(2), "Series B") {
		t.Error("a short entry should move to the next page whole")
	}
	if engine.PageBreaks() != 1 {
		t.Errorf("page breaks = %d, want 1", engine.PageBreaks())
	}
}

func TestStyleRestoredAfterBreak(t *testing.T) {
	engine, canvas := newTestEngine()
	engine.setFont("", 8.8)
	engine.setTextColor(colorTextDark)
	engine.Advance(bodyLimit - bodyTop - 5)
	engine.WrappedText(strings.Repeat("word ", 200), pageMargin, contentWidth, 4.2)

	if canvas.PageCount() < 2 {
		t.Fatal("expected the text to run onto a second page")
	}
	for _, op := range canvas.ops {
		if op.Page == 2 && op.Kind == "text" && op.Top > bodyTop-layoutEpsilon && op.Color != colorTextDark {
			t.Fatalf("body text after the break drawn in %+v, want %+v", op.Color, colorTextDark)
		}
	}
	assertBands(t, canvas.ops)
}

func TestStampFootersNumbersEveryPage(t *testing.T) {
	engine, canvas := newTestEngine()
	for i := 0; i < 100; i++ {
		engine.Message("line")
	}
	engine.StampFooters("Confidential")

	total := canvas.PageCount()
	if total != 3 {
		t.Fatalf("pages = %d, want 3", total)
	}
	for p := 1; p <= total; p++ {
		texts := canvas.textOps(p)
		if !contains(texts, pageLabel(p, total)) {
			t.Errorf("page %d missing %q", p, pageLabel(p, total))
		}
		if !contains(texts, "Confidential") {
			t.Errorf("page %d missing footer note", p)
		}
	}
	if pageLabel(2, 3) != "Page 2 of 3" {
		t.Errorf("pageLabel = %q", pageLabel(2, 3))
	}
	assertBands(t, canvas.ops)
}

func TestFounderHeading(t *testing.T) {
	tests := []struct {
		founder Founder
		want    string
	}{
		{Founder{Name: "Ada", Role: "CEO"}, "Ada — CEO"},
		{Founder{Name: "Ada"}, "Ada"},
		{Founder{Role: "CTO"}, "Founder 3 — CTO"},
		{Founder{}, "Founder 3"},
	}
	for _, tt := range tests {
		if got := founderHeading(2, tt.founder); got != tt.want {
			t.Errorf("founderHeading(%+v) = %q, want %q", tt.founder, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	width := func(s string) float64 { return float64(len([]rune(s))) }

	tests := []struct {
		name string
		text string
		max  float64
		want []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "short text", 10, []string{"short text"}},
		{"wraps on words", "alpha beta gamma", 10, []string{"alpha beta", "gamma"}},
		{"splits long word", "abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"keeps newlines", "one\ntwo", 10, []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(width, tt.text, tt.max)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("wrapText(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for _, line := range got {
				if width(line) > tt.max {
					t.Errorf("line %q wider than %.0f", line, tt.max)
				}
			}
		})
	}
}
