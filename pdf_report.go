package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultReportFilename is the name the exported memo is saved under
const DefaultReportFilename = "Investment_Summary.pdf"

// ReportOptions controls the fixed chrome of the memo
type ReportOptions struct {
	Title      string
	FooterNote string
	Filename   string
	Now        func() time.Time
}

// DefaultReportOptions returns the standard memo chrome
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Title:      "Investment Deal Summary",
		FooterNote: "Confidential - Internal Investment Review",
		Filename:   DefaultReportFilename,
		Now:        time.Now,
	}
}

func (o ReportOptions) withDefaults() ReportOptions {
	d := DefaultReportOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.FooterNote == "" {
		o.FooterNote = d.FooterNote
	}
	if o.Filename == "" {
		o.Filename = d.Filename
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// investmentReport feeds one deal snapshot through the layout engine in
// the memo's fixed section order.
type investmentReport struct {
	deal   DealRecord
	opts   ReportOptions
	engine *LayoutEngine

	runway          string
	riskScore       float64
	riskRated       bool
	riskBand        RiskBand
	totalAllocation int
}

func newInvestmentReport(deal DealRecord, opts ReportOptions, canvas Canvas) *investmentReport {
	opts = opts.withDefaults()
	company := deal.CompanyName
	if company == "" {
		company = "Company"
	}
	header := HeaderChrome{
		Title:     opts.Title,
		Company:   company,
		Generated: "Generated " + opts.Now().Format("Jan 2, 2006"),
	}

	r := &investmentReport{
		deal:            deal,
		opts:            opts,
		engine:          NewLayoutEngine(canvas, header),
		totalAllocation: TotalAllocation(deal.FundAllocations),
	}
	r.runway = FormatRunway(ComputeRunwayMonths(deal.MonthlyBurnRate, deal.AvailableCash))
	r.riskScore, r.riskRated = ComputeAverageRisk(deal.MarketRisk, deal.ProductRisk, deal.TeamRisk)
	r.riskBand = ClassifyRisk(r.riskScore, r.riskRated)
	return r
}

// render lays out the whole memo, then stamps footers in a second pass
func (r *investmentReport) render() {
	r.engine.Start()

	r.addDealSnapshot()
	r.addAnalyticsSnapshot()
	r.addFounderProfiles()
	r.addFinancialOverview()
	r.addInvestmentStructure()
	r.addRiskAssessment()
	r.addMilestoneTimeline()
	r.addNotes()

	r.engine.StampFooters(r.opts.FooterNote)
}

func (r *investmentReport) addDealSnapshot() {
	d := r.deal
	r.engine.SectionTitle("Deal Snapshot", "Core context for the investment opportunity")
	r.engine.KeyValueGrid([]KeyValue{
		{"Company", orDash(d.CompanyName)},
		{"Industry", orDash(d.Industry)},
		{"Funding Stage", orDash(d.FundingStage)},
		{"Investment Ask", FormatCurrency(d.InvestmentAsk)},
		{"Valuation", FormatCurrency(d.Valuation)},
		{"Equity Offered", FormatPercent(d.EquityOffered)},
	}, 2)
}

func (r *investmentReport) addAnalyticsSnapshot() {
	r.engine.SectionTitle("Analytics Snapshot", "Quick diagnostic view for investment discussion")
	r.engine.KeyValueGrid([]KeyValue{
		{"Runway", r.runway},
		{"Risk Posture", FormatRiskPosture(r.riskScore, r.riskRated)},
		{"Allocation Readiness", strconv.Itoa(r.totalAllocation) + "%"},
		{"Founder Profiles", fmt.Sprintf("%d complete", countNamedFounders(r.deal.Founders))},
	}, 2)
	r.engine.RiskBandBar("Risk Band", r.riskScore, r.riskRated, r.riskBand)
}

func (r *investmentReport) addFounderProfiles() {
	r.engine.SectionTitle("Founder Profiles", "")
	founders := r.deal.Founders
	if len(founders) == 0 {
		founders = []Founder{{ID: "placeholder"}}
	}
	for i, f := range founders {
		r.engine.FounderCard(i, f)
	}
}

func (r *investmentReport) addFinancialOverview() {
	d := r.deal
	r.engine.SectionTitle("Financial Overview", "")
	r.engine.Table([]string{"Metric", "Value"}, [][]string{
		{"Revenue", FormatCurrency(d.Revenue)},
		{"Monthly Burn Rate", FormatCurrency(d.MonthlyBurnRate)},
		{"Growth Percentage", FormatPercent(d.GrowthPercentage)},
		{"Available Cash", FormatCurrency(d.AvailableCash)},
		{"Runway", r.runway},
	})
	r.engine.Advance(6)
}

func (r *investmentReport) addInvestmentStructure() {
	d := r.deal
	r.engine.SectionTitle("Investment Structure", "")
	r.engine.KeyValueGrid([]KeyValue{
		{"Ticket Size", FormatCurrency(d.TicketSize)},
		{"Minimum Investment", FormatCurrency(d.MinimumInvestment)},
	}, 2)

	var body [][]string
	for _, a := range d.FundAllocations {
		if strings.TrimSpace(a.Category) == "" {
			continue
		}
		body = append(body, []string{a.Category, strconv.Itoa(a.Percentage) + "%"})
	}
	r.engine.Table([]string{"Category", "Allocation"}, body)
	r.engine.Advance(6)

	if bars := chartableAllocations(d.FundAllocations); len(bars) > 0 {
		r.engine.AllocationBar("Allocation Distribution", bars)
	}
}

// chartableAllocations keeps allocations with a category and a positive share
func chartableAllocations(allocs []FundAllocation) []FundAllocation {
	var out []FundAllocation
	for _, a := range allocs {
		if strings.TrimSpace(a.Category) != "" && a.Percentage > 0 {
			out = append(out, a)
		}
	}
	return out
}

func (r *investmentReport) addRiskAssessment() {
	d := r.deal
	r.engine.SectionTitle("Risk Assessment", "")
	r.engine.Table([]string{"Risk Type", "Rating"}, [][]string{
		{"Market Risk", RiskLabel(d.MarketRisk)},
		{"Product Risk", RiskLabel(d.ProductRisk)},
		{"Team Risk", RiskLabel(d.TeamRisk)},
		{"Overall Risk", FormatOverallRisk(r.riskScore, r.riskRated)},
	})
	r.engine.Advance(6)
}

func (r *investmentReport) addMilestoneTimeline() {
	r.engine.SectionTitle("Milestone Timeline", "")
	milestones := SortMilestones(r.deal.Milestones)
	if len(milestones) == 0 {
		r.engine.Message("No milestones added.")
		return
	}
	for _, m := range milestones {
		r.engine.TimelineEntry(m)
	}
}

// reportNote is one labelled free-text block in the Notes section
type reportNote struct {
	Label   string
	Content string
}

// presentNotes returns the note fields with content, in memo order
func presentNotes(d DealRecord) []reportNote {
	all := []reportNote{
		{"Key Assumptions", d.KeyAssumptions},
		{"Exit Strategy", d.ExitStrategy},
		{"Additional Remarks", d.AdditionalRemarks},
	}
	var out []reportNote
	for _, n := range all {
		if strings.TrimSpace(n.Content) != "" {
			out = append(out, n)
		}
	}
	return out
}

func (r *investmentReport) addNotes() {
	notes := presentNotes(r.deal)
	if len(notes) == 0 {
		return
	}
	r.engine.SectionTitle("Notes", "")
	for _, n := range notes {
		r.engine.NoteBlock(n.Label, n.Content)
	}
}

func countNamedFounders(founders []Founder) int {
	n := 0
	for _, f := range founders {
		if strings.TrimSpace(f.Name) != "" {
			n++
		}
	}
	return n
}

// RenderedReport is one generated memo
type RenderedReport struct {
	PDF   []byte
	Pages int
}

// RenderInvestmentReport renders the memo for one deal snapshot
func RenderInvestmentReport(deal DealRecord, opts ReportOptions) (RenderedReport, error) {
	canvas := newFPDFCanvas()
	newInvestmentReport(deal, opts, canvas).render()
	pages := canvas.PageCount()
	pdfBytes, err := canvas.Bytes()
	if err != nil {
		return RenderedReport{}, err
	}
	return RenderedReport{PDF: pdfBytes, Pages: pages}, nil
}

// GenerateInvestmentPDF renders the memo for one deal snapshot and returns
// the PDF bytes
func GenerateInvestmentPDF(deal DealRecord, opts ReportOptions) ([]byte, error) {
	report, err := RenderInvestmentReport(deal, opts)
	if err != nil {
		return nil, err
	}
	return report.PDF, nil
}

// SaveInvestmentPDF renders the memo and writes it into dir under the
// configured filename. It returns the path written.
func SaveInvestmentPDF(deal DealRecord, opts ReportOptions, dir string) (string, error) {
	opts = opts.withDefaults()
	pdfBytes, err := GenerateInvestmentPDF(deal, opts)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, opts.Filename)
	if err := os.WriteFile(path, pdfBytes, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LayoutResult summarises a layout pass without producing a PDF
type LayoutResult struct {
	Pages      int      `json:"pages"`
	PageBreaks int      `json:"page_breaks"`
	Ops        []DrawOp `json:"ops,omitempty"`
}

// LayoutInvestmentReport runs the memo layout against an in-memory canvas
func LayoutInvestmentReport(deal DealRecord, opts ReportOptions) LayoutResult {
	canvas := newRecordingCanvas()
	report := newInvestmentReport(deal, opts, canvas)
	report.render()
	return LayoutResult{
		Pages:      canvas.PageCount(),
		PageBreaks: report.engine.PageBreaks(),
		Ops:        canvas.ops,
	}
}
