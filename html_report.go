package main

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

// Limits for the on-screen approximation; the PDF carries everything
const (
	previewMaxAllocations = 5
	previewMaxFounders    = 3
	previewMaxMilestones  = 4
)

type previewAllocation struct {
	Category string
	Percent  int
}

type previewFounder struct {
	Name string
	Role string
}

type previewMilestone struct {
	Title    string
	Timeline string
}

type livePreview struct {
	Company     string
	Generated   string
	Snapshot    []KeyValue
	Financials  []KeyValue
	Allocations []previewAllocation
	Total       int
	TotalOK     bool
	RiskPosture string
	RiskTone    string
	Founders    []previewFounder
	Milestones  []previewMilestone
}

var livePreviewTemplate = template.Must(template.New("preview").Parse(`<div class="memo-preview">
  <header class="memo-head">
    <span class="memo-title">Investment Memo</span>
    <h2>{{.Company}}</h2>
    <span class="memo-date">{{.Generated}}</span>
  </header>
  <section>
    <h3>Deal Snapshot</h3>
    <dl>{{range .Snapshot}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}</dl>
  </section>
  <section>
    <h3>Financial Overview</h3>
    <dl>{{range .Financials}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}</dl>
  </section>
  <section>
    <h3>Use of Funds</h3>
    {{range .Allocations}}<div class="alloc-row">
      <span>{{.Category}}</span>
      <div class="alloc-track"><div class="alloc-fill" style="width: {{.Percent}}%"></div></div>
      <span>{{.Percent}}%</span>
    </div>
    {{end}}<p class="alloc-total{{if not .TotalOK}} alloc-off{{end}}">Total {{.Total}}%</p>
  </section>
  <section>
    <h3>Risk</h3>
    <p class="risk risk-{{.RiskTone}}">{{.RiskPosture}}</p>
  </section>
  <section>
    <h3>Team</h3>
    {{range .Founders}}<p><strong>{{.Name}}</strong>{{if .Role}} · {{.Role}}{{end}}</p>
    {{else}}<p class="muted">No founders named yet.</p>
    {{end}}
  </section>
  <section>
    <h3>Milestones</h3>
    {{range .Milestones}}<p><span class="when">{{.Timeline}}</span> {{.Title}}</p>
    {{else}}<p class="muted">No milestones added.</p>
    {{end}}
  </section>
</div>
`))

// RenderLivePreviewHTML writes the on-screen approximation of the memo
func RenderLivePreviewHTML(w io.Writer, deal DealRecord, now time.Time) error {
	if err := livePreviewTemplate.Execute(w, buildLivePreview(deal, now)); err != nil {
		return fmt.Errorf("rendering live preview: %w", err)
	}
	return nil
}

func buildLivePreview(d DealRecord, now time.Time) livePreview {
	score, rated := ComputeAverageRisk(d.MarketRisk, d.ProductRisk, d.TeamRisk)
	company := strings.TrimSpace(d.CompanyName)
	if company == "" {
		company = "Company Name"
	}

	p := livePreview{
		Company:   company,
		Generated: now.Format("Jan 2, 2006"),
		Snapshot: []KeyValue{
			{"Industry", orDash(d.Industry)},
			{"Stage", orDash(d.FundingStage)},
			{"Ask", FormatCurrency(d.InvestmentAsk)},
			{"Valuation", FormatCurrency(d.Valuation)},
		},
		Financials: []KeyValue{
			{"Revenue", FormatCurrency(d.Revenue)},
			{"Burn", FormatCurrency(d.MonthlyBurnRate)},
			{"Growth", FormatPercent(d.GrowthPercentage)},
			{"Runway", FormatRunway(ComputeRunwayMonths(d.MonthlyBurnRate, d.AvailableCash))},
		},
		Total:       TotalAllocation(d.FundAllocations),
		RiskPosture: FormatRiskPosture(score, rated),
		RiskTone:    ClassifyRisk(score, rated).Tone,
	}
	p.TotalOK = p.Total == 100

	for _, a := range d.FundAllocations {
		if len(p.Allocations) == previewMaxAllocations {
			break
		}
		if strings.TrimSpace(a.Category) == "" {
			continue
		}
		p.Allocations = append(p.Allocations, previewAllocation{a.Category, clampPercent(a.Percentage)})
	}
	for _, f := range d.Founders {
		if len(p.Founders) == previewMaxFounders {
			break
		}
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		p.Founders = append(p.Founders, previewFounder{f.Name, f.Role})
	}
	for _, m := range SortMilestones(d.Milestones) {
		if len(p.Milestones) == previewMaxMilestones {
			break
		}
		p.Milestones = append(p.Milestones, previewMilestone{m.Title, orDash(m.Timeline)})
	}
	return p
}
