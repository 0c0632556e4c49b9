package main

import "github.com/google/uuid"

// RiskRating is a 0-3 rating for one risk category (0 = not yet rated)
type RiskRating int

const (
	RiskUnset RiskRating = iota // Not rated yet, never part of an average
	RiskLow
	RiskMedium
	RiskHigh
)

func (r RiskRating) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	default:
		return "Not Set"
	}
}

// Rated reports whether the rating holds a real value
func (r RiskRating) Rated() bool {
	return r >= RiskLow && r <= RiskHigh
}

// FundingStages lists the stages offered by the form
var FundingStages = []string{
	"Pre-Seed",
	"Seed",
	"Series A",
	"Series B",
	"Series C",
	"Growth",
	"Late Stage",
}

// Founder describes one member of the founding team
type Founder struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Role       string `yaml:"role" json:"role"`
	Experience string `yaml:"experience" json:"experience"`
	Background string `yaml:"background" json:"background"`
}

// Milestone is a planned achievement with a free-text timeline ("Q2 2026", "March 2027")
type Milestone struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Timeline string `yaml:"timeline" json:"timeline"`
}

// FundAllocation is one slice of the use-of-funds split
type FundAllocation struct {
	ID         string `yaml:"id" json:"id"`
	Category   string `yaml:"category" json:"category"`
	Percentage int    `yaml:"percentage" json:"percentage"` // 0-100
}

// DealRecord is the full snapshot of one investment opportunity.
// Amounts are kept as the decimal strings the user typed; parsing happens
// at display time so half-typed values never fail a render.
type DealRecord struct {
	// Deal information
	CompanyName   string `yaml:"company_name" json:"companyName"`
	Industry      string `yaml:"industry" json:"industry"`
	FundingStage  string `yaml:"funding_stage" json:"fundingStage"`
	InvestmentAsk string `yaml:"investment_ask" json:"investmentAsk"`
	Valuation     string `yaml:"valuation" json:"valuation"`

	Founders []Founder `yaml:"founders" json:"founders"`

	// Financial highlights
	Revenue          string `yaml:"revenue" json:"revenue"`
	MonthlyBurnRate  string `yaml:"monthly_burn_rate" json:"monthlyBurnRate"`
	GrowthPercentage string `yaml:"growth_percentage" json:"growthPercentage"`
	AvailableCash    string `yaml:"available_cash" json:"availableCash"`

	// Investment structure
	EquityOffered     string           `yaml:"equity_offered" json:"equityOffered"`
	TicketSize        string           `yaml:"ticket_size" json:"ticketSize"`
	MinimumInvestment string           `yaml:"minimum_investment" json:"minimumInvestment"`
	FundAllocations   []FundAllocation `yaml:"fund_allocations" json:"fundAllocations"`

	// Risk
	MarketRisk  RiskRating `yaml:"market_risk" json:"marketRisk"`
	ProductRisk RiskRating `yaml:"product_risk" json:"productRisk"`
	TeamRisk    RiskRating `yaml:"team_risk" json:"teamRisk"`

	Milestones []Milestone `yaml:"milestones" json:"milestones"`

	// Notes
	KeyAssumptions    string `yaml:"key_assumptions" json:"keyAssumptions"`
	ExitStrategy      string `yaml:"exit_strategy" json:"exitStrategy"`
	AdditionalRemarks string `yaml:"additional_remarks" json:"additionalRemarks"`
}

// defaultAllocationCategories seeds a new record's use-of-funds split
var defaultAllocationCategories = []string{"Product", "Marketing", "Hiring", "Operations"}

// newID returns an opaque identity for list items
func newID() string {
	return uuid.NewString()
}

// NewDealRecord returns the empty form state: one blank founder, one blank
// milestone and the default allocation categories at 0%.
func NewDealRecord() DealRecord {
	deal := DealRecord{
		Founders:   []Founder{{ID: newID()}},
		Milestones: []Milestone{{ID: newID()}},
	}
	for _, category := range defaultAllocationCategories {
		deal.FundAllocations = append(deal.FundAllocations, FundAllocation{ID: newID(), Category: category})
	}
	return deal
}

// Clone returns a deep copy so callers can hand snapshots around freely
func (d DealRecord) Clone() DealRecord {
	out := d
	out.Founders = append([]Founder(nil), d.Founders...)
	out.Milestones = append([]Milestone(nil), d.Milestones...)
	out.FundAllocations = append([]FundAllocation(nil), d.FundAllocations...)
	return out
}

// ensureIDs fills in missing ids, e.g. for hand-written deal files
func (d *DealRecord) ensureIDs() {
	for i := range d.Founders {
		if d.Founders[i].ID == "" {
			d.Founders[i].ID = newID()
		}
	}
	for i := range d.Milestones {
		if d.Milestones[i].ID == "" {
			d.Milestones[i].ID = newID()
		}
	}
	for i := range d.FundAllocations {
		if d.FundAllocations[i].ID == "" {
			d.FundAllocations[i].ID = newID()
		}
	}
}
