package main

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DealChange is a partial update to a DealRecord. Nil fields are left
// untouched; a non-nil slice replaces the whole collection.
type DealChange struct {
	CompanyName   *string `json:"companyName,omitempty"`
	Industry      *string `json:"industry,omitempty"`
	FundingStage  *string `json:"fundingStage,omitempty"`
	InvestmentAsk *string `json:"investmentAsk,omitempty"`
	Valuation     *string `json:"valuation,omitempty"`

	Founders []Founder `json:"founders,omitempty"`

	Revenue          *string `json:"revenue,omitempty"`
	MonthlyBurnRate  *string `json:"monthlyBurnRate,omitempty"`
	GrowthPercentage *string `json:"growthPercentage,omitempty"`
	AvailableCash    *string `json:"availableCash,omitempty"`

	EquityOffered     *string          `json:"equityOffered,omitempty"`
	TicketSize        *string          `json:"ticketSize,omitempty"`
	MinimumInvestment *string          `json:"minimumInvestment,omitempty"`
	FundAllocations   []FundAllocation `json:"fundAllocations,omitempty"`

	MarketRisk  *RiskRating `json:"marketRisk,omitempty"`
	ProductRisk *RiskRating `json:"productRisk,omitempty"`
	TeamRisk    *RiskRating `json:"teamRisk,omitempty"`

	Milestones []Milestone `json:"milestones,omitempty"`

	KeyAssumptions    *string `json:"keyAssumptions,omitempty"`
	ExitStrategy      *string `json:"exitStrategy,omitempty"`
	AdditionalRemarks *string `json:"additionalRemarks,omitempty"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setRisk(dst *RiskRating, v *RiskRating) {
	if v == nil {
		return
	}
	r := *v
	if !r.Rated() {
		r = RiskUnset
	}
	*dst = r
}

// ApplyChange returns a new record with change merged over state.
// state itself is never modified.
func ApplyChange(state DealRecord, change DealChange) DealRecord {
	next := state.Clone()

	setString(&next.CompanyName, change.CompanyName)
	setString(&next.Industry, change.Industry)
	setString(&next.FundingStage, change.FundingStage)
	setString(&next.InvestmentAsk, change.InvestmentAsk)
	setString(&next.Valuation, change.Valuation)
	setString(&next.Revenue, change.Revenue)
	setString(&next.MonthlyBurnRate, change.MonthlyBurnRate)
	setString(&next.GrowthPercentage, change.GrowthPercentage)
	setString(&next.AvailableCash, change.AvailableCash)
	setString(&next.EquityOffered, change.EquityOffered)
	setString(&next.TicketSize, change.TicketSize)
	setString(&next.MinimumInvestment, change.MinimumInvestment)
	setString(&next.KeyAssumptions, change.KeyAssumptions)
	setString(&next.ExitStrategy, change.ExitStrategy)
	setString(&next.AdditionalRemarks, change.AdditionalRemarks)

	setRisk(&next.MarketRisk, change.MarketRisk)
	setRisk(&next.ProductRisk, change.ProductRisk)
	setRisk(&next.TeamRisk, change.TeamRisk)

	if change.Founders != nil {
		next.Founders = append([]Founder(nil), change.Founders...)
	}
	if change.Milestones != nil {
		next.Milestones = append([]Milestone(nil), change.Milestones...)
	}
	if change.FundAllocations != nil {
		next.FundAllocations = make([]FundAllocation, len(change.FundAllocations))
		for i, a := range change.FundAllocations {
			a.Percentage = clampPercent(a.Percentage)
			next.FundAllocations[i] = a
		}
	}

	next.ensureIDs()
	return next
}

// AddFounder appends a blank founder
func AddFounder(state DealRecord) DealRecord {
	next := state.Clone()
	next.Founders = append(next.Founders, Founder{ID: newID()})
	return next
}

// RemoveFounder drops the founder with id; the last founder is never removed
func RemoveFounder(state DealRecord, id string) DealRecord {
	next := state.Clone()
	if len(next.Founders) <= 1 {
		return next
	}
	kept := next.Founders[:0]
	for _, f := range next.Founders {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	next.Founders = kept
	return next
}

// UpdateFounder replaces the founder sharing f's id
func UpdateFounder(state DealRecord, f Founder) DealRecord {
	next := state.Clone()
	for i := range next.Founders {
		if next.Founders[i].ID == f.ID {
			next.Founders[i] = f
		}
	}
	return next
}

// AddMilestone appends a blank milestone
func AddMilestone(state DealRecord) DealRecord {
	next := state.Clone()
	next.Milestones = append(next.Milestones, Milestone{ID: newID()})
	return next
}

// RemoveMilestone drops the milestone with id; the last one is never removed
func RemoveMilestone(state DealRecord, id string) DealRecord {
	next := state.Clone()
	if len(next.Milestones) <= 1 {
		return next
	}
	kept := next.Milestones[:0]
	for _, m := range next.Milestones {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	next.Milestones = kept
	return next
}

// UpdateMilestone replaces the milestone sharing m's id
func UpdateMilestone(state DealRecord, m Milestone) DealRecord {
	next := state.Clone()
	for i := range next.Milestones {
		if next.Milestones[i].ID == m.ID {
			next.Milestones[i] = m
		}
	}
	return next
}

// AddAllocation appends an allocation row at 0%
func AddAllocation(state DealRecord, category string) DealRecord {
	next := state.Clone()
	next.FundAllocations = append(next.FundAllocations, FundAllocation{ID: newID(), Category: category})
	return next
}

// RemoveAllocation drops the allocation with id; the last row is never removed
func RemoveAllocation(state DealRecord, id string) DealRecord {
	next := state.Clone()
	if len(next.FundAllocations) <= 1 {
		return next
	}
	kept := next.FundAllocations[:0]
	for _, a := range next.FundAllocations {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	next.FundAllocations = kept
	return next
}

// SetAllocationPercent sets one allocation's share, clamped to 0-100
func SetAllocationPercent(state DealRecord, id string, percent int) DealRecord {
	next := state.Clone()
	for i := range next.FundAllocations {
		if next.FundAllocations[i].ID == id {
			next.FundAllocations[i].Percentage = clampPercent(percent)
		}
	}
	return next
}

// Section ids, in form order
const (
	SectionDealInformation     = "deal-information"
	SectionFounders            = "founders"
	SectionFinancialHighlights = "financial-highlights"
	SectionInvestmentStructure = "investment-structure"
	SectionRiskAssessment      = "risk-assessment"
	SectionMilestones          = "milestones"
	SectionNotes               = "notes-strategy"
)

// SectionStatus reports whether one form section is complete
type SectionStatus struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
}

// LiveMetrics are the headline numbers shown beside the form
type LiveMetrics struct {
	RunwayMonths    float64  `json:"runwayMonths"`
	RunwayKnown     bool     `json:"runwayKnown"`
	RiskScore       *float64 `json:"riskScore"`
	RiskBand        string   `json:"riskBand"`
	TotalAllocation int      `json:"totalAllocation"`
}

// DerivedState is everything computed from a DealRecord for display:
// field errors, section completion, blockers and metrics
type DerivedState struct {
	Errors         map[string]string `json:"errors"`
	Sections       []SectionStatus   `json:"sections"`
	CompletedCount int               `json:"completedCount"`
	CompletionPct  int               `json:"completionPct"`
	PendingItems   []string          `json:"pendingItems"`
	Metrics        LiveMetrics       `json:"metrics"`
	Valid          bool              `json:"valid"`
}

const (
	msgRequired      = "Required"
	msgPositive      = "Must be > 0"
	msgAllocation100 = "Must equal 100%"
)

// ValidateDeal returns field errors keyed by form field name
func ValidateDeal(d DealRecord) map[string]string {
	errs := make(map[string]string)
	required := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			errs[key] = msgRequired
		}
	}
	positive := func(key, value string) {
		amount, ok := parseAmount(value)
		if value == "" || !ok || !amount.IsPositive() {
			errs[key] = msgPositive
		}
	}

	required("companyName", d.CompanyName)
	required("industry", d.Industry)
	required("fundingStage", d.FundingStage)
	positive("investmentAsk", d.InvestmentAsk)
	positive("valuation", d.Valuation)
	required("revenue", d.Revenue)
	positive("monthlyBurnRate", d.MonthlyBurnRate)
	required("growthPercentage", d.GrowthPercentage)
	positive("availableCash", d.AvailableCash)
	positive("equityOffered", d.EquityOffered)
	positive("ticketSize", d.TicketSize)
	positive("minimumInvestment", d.MinimumInvestment)

	for i, f := range d.Founders {
		required(fmt.Sprintf("founder_%d_name", i), f.Name)
		required(fmt.Sprintf("founder_%d_role", i), f.Role)
	}
	for i, m := range d.Milestones {
		required(fmt.Sprintf("milestone_%d_title", i), m.Title)
	}

	if TotalAllocation(d.FundAllocations) != 100 {
		errs["allocation"] = msgAllocation100
	}

	if !d.MarketRisk.Rated() {
		errs["marketRisk"] = msgRequired
	}
	if !d.ProductRisk.Rated() {
		errs["productRisk"] = msgRequired
	}
	if !d.TeamRisk.Rated() {
		errs["teamRisk"] = msgRequired
	}
	return errs
}

func anyError(errs map[string]string, keys ...string) bool {
	for _, k := range keys {
		if _, ok := errs[k]; ok {
			return true
		}
	}
	return false
}

// Derive recomputes the derived view of a record. Callers invoke it after
// every state transition.
func Derive(d DealRecord) DerivedState {
	errs := ValidateDeal(d)

	foundersValid := true
	for _, f := range d.Founders {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Role) == "" {
			foundersValid = false
		}
	}
	milestonesValid := true
	for _, m := range d.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			milestonesValid = false
		}
	}

	sections := []SectionStatus{
		{SectionDealInformation, "Deal Information", !anyError(errs, "companyName", "industry", "fundingStage", "investmentAsk", "valuation")},
		{SectionFounders, "Founders", foundersValid},
		{SectionFinancialHighlights, "Financial Highlights", !anyError(errs, "revenue", "monthlyBurnRate", "growthPercentage", "availableCash")},
		{SectionInvestmentStructure, "Investment Structure", !anyError(errs, "equityOffered", "ticketSize", "minimumInvestment", "allocation")},
		{SectionRiskAssessment, "Risk Assessment", !anyError(errs, "marketRisk", "productRisk", "teamRisk")},
		{SectionMilestones, "Milestones", milestonesValid},
		{SectionNotes, "Notes & Strategy", len(presentNotes(d)) > 0},
	}

	completed := 0
	for _, s := range sections {
		if s.Complete {
			completed++
		}
	}

	derived := DerivedState{
		Errors:         errs,
		Sections:       sections,
		CompletedCount: completed,
		CompletionPct:  int(math.Round(float64(completed) / float64(len(sections)) * 100)),
		PendingItems:   pendingItems(d, errs, foundersValid, milestonesValid),
		Metrics:        liveMetrics(d),
		Valid:          len(errs) == 0,
	}
	return derived
}

// pendingItems lists what still blocks export, in form order without repeats
func pendingItems(d DealRecord, errs map[string]string, foundersValid, milestonesValid bool) []string {
	items := []string{}
	addIf := func(cond bool, label string) {
		if !cond {
			return
		}
		for _, existing := range items {
			if existing == label {
				return
			}
		}
		items = append(items, label)
	}

	addIf(anyError(errs, "companyName", "industry", "fundingStage"), "Complete deal information")
	addIf(anyError(errs, "investmentAsk", "valuation"), "Enter valid ask and valuation (> 0)")
	addIf(anyError(errs, "revenue", "monthlyBurnRate", "growthPercentage", "availableCash"), "Complete financial highlights")
	addIf(anyError(errs, "equityOffered", "ticketSize", "minimumInvestment"), "Complete investment structure fields")
	addIf(anyError(errs, "allocation"), "Set fund allocation total to exactly 100%")
	addIf(!foundersValid, "Complete founder names and roles")
	addIf(!milestonesValid, "Add milestone title(s)")
	addIf(anyError(errs, "marketRisk", "productRisk", "teamRisk"), "Select all risk ratings")
	return items
}

func liveMetrics(d DealRecord) LiveMetrics {
	runway, known := ComputeRunwayMonths(d.MonthlyBurnRate, d.AvailableCash)
	score, rated := ComputeAverageRisk(d.MarketRisk, d.ProductRisk, d.TeamRisk)
	m := LiveMetrics{
		RunwayMonths:    runway,
		RunwayKnown:     known,
		RiskBand:        ClassifyRisk(score, rated).Label,
		TotalAllocation: TotalAllocation(d.FundAllocations),
	}
	if rated {
		m.RiskScore = &score
	}
	return m
}

// ActivityItem records a section flipping between complete and incomplete
type ActivityItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Time string `json:"time"`
}

const maxRecentActivity = 5

// FormSession holds one user's form state and applies changes to it as
// explicit transitions, re-deriving after each one.
type FormSession struct {
	state      DealRecord
	derived    DerivedState
	interacted bool
	previous   map[string]bool
	activity   []ActivityItem
	now        func() time.Time
}

// NewFormSession starts a session from initial
func NewFormSession(initial DealRecord) *FormSession {
	s := &FormSession{
		state: initial.Clone(),
		now:   time.Now,
	}
	s.derived = Derive(s.state)
	s.previous = sectionMap(s.derived.Sections)
	return s
}

func sectionMap(sections []SectionStatus) map[string]bool {
	m := make(map[string]bool, len(sections))
	for _, s := range sections {
		m[s.ID] = s.Complete
	}
	return m
}

// State returns a copy of the current record
func (s *FormSession) State() DealRecord { return s.state.Clone() }

// Derived returns the derived state for the current record
func (s *FormSession) Derived() DerivedState { return s.derived }

// Interacted reports whether any change has been applied yet
func (s *FormSession) Interacted() bool { return s.interacted }

// Activity returns recent completion changes, newest first
func (s *FormSession) Activity() []ActivityItem {
	return append([]ActivityItem(nil), s.activity...)
}

// VisibleErrors hides field errors until the user has changed something
func (s *FormSession) VisibleErrors() map[string]string {
	if !s.interacted {
		return map[string]string{}
	}
	return s.derived.Errors
}

// Apply merges change into the session state
func (s *FormSession) Apply(change DealChange) []ActivityItem {
	return s.Replace(ApplyChange(s.state, change))
}

// Replace swaps in a whole new record (e.g. after a collection helper) and
// returns the activity produced by the transition
func (s *FormSession) Replace(next DealRecord) []ActivityItem {
	s.interacted = true
	s.state = next.Clone()
	s.derived = Derive(s.state)

	stamp := s.now().Format("3:04 PM")
	var changes []ActivityItem
	for _, section := range s.derived.Sections {
		if s.previous[section.ID] == section.Complete {
			continue
		}
		verb := "marked incomplete"
		if section.Complete {
			verb = "completed"
		}
		changes = append(changes, ActivityItem{ID: newID(), Text: section.Title + " " + verb, Time: stamp})
	}
	s.previous = sectionMap(s.derived.Sections)

	if len(changes) > 0 {
		s.activity = append(append([]ActivityItem(nil), changes...), s.activity...)
		if len(s.activity) > maxRecentActivity {
			s.activity = s.activity[:maxRecentActivity]
		}
	}
	return changes
}
