package main

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func riskPtr(r RiskRating) *RiskRating { return &r }

func TestNewDealRecordDefaults(t *testing.T) {
	deal := NewDealRecord()
	if len(deal.Founders) != 1 || len(deal.Milestones) != 1 {
		t.Fatalf("new deal should start with one founder and one milestone, got %d/%d", len(deal.Founders), len(deal.Milestones))
	}
	if len(deal.FundAllocations) != len(defaultAllocationCategories) {
		t.Fatalf("allocations = %d, want %d", len(deal.FundAllocations), len(defaultAllocationCategories))
	}
	seen := map[string]bool{}
	for _, a := range deal.FundAllocations {
		if a.ID == "" || seen[a.ID] {
			t.Errorf("allocation ids must be unique and non-empty: %q", a.ID)
		}
		seen[a.ID] = true
		if a.Percentage != 0 {
			t.Errorf("%s starts at %d%%, want 0", a.Category, a.Percentage)
		}
	}
}

func TestApplyChangeDoesNotMutateInput(t *testing.T) {
	state := NewDealRecord()
	state.Founders[0].Name = "Original"
	before := state.Founders[0]

	next := ApplyChange(state, DealChange{
		CompanyName: strPtr("Acme"),
		Founders:    []Founder{{ID: state.Founders[0].ID, Name: "Changed", Role: "CEO"}},
	})

	if state.CompanyName != "" {
		t.Error("input company name was modified")
	}
	if state.Founders[0] != before {
		t.Error("input founders were modified")
	}
	if next.CompanyName != "Acme" || next.Founders[0].Name != "Changed" {
		t.Errorf("change not applied: %+v", next)
	}

	// editing the result must not leak back either
	next.Milestones[0].Title = "leak"
	if state.Milestones[0].Title == "leak" {
		t.Error("result shares milestone storage with input")
	}
}

func TestApplyChangeLeavesNilFieldsAlone(t *testing.T) {
	state := SampleDeal()
	next := ApplyChange(state, DealChange{Industry: strPtr("Health")})

	if next.CompanyName != state.CompanyName || next.Valuation != state.Valuation {
		t.Error("untouched fields changed")
	}
	if len(next.Founders) != len(state.Founders) {
		t.Error("nil founders slice should keep the existing founders")
	}
	if next.Industry != "Health" {
		t.Errorf("industry = %q", next.Industry)
	}
}

func TestApplyChangeNormalizesInput(t *testing.T) {
	next := ApplyChange(NewDealRecord(), DealChange{
		MarketRisk:      riskPtr(9),
		ProductRisk:     riskPtr(RiskHigh),
		FundAllocations: []FundAllocation{{Category: "Product", Percentage: 140}, {Category: "Ops", Percentage: -5}},
	})

	if next.MarketRisk != RiskUnset {
		t.Errorf("out-of-range rating = %d, want unset", next.MarketRisk)
	}
	if next.ProductRisk != RiskHigh {
		t.Errorf("product risk = %d, want high", next.ProductRisk)
	}
	if next.FundAllocations[0].Percentage != 100 || next.FundAllocations[1].Percentage != 0 {
		t.Errorf("allocations not clamped: %+v", next.FundAllocations)
	}
	for _, a := range next.FundAllocations {
		if a.ID == "" {
			t.Error("new allocation rows should get ids")
		}
	}
}

func TestCollectionHelpersKeepOneItem(t *testing.T) {
	deal := NewDealRecord()

	if got := RemoveFounder(deal, deal.Founders[0].ID); len(got.Founders) != 1 {
		t.Errorf("last founder removed")
	}
	if got := RemoveMilestone(deal, deal.Milestones[0].ID); len(got.Milestones) != 1 {
		t.Errorf("last milestone removed")
	}

	two := AddFounder(deal)
	if len(two.Founders) != 2 || len(deal.Founders) != 1 {
		t.Fatalf("AddFounder should return a new record with two founders")
	}
	one := RemoveFounder(two, two.Founders[0].ID)
	if len(one.Founders) != 1 || one.Founders[0].ID != two.Founders[1].ID {
		t.Errorf("RemoveFounder removed the wrong founder")
	}
	if len(two.Founders) != 2 {
		t.Errorf("RemoveFounder modified its input")
	}

	single := DealRecord{FundAllocations: []FundAllocation{{ID: "only", Category: "Product"}}}
	if got := RemoveAllocation(single, "only"); len(got.FundAllocations) != 1 {
		t.Error("last allocation row removed")
	}
}

func TestUpdateHelpers(t *testing.T) {
	deal := NewDealRecord()
	f := deal.Founders[0]
	f.Name = "Ada"
	if got := UpdateFounder(deal, f); got.Founders[0].Name != "Ada" {
		t.Error("UpdateFounder did not apply")
	}

	m := deal.Milestones[0]
	m.Title = "Launch"
	if got := UpdateMilestone(deal, m); got.Milestones[0].Title != "Launch" {
		t.Error("UpdateMilestone did not apply")
	}

	withOther := AddAllocation(deal, "Legal")
	last := withOther.FundAllocations[len(withOther.FundAllocations)-1]
	if last.Category != "Legal" || last.Percentage != 0 {
		t.Errorf("AddAllocation = %+v", last)
	}
	got := SetAllocationPercent(withOther, last.ID, 250)
	if p := got.FundAllocations[len(got.FundAllocations)-1].Percentage; p != 100 {
		t.Errorf("SetAllocationPercent clamp = %d, want 100", p)
	}
}

func TestDeriveInitialState(t *testing.T) {
	derived := Derive(NewDealRecord())

	if derived.Valid {
		t.Fatal("blank deal should not be valid")
	}
	if derived.CompletedCount != 0 || derived.CompletionPct != 0 {
		t.Errorf("completion = %d (%d%%), want 0", derived.CompletedCount, derived.CompletionPct)
	}
	want := []string{
		"Complete deal information",
		"Enter valid ask and valuation (> 0)",
		"Complete financial highlights",
		"Complete investment structure fields",
		"Set fund allocation total to exactly 100%",
		"Complete founder names and roles",
		"Add milestone title(s)",
		"Select all risk ratings",
	}
	if len(derived.PendingItems) != len(want) {
		t.Fatalf("pending = %q, want %q", derived.PendingItems, want)
	}
	for i := range want {
		if derived.PendingItems[i] != want[i] {
			t.Errorf("pending[%d] = %q, want %q", i, derived.PendingItems[i], want[i])
		}
	}
	if derived.Errors["allocation"] != "Must equal 100%" {
		t.Errorf("allocation error = %q", derived.Errors["allocation"])
	}
	if derived.Errors["founder_0_name"] != "Required" {
		t.Errorf("founder error = %q", derived.Errors["founder_0_name"])
	}
	if derived.Metrics.RiskScore != nil || derived.Metrics.RunwayKnown {
		t.Error("metrics should be undetermined for a blank deal")
	}
}

func TestDeriveSampleDealIsValid(t *testing.T) {
	derived := Derive(SampleDeal())
	if !derived.Valid {
		t.Fatalf("sample deal should be valid, errors: %v", derived.Errors)
	}
	if derived.CompletedCount != 7 || derived.CompletionPct != 100 {
		t.Errorf("completion = %d (%d%%), want 7 (100%%)", derived.CompletedCount, derived.CompletionPct)
	}
	if len(derived.PendingItems) != 0 {
		t.Errorf("pending = %q, want none", derived.PendingItems)
	}
	if !derived.Metrics.RunwayKnown || derived.Metrics.RunwayMonths != 12 {
		t.Errorf("runway = %v (%v), want 12", derived.Metrics.RunwayMonths, derived.Metrics.RunwayKnown)
	}
	if derived.Metrics.RiskScore == nil || derived.Metrics.RiskBand != "Low" {
		t.Errorf("risk = %v %s, want Low", derived.Metrics.RiskScore, derived.Metrics.RiskBand)
	}
}

func TestValidateDealAmounts(t *testing.T) {
	deal := SampleDeal()
	deal.InvestmentAsk = "0"
	deal.Valuation = "ten million"
	deal.TicketSize = "-5"

	errs := ValidateDeal(deal)
	for _, key := range []string{"investmentAsk", "valuation", "ticketSize"} {
		if errs[key] != "Must be > 0" {
			t.Errorf("%s error = %q, want Must be > 0", key, errs[key])
		}
	}
	if _, ok := errs["revenue"]; ok {
		t.Error("revenue only needs to be present")
	}
}

func TestDerivePendingItemsDeduplicated(t *testing.T) {
	deal := SampleDeal()
	deal.Founders = append(deal.Founders, Founder{}, Founder{Name: "No role"})
	derived := Derive(deal)

	count := 0
	for _, item := range derived.PendingItems {
		if item == "Complete founder names and roles" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("founder blocker listed %d times, want 1", count)
	}
}

func TestFormSessionActivity(t *testing.T) {
	session := NewFormSession(NewDealRecord())
	session.now = func() time.Time { return time.Date(2026, 1, 5, 9, 5, 0, 0, time.UTC) }

	if session.Interacted() || len(session.VisibleErrors()) != 0 {
		t.Fatal("errors should stay hidden until the first change")
	}

	changes := session.Apply(DealChange{ExitStrategy: strPtr("IPO")})
	if len(changes) != 1 || changes[0].Text != "Notes & Strategy completed" || changes[0].Time != "9:05 AM" {
		t.Fatalf("changes = %+v", changes)
	}
	if len(session.VisibleErrors()) == 0 {
		t.Error("errors should be visible after a change")
	}

	session.Apply(DealChange{ExitStrategy: strPtr("")})
	activity := session.Activity()
	if len(activity) != 2 || activity[0].Text != "Notes & Strategy marked incomplete" {
		t.Errorf("activity = %+v, want newest first", activity)
	}

	// no completion change, no activity
	if got := session.Apply(DealChange{Industry: strPtr("Retail")}); len(got) != 0 {
		t.Errorf("unexpected activity %+v", got)
	}
}

func TestFormSessionActivityCapped(t *testing.T) {
	session := NewFormSession(NewDealRecord())
	for i := 0; i < 8; i++ {
		note := ""
		if i%2 == 0 {
			note = "x"
		}
		session.Apply(DealChange{KeyAssumptions: strPtr(note)})
	}
	if got := len(session.Activity()); got != maxRecentActivity {
		t.Errorf("activity length = %d, want %d", got, maxRecentActivity)
	}
}

func TestFormSessionReplaceWithHelpers(t *testing.T) {
	session := NewFormSession(NewDealRecord())
	state := session.State()
	state = UpdateMilestone(state, Milestone{ID: state.Milestones[0].ID, Title: "Launch"})
	changes := session.Replace(state)

	if len(changes) != 1 || changes[0].Text != "Milestones completed" {
		t.Errorf("changes = %+v", changes)
	}
	if session.State().Milestones[0].Title != "Launch" {
		t.Error("Replace did not store the new state")
	}
}
