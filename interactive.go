package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// ErrFormAborted is returned when the user interrupts the console form
var ErrFormAborted = errors.New("form aborted")

// ValidationError describes one rejected console answer
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// lineReader is the part of *readline.Instance the form needs
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// newTerminalLineReader opens a readline session on the controlling terminal
func newTerminalLineReader() (lineReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("the console form needs an interactive terminal; use 'generate -i deal.yaml' instead")
	}

	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "dealmemo_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("starting readline: %w", err)
	}
	return rl, nil
}

// validateAmount accepts "250000", "250k", "1.5m", "$1,200" and returns the
// canonical decimal string
func validateAmount(input, field string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = decimal.NewFromInt(1_000)
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		multiplier = decimal.NewFromInt(1_000_000)
		s = strings.TrimSuffix(s, "m")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return "", ValidationError{Field: field, Message: "Invalid amount. Enter as '250k', '1.5m' or '250000'"}
	}
	value = value.Mul(multiplier)
	if !value.IsPositive() {
		return "", ValidationError{Field: field, Message: "Amount must be greater than 0"}
	}
	return value.String(), nil
}

// validatePercentInput accepts "15" or "15%"; growth may be negative
func validatePercentInput(input, field string, allowNegative bool) (string, error) {
	s := strings.TrimSuffix(strings.TrimSpace(input), "%")
	value, err := decimal.NewFromString(s)
	if err != nil {
		return "", ValidationError{Field: field, Message: "Invalid percentage. Enter a number such as 15 or 12.5"}
	}
	if !allowNegative && !value.IsPositive() {
		return "", ValidationError{Field: field, Message: "Percentage must be greater than 0"}
	}
	return value.String(), nil
}

// validateRiskInput accepts 1-3 or low/medium/high
func validateRiskInput(input, field string) (RiskRating, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "l", "low":
		return RiskLow, nil
	case "2", "m", "med", "medium":
		return RiskMedium, nil
	case "3", "h", "high":
		return RiskHigh, nil
	}
	return RiskUnset, ValidationError{Field: field, Message: "Enter 1 (Low), 2 (Medium) or 3 (High)"}
}

// validateAllocationPercent checks a whole percentage between 0 and 100
func validateAllocationPercent(input, field string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(input), "%"))
	if err != nil || p < 0 || p > 100 {
		return 0, ValidationError{Field: field, Message: "Enter a whole percentage between 0 and 100"}
	}
	return p, nil
}

// DealFormBuilder walks the user through every deal field on the console
type DealFormBuilder struct {
	rl   lineReader
	out  io.Writer
	deal DealRecord
}

// NewDealFormBuilder creates a builder that starts from initial; its
// values become the prompt defaults
func NewDealFormBuilder(rl lineReader, out io.Writer, initial DealRecord) *DealFormBuilder {
	return &DealFormBuilder{rl: rl, out: out, deal: initial.Clone()}
}

// readLine reads one answer, mapping Ctrl-C and EOF to ErrFormAborted
func (b *DealFormBuilder) readLine(prompt string) (string, error) {
	b.rl.SetPrompt(prompt)
	line, err := b.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrFormAborted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptString asks for a string with a default value
func (b *DealFormBuilder) promptString(prompt, defaultVal string) (string, error) {
	if defaultVal != "" {
		prompt = fmt.Sprintf("%s [%s]: ", prompt, defaultVal)
	} else {
		prompt += ": "
	}
	input, err := b.readLine(prompt)
	if err != nil {
		return "", err
	}
	if input == "" {
		return defaultVal, nil
	}
	return input, nil
}

// promptValidated re-asks until check accepts the answer
func (b *DealFormBuilder) promptValidated(prompt, defaultVal string, check func(string) error) (string, error) {
	for {
		input, err := b.promptString(prompt, defaultVal)
		if err != nil {
			return "", err
		}
		if err := check(input); err != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", err.Error())
			continue
		}
		return input, nil
	}
}

// promptRequired re-asks until a non-blank answer is given
func (b *DealFormBuilder) promptRequired(prompt, defaultVal string) (string, error) {
	return b.promptValidated(prompt, defaultVal, func(s string) error {
		if strings.TrimSpace(s) == "" {
			return ValidationError{Message: "Required"}
		}
		return nil
	})
}

// promptAmount asks for a positive money amount
func (b *DealFormBuilder) promptAmount(prompt, field, defaultVal string) (string, error) {
	var amount string
	_, err := b.promptValidated(prompt, defaultVal, func(s string) error {
		v, err := validateAmount(s, field)
		amount = v
		return err
	})
	return amount, err
}

// promptPercent asks for a percentage
func (b *DealFormBuilder) promptPercent(prompt, field, defaultVal string, allowNegative bool) (string, error) {
	var pct string
	_, err := b.promptValidated(prompt, defaultVal, func(s string) error {
		v, err := validatePercentInput(s, field, allowNegative)
		pct = v
		return err
	})
	return pct, err
}

// promptRisk asks for a 1-3 rating
func (b *DealFormBuilder) promptRisk(prompt, field string, defaultVal RiskRating) (RiskRating, error) {
	def := ""
	if defaultVal.Rated() {
		def = strconv.Itoa(int(defaultVal))
	}
	var rating RiskRating
	_, err := b.promptValidated(prompt+" (1=Low 2=Medium 3=High)", def, func(s string) error {
		v, err := validateRiskInput(s, field)
		rating = v
		return err
	})
	return rating, err
}

// promptStage offers FundingStages by number or name
func (b *DealFormBuilder) promptStage(defaultVal string) (string, error) {
	for i, stage := range FundingStages {
		fmt.Fprintf(b.out, "  %d. %s\n", i+1, stage)
	}
	var stage string
	_, err := b.promptValidated("Funding stage", defaultVal, func(s string) error {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(FundingStages) {
			stage = FundingStages[n-1]
			return nil
		}
		for _, candidate := range FundingStages {
			if strings.EqualFold(candidate, s) {
				stage = candidate
				return nil
			}
		}
		return ValidationError{Field: "fundingStage", Message: fmt.Sprintf("Choose 1-%d or type a stage name", len(FundingStages))}
	})
	return stage, err
}

func (b *DealFormBuilder) heading(title string) {
	fmt.Fprintln(b.out)
	fmt.Fprintf(b.out, "── %s %s\n", title, strings.Repeat("─", max(0, 60-len(title))))
}

// Build runs the whole form and returns the completed record
func (b *DealFormBuilder) Build() (DealRecord, error) {
	steps := []func() error{
		b.buildDealInformation,
		b.buildFounders,
		b.buildFinancials,
		b.buildInvestmentStructure,
		b.buildRisk,
		b.buildMilestones,
		b.buildNotes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return b.deal.Clone(), err
		}
	}

	PrintDerivedSummary(b.out, Derive(b.deal))
	return b.deal.Clone(), nil
}

func (b *DealFormBuilder) buildDealInformation() error {
	b.heading("Deal Information")
	d := &b.deal
	var err error
	if d.CompanyName, err = b.promptRequired("Company name", d.CompanyName); err != nil {
		return err
	}
	if d.Industry, err = b.promptRequired("Industry", d.Industry); err != nil {
		return err
	}
	if d.FundingStage, err = b.promptStage(d.FundingStage); err != nil {
		return err
	}
	if d.InvestmentAsk, err = b.promptAmount("Investment ask ($)", "investmentAsk", d.InvestmentAsk); err != nil {
		return err
	}
	d.Valuation, err = b.promptAmount("Valuation ($)", "valuation", d.Valuation)
	return err
}

// buildFounders edits existing founders, then adds new ones until a blank name
func (b *DealFormBuilder) buildFounders() error {
	b.heading("Founders")
	var founders []Founder
	existing := b.deal.Founders
	for i := 0; ; i++ {
		var f Founder
		if i < len(existing) {
			f = existing[i]
		}
		if f.ID == "" {
			f.ID = newID()
		}

		name, err := b.promptString(fmt.Sprintf("Founder %d name (blank to finish)", i+1), f.Name)
		if err != nil {
			return err
		}
		if name == "" {
			break
		}
		f.Name = name
		if f.Role, err = b.promptRequired("  Role", f.Role); err != nil {
			return err
		}
		if f.Experience, err = b.promptString("  Experience", f.Experience); err != nil {
			return err
		}
		if f.Background, err = b.promptString("  Background", f.Background); err != nil {
			return err
		}
		founders = append(founders, f)
	}
	if len(founders) == 0 {
		founders = []Founder{{ID: newID()}}
	}
	b.deal.Founders = founders
	return nil
}

func (b *DealFormBuilder) buildFinancials() error {
	b.heading("Financial Highlights")
	d := &b.deal
	var err error
	if d.Revenue, err = b.promptValidated("Annual revenue ($)", d.Revenue, func(s string) error {
		if _, ok := parseAmount(s); !ok {
			return ValidationError{Field: "revenue", Message: "Enter a number such as 1200000"}
		}
		return nil
	}); err != nil {
		return err
	}
	if d.MonthlyBurnRate, err = b.promptAmount("Monthly burn rate ($)", "monthlyBurnRate", d.MonthlyBurnRate); err != nil {
		return err
	}
	if d.GrowthPercentage, err = b.promptPercent("Growth (%)", "growthPercentage", d.GrowthPercentage, true); err != nil {
		return err
	}
	if d.AvailableCash, err = b.promptAmount("Available cash ($)", "availableCash", d.AvailableCash); err != nil {
		return err
	}
	fmt.Fprintf(b.out, "  Runway: %s\n", FormatRunway(ComputeRunwayMonths(d.MonthlyBurnRate, d.AvailableCash)))
	return nil
}

func (b *DealFormBuilder) buildInvestmentStructure() error {
	b.heading("Investment Structure")
	d := &b.deal
	var err error
	if d.EquityOffered, err = b.promptPercent("Equity offered (%)", "equityOffered", d.EquityOffered, false); err != nil {
		return err
	}
	if d.TicketSize, err = b.promptAmount("Ticket size ($)", "ticketSize", d.TicketSize); err != nil {
		return err
	}
	if d.MinimumInvestment, err = b.promptAmount("Minimum investment ($)", "minimumInvestment", d.MinimumInvestment); err != nil {
		return err
	}
	return b.buildAllocations()
}

// buildAllocations asks for each category's share, then offers extra
// categories, repeating until the split totals 100%
func (b *DealFormBuilder) buildAllocations() error {
	for {
		fmt.Fprintln(b.out, "  Use of funds (whole percentages, total must be 100)")
		for i := range b.deal.FundAllocations {
			a := &b.deal.FundAllocations[i]
			input, err := b.promptValidated("    "+a.Category+" %", strconv.Itoa(a.Percentage), func(s string) error {
				_, err := validateAllocationPercent(s, "allocation")
				return err
			})
			if err != nil {
				return err
			}
			a.Percentage, _ = validateAllocationPercent(input, "allocation")
		}

		for {
			category, err := b.promptString("    Extra category (blank to finish)", "")
			if err != nil {
				return err
			}
			if category == "" {
				break
			}
			input, err := b.promptValidated("    "+category+" %", "0", func(s string) error {
				_, err := validateAllocationPercent(s, "allocation")
				return err
			})
			if err != nil {
				return err
			}
			percent, _ := validateAllocationPercent(input, "allocation")
			b.deal = AddAllocation(b.deal, category)
			last := b.deal.FundAllocations[len(b.deal.FundAllocations)-1]
			b.deal = SetAllocationPercent(b.deal, last.ID, percent)
		}

		total := TotalAllocation(b.deal.FundAllocations)
		if total == 100 {
			fmt.Fprintln(b.out, "  ✓ Allocation totals 100%")
			return nil
		}
		fmt.Fprintf(b.out, "  ✗ Allocation totals %d%%, it must equal 100%%\n", total)
	}
}

func (b *DealFormBuilder) buildRisk() error {
	b.heading("Risk Assessment")
	d := &b.deal
	var err error
	if d.MarketRisk, err = b.promptRisk("Market risk", "marketRisk", d.MarketRisk); err != nil {
		return err
	}
	if d.ProductRisk, err = b.promptRisk("Product risk", "productRisk", d.ProductRisk); err != nil {
		return err
	}
	if d.TeamRisk, err = b.promptRisk("Team risk", "teamRisk", d.TeamRisk); err != nil {
		return err
	}
	score, rated := ComputeAverageRisk(d.MarketRisk, d.ProductRisk, d.TeamRisk)
	fmt.Fprintf(b.out, "  Overall: %s\n", FormatOverallRisk(score, rated))
	return nil
}

// buildMilestones edits existing milestones, then adds new ones until a blank title
func (b *DealFormBuilder) buildMilestones() error {
	b.heading("Milestones")
	var milestones []Milestone
	existing := b.deal.Milestones
	for i := 0; ; i++ {
		var m Milestone
		if i < len(existing) {
			m = existing[i]
		}
		if m.ID == "" {
			m.ID = newID()
		}

		title, err := b.promptString(fmt.Sprintf("Milestone %d title (blank to finish)", i+1), m.Title)
		if err != nil {
			return err
		}
		if title == "" {
			break
		}
		m.Title = title
		if m.Timeline, err = b.promptString("  Timeline (e.g. Q3 2026, March 2027)", m.Timeline); err != nil {
			return err
		}
		milestones = append(milestones, m)
	}
	if len(milestones) == 0 {
		milestones = []Milestone{{ID: newID()}}
	}
	b.deal.Milestones = milestones
	return nil
}

func (b *DealFormBuilder) buildNotes() error {
	b.heading("Notes & Strategy (optional)")
	d := &b.deal
	var err error
	if d.KeyAssumptions, err = b.promptString("Key assumptions", d.KeyAssumptions); err != nil {
		return err
	}
	if d.ExitStrategy, err = b.promptString("Exit strategy", d.ExitStrategy); err != nil {
		return err
	}
	d.AdditionalRemarks, err = b.promptString("Additional remarks", d.AdditionalRemarks)
	return err
}

// PrintDerivedSummary prints section status and anything still blocking export
func PrintDerivedSummary(out io.Writer, derived DerivedState) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d of %d sections complete (%d%%)\n", derived.CompletedCount, len(derived.Sections), derived.CompletionPct)
	for _, s := range derived.Sections {
		mark := "✗"
		if s.Complete {
			mark = "✓"
		}
		fmt.Fprintf(out, "  %s %s\n", mark, s.Title)
	}
	if derived.Valid {
		fmt.Fprintln(out, "Ready to export.")
		return
	}
	fmt.Fprintln(out, "Pending:")
	for _, item := range derived.PendingItems {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
