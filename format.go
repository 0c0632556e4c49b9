package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// emptyValue is shown wherever a field has nothing displayable
const emptyValue = "—"

var numberPrinter = message.NewPrinter(language.AmericanEnglish)

// parseAmount parses a user-typed decimal string
func parseAmount(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// amountOrZero parses raw, treating anything unparsable as zero
func amountOrZero(raw string) decimal.Decimal {
	d, _ := parseAmount(raw)
	return d
}

// FormatCurrency formats a decimal string as whole US dollars ("$1,250,000").
// Unparsable input returns "—".
func FormatCurrency(raw string) string {
	amount, ok := parseAmount(raw)
	if !ok {
		return emptyValue
	}
	whole := amount.Round(0)
	sign := ""
	if whole.IsNegative() {
		sign = "-"
		whole = whole.Abs()
	}
	if !whole.BigInt().IsInt64() {
		return sign + "$" + groupThousands(whole.BigInt().String())
	}
	return sign + "$" + numberPrinter.Sprintf("%d", whole.IntPart())
}

// groupThousands inserts commas into a string of decimal digits
func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatPercent appends a percent sign to the literal text
func FormatPercent(raw string) string {
	if raw == "" {
		return emptyValue
	}
	return raw + "%"
}

// RiskLabel maps a 0-3 rating to its display label
func RiskLabel(rating RiskRating) string {
	return rating.String()
}

// ComputeRunwayMonths returns cash / burn in months.
// ok is false when the burn rate is zero (or negative) and runway cannot be determined.
func ComputeRunwayMonths(burnRateRaw, cashRaw string) (months float64, ok bool) {
	burn := amountOrZero(burnRateRaw)
	if !burn.IsPositive() {
		return 0, false
	}
	cash := amountOrZero(cashRaw)
	return cash.DivRound(burn, 8).InexactFloat64(), true
}

// FormatRunway renders runway months for display
func FormatRunway(months float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f months", months)
}

// ComputeAverageRisk averages the three ratings; ok is false unless all are rated
func ComputeAverageRisk(market, product, team RiskRating) (score float64, ok bool) {
	if !market.Rated() || !product.Rated() || !team.Rated() {
		return 0, false
	}
	return float64(market+product+team) / 3, true
}

// RGB is a colour in 0-255 components
type RGB struct {
	R, G, B int
}

// RiskBand is the qualitative reading of an average risk score
type RiskBand struct {
	Label string
	Tone  string // success, warning, destructive or muted
	Color RGB
}

var (
	riskBandPending  = RiskBand{Label: "Pending", Tone: "muted", Color: RGB{100, 116, 139}}
	riskBandLow      = RiskBand{Label: "Low", Tone: "success", Color: RGB{22, 163, 74}}
	riskBandModerate = RiskBand{Label: "Moderate", Tone: "warning", Color: RGB{245, 158, 11}}
	riskBandHigh     = RiskBand{Label: "High", Tone: "destructive", Color: RGB{220, 38, 38}}
)

// ClassifyRisk bands a score: <=1.5 Low, <=2.5 Moderate, above that High
func ClassifyRisk(score float64, ok bool) RiskBand {
	switch {
	case !ok:
		return riskBandPending
	case score <= 1.5:
		return riskBandLow
	case score <= 2.5:
		return riskBandModerate
	default:
		return riskBandHigh
	}
}

// FormatRiskPosture renders "Low (1.3 / 3.0)" or "Pending"
func FormatRiskPosture(score float64, ok bool) string {
	if !ok {
		return riskBandPending.Label
	}
	return fmt.Sprintf("%s (%.1f / 3.0)", ClassifyRisk(score, ok).Label, score)
}

// FormatOverallRisk renders "2.0 / 3.0 (Moderate)" or "Pending"
func FormatOverallRisk(score float64, ok bool) string {
	if !ok {
		return riskBandPending.Label
	}
	return fmt.Sprintf("%.1f / 3.0 (%s)", score, ClassifyRisk(score, ok).Label)
}

// TotalAllocation sums the allocation percentages as entered
func TotalAllocation(allocs []FundAllocation) int {
	total := 0
	for _, a := range allocs {
		total += a.Percentage
	}
	return total
}

// clampPercent limits a percentage to 0-100
func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// orDash returns s, or "—" when s is empty
func orDash(s string) string {
	if s == "" {
		return emptyValue
	}
	return s
}
