package main

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	quarterPattern   = regexp.MustCompile(`q([1-4])\s*([12]\d{3})`)
	monthYearPattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+([12]\d{3})`)
	yearOnlyPattern  = regexp.MustCompile(`\b([12]\d{3})\b`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November,
	"dec": time.December,
}

// timelineFallbackBase sits far above any real timestamp so unparsable
// timelines always sort after dated ones.
const timelineFallbackBase int64 = 1 << 62

// ResolveTimelineKey turns a free-text timeline into a sortable key
// (Unix milliseconds, UTC). Recognised forms, first match wins:
// "Q2 2026", "March 2027" / "Sept 2027", and a bare year anywhere in the
// text. Anything else sorts last, in index order.
func ResolveTimelineKey(raw string, index int) int64 {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return fallbackTimelineKey(index)
	}

	if m := quarterPattern.FindStringSubmatch(value); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return monthStart(year, time.Month((quarter-1)*3+1))
	}

	if m := monthYearPattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[2])
		return monthStart(year, monthByPrefix[m[1]])
	}

	if m := yearOnlyPattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		return monthStart(year, time.January)
	}

	return fallbackTimelineKey(index)
}

func monthStart(year int, month time.Month) int64 {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func fallbackTimelineKey(index int) int64 {
	return timelineFallbackBase - 1000 + int64(index)
}

// SortMilestones drops milestones without a title and orders the rest by
// timeline, keeping entry order for equal keys.
func SortMilestones(milestones []Milestone) []Milestone {
	type keyed struct {
		milestone Milestone
		key       int64
		index     int
	}

	var entries []keyed
	for _, m := range milestones {
		if strings.TrimSpace(m.Title) == "" {
			continue
		}
		idx := len(entries)
		entries = append(entries, keyed{milestone: m, key: ResolveTimelineKey(m.Timeline, idx), index: idx})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].index < entries[j].index
	})

	sorted := make([]Milestone, len(entries))
	for i, e := range entries {
		sorted[i] = e.milestone
	}
	return sorted
}
