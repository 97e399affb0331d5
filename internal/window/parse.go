package window

import (
	"strings"
	"time"
)

// Accepted shapes, tried in order. The listing API is not consistent
// about which one it sends, even within a single response.
var timeLayouts = []string{
	"03:04 PM",
	"3:04 PM",
	"03:04:05 PM",
	"15:04",
	"15:04:05",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

var meridiemReplacer = strings.NewReplacer(
	"A.M.", "AM",
	"P.M.", "PM",
	"A.M", "AM",
	"P.M", "PM",
)

// normalize trims, uppercases, collapses internal whitespace runs and
// maps punctuation variants of the meridiem markers ("a.m." -> "AM").
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return meridiemReplacer.Replace(s)
}

// parseTimeOfDay parses a raw time-of-day string against the accepted
// shapes. Only the leading hours:minutes (and optional seconds) of the
// string are significant, so truncated prefixes are tried as well.
func parseTimeOfDay(raw string) (time.Time, bool) {
	s := normalize(raw)
	if s == "" {
		return time.Time{}, false
	}

	candidates := []string{s}
	if len(s) > 8 {
		candidates = append(candidates, strings.TrimSpace(s[:8]))
	}
	if len(s) > 5 {
		candidates = append(candidates, strings.TrimSpace(s[:5]))
	}

	for _, candidate := range candidates {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseDate parses a raw calendar-date string. An ISO date-time is
// accepted through its leading date prefix.
func parseDate(raw string) (time.Time, bool) {
	s := normalize(raw)
	if s == "" {
		return time.Time{}, false
	}

	candidates := []string{s}
	if len(s) > 10 {
		candidates = append(candidates, s[:10])
	}

	for _, candidate := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// combine places a parsed time-of-day onto a parsed calendar date.
func combine(date, tod time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0,
		time.UTC,
	)
}
