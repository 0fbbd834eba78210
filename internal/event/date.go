package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultShowHour is the local time assumed when a listing gives a date but
// no time. Midnight is reserved as the sentinel for "no specific time", so
// the typical evening-show slot is used instead.
const (
	DefaultShowHour   = 19
	DefaultShowMinute = 30
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	// "18 Dec 2025", "9th December 2025", with optional weekday noise around it
	fullDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})`)
	// "10 Jan" with no year following
	partialDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
	// "DECEMBER 9TH" day headers on schedule grids
	dayHeaderPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	// "7:00PM", "19:30", "8pm"
	clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)\b|\b(\d{1,2}):(\d{2})\b`)
)

// ParseDate resolves a free-text date fragment into a timestamp. It never
// fails hard: unparseable input returns (zero, false) and callers treat that
// as "skip this item". now anchors year inference for partial dates.
//
// Strategies are tried in priority order, stopping at the first success:
// machine-readable ISO-8601, full day-month-year, then day-month with the
// year inferred from now.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if t, ok := parseISO(text); ok {
		return t, true
	}

	if m := fullDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := months[strings.ToLower(m[2])[:3]]
		year, _ := strconv.Atoi(m[3])
		hour, minute := clockOrDefault(text)
		return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), true
	}

	if m := partialDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := months[strings.ToLower(m[2])[:3]]
		hour, minute := clockOrDefault(text)
		t := time.Date(now.Year(), month, day, hour, minute, 0, 0, time.UTC)
		// Roll to next year only when the date is past AND its month is
		// strictly earlier than the current month. A same-month past day
		// deliberately stays in the current year.
		if t.Before(now) && month < now.Month() {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}

	return time.Time{}, false
}

// ParseDayHeader resolves a schedule-grid day header like
// "TUESDAY DECEMBER 9TH" to midnight of that day. The year rolls forward
// only when the header month precedes the current month AND the current
// month is past September: the heuristic exists for late-year schedules that
// reference the following January, and is intentionally no wider than that.
func ParseDayHeader(text string, now time.Time) (time.Time, bool) {
	m := dayHeaderPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month := months[strings.ToLower(m[1])[:3]]
	day, _ := strconv.Atoi(m[2])
	year := now.Year()
	if int(month) < int(now.Month()) && int(now.Month()) > 9 {
		year++
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// CombineDayTime attaches a showtime fragment ("8:00PM", "20:30") to a day.
// Returns (day unchanged, false) when no clock is present.
func CombineDayTime(day time.Time, clockText string) (time.Time, bool) {
	hour, minute, ok := parseClock(clockText)
	if !ok {
		return day, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), true
}

// DedupeTimes drops exact-duplicate timestamps, preserving order. Listings
// that repeat the same showtime expand to a single candidate.
func DedupeTimes(ts []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(ts))
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func parseISO(text string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func clockOrDefault(text string) (hour, minute int) {
	if h, m, ok := parseClock(text); ok {
		return h, m
	}
	return DefaultShowHour, DefaultShowMinute
}

func parseClock(text string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	if m[4] != "" { // 24h "19:30"
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			return 0, 0, false
		}
		return hour, minute, true
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 12 || minute > 59 {
		return 0, 0, false
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, minute, true
}
