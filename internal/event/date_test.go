package event

import (
	"testing"
	"time"
)

// Fixed reference times so year inference is deterministic under test.
var (
	novNow = time.Date(2025, time.November, 14, 12, 0, 0, 0, time.UTC)
	marNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		now  time.Time
		want time.Time
		ok   bool
	}{
		{
			name: "ISO 8601 with zone",
			text: "2025-12-18T19:00:00Z",
			now:  novNow,
			want: time.Date(2025, time.December, 18, 19, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "ISO 8601 date only",
			text: "2026-01-10",
			now:  novNow,
			want: time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "full date with weekday and time",
			text: "Thursday 18 Dec 2025 , 7:00PM",
			now:  novNow,
			want: time.Date(2025, time.December, 18, 19, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "full date without time defaults to evening slot",
			text: "18 December 2025",
			now:  novNow,
			want: time.Date(2025, time.December, 18, 19, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "full date with ordinal day",
			text: "Friday 9th January 2026 doors 8pm",
			now:  novNow,
			want: time.Date(2026, time.January, 9, 20, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "partial date in the future stays in current year",
			text: "18 Dec",
			now:  novNow,
			want: time.Date(2025, time.December, 18, 19, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "partial date in earlier month rolls to next year",
			text: "10 Jan",
			now:  novNow,
			want: time.Date(2026, time.January, 10, 19, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			// Tested behavior, not assumed-correct: a past day in the
			// current month never rolls forward.
			name: "partial same-month past day does not roll",
			text: "1 Nov",
			now:  novNow,
			want: time.Date(2025, time.November, 1, 19, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "empty input",
			text: "",
			now:  novNow,
			ok:   false,
		},
		{
			name: "no date present",
			text: "Doors at some point, probably",
			now:  novNow,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.text, tt.now)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseDayHeader(t *testing.T) {
	tests := []struct {
		name string
		text string
		now  time.Time
		want time.Time
		ok   bool
	}{
		{
			name: "late-year header resolves to current year",
			text: "TUESDAY DECEMBER 9TH",
			now:  novNow,
			want: time.Date(2025, time.December, 9, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "january header seen in december rolls to next year",
			text: "MONDAY JANUARY 5TH",
			now:  time.Date(2025, time.December, 20, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			// December < March by month index, but the back-half-of-year
			// guard (month > 9) is not met, so no roll happens.
			name: "earlier-seeming header in spring does not roll",
			text: "TUESDAY DECEMBER 9TH",
			now:  marNow,
			want: time.Date(2025, time.December, 9, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "not a header",
			text: "TICKETS ON SALE NOW",
			now:  novNow,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDayHeader(tt.text, tt.now)
			if ok != tt.ok {
				t.Fatalf("ParseDayHeader(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDayHeader(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCombineDayTime(t *testing.T) {
	day := time.Date(2025, time.December, 9, 0, 0, 0, 0, time.UTC)

	got, ok := CombineDayTime(day, "8:45PM")
	if !ok {
		t.Fatal("expected clock to parse")
	}
	want := time.Date(2025, time.December, 9, 20, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineDayTime = %v, want %v", got, want)
	}

	if _, ok := CombineDayTime(day, "matinee"); ok {
		t.Error("expected unparseable clock to report false")
	}
}

func TestDedupeTimes(t *testing.T) {
	a := time.Date(2025, time.December, 9, 18, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.December, 9, 20, 30, 0, 0, time.UTC)

	got := DedupeTimes([]time.Time{a, b, a, b, a})
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct times, got %d", len(got))
	}
	if !got[0].Equal(a) || !got[1].Equal(b) {
		t.Error("expected discovery order to be preserved")
	}
}
