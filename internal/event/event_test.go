package event

import (
	"testing"
	"time"
)

func TestHashID(t *testing.T) {
	start := time.Date(2025, time.December, 18, 19, 0, 0, 0, time.UTC)

	id1 := HashID("whelans", "The Scratch", start)
	id2 := HashID("whelans", "The Scratch", start)
	if id1 != id2 {
		t.Error("HashID should be deterministic for identical inputs")
	}

	if HashID("whelans", "The Scratch", start) == HashID("vicarstreet", "The Scratch", start) {
		t.Error("different sources should produce different IDs")
	}
	if HashID("whelans", "The Scratch", start) == HashID("whelans", "The Scratch", start.Add(time.Hour)) {
		t.Error("different start times should produce different IDs")
	}
}

func TestDay(t *testing.T) {
	e := &Event{StartDate: time.Date(2025, time.December, 18, 23, 30, 0, 0, time.UTC)}
	if got := e.Day(); got != "2025-12-18" {
		t.Errorf("Day() = %q, want 2025-12-18", got)
	}
}

func TestHasDate(t *testing.T) {
	if (&Event{}).HasDate() {
		t.Error("zero start date should report no date")
	}
	e := &Event{StartDate: time.Now().UTC()}
	if !e.HasDate() {
		t.Error("populated start date should report a date")
	}
}
