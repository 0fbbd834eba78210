package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/pipeline"
)

func TestWriteSyncResultsText(t *testing.T) {
	var buf bytes.Buffer
	results := []pipeline.Result{
		{RunID: "a", Source: "whelans", Status: catalog.StatusSuccess, Created: 12},
		{RunID: "b", Source: "vicarstreet", Status: catalog.StatusError, Err: errors.New("timeout")},
	}

	if err := WriteSyncResults(&buf, results, FormatText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SOURCE", "whelans", "success", "12", "vicarstreet", "error", "timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSyncResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	results := []pipeline.Result{
		{RunID: "a", Source: "whelans", Status: catalog.StatusSuccess, Created: 3},
	}

	if err := WriteSyncResults(&buf, results, FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["source"] != "whelans" {
		t.Errorf("unexpected decoded output: %+v", decoded)
	}
	if _, present := decoded[0]["error"]; present {
		t.Error("error key should be omitted for successful runs")
	}
}

func TestWriteRunsText(t *testing.T) {
	var buf bytes.Buffer
	runs := []catalog.SyncRun{
		{
			ID:              "r1",
			ScraperName:     "ticketmaster",
			Status:          catalog.StatusSuccess,
			ItemsFetched:    48,
			DurationSeconds: 3.2,
			RunAt:           time.Date(2025, time.December, 18, 6, 0, 0, 0, time.UTC),
		},
	}

	if err := WriteRuns(&buf, runs, FormatText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"2025-12-18 06:00", "ticketmaster", "success", "48"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
