package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/enrich"
	"github.com/tkinsella/dublin-events/internal/pipeline"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

type syncResultJSON struct {
	RunID   string `json:"run_id"`
	Source  string `json:"source"`
	Status  string `json:"status"`
	Created int    `json:"created"`
	Error   string `json:"error,omitempty"`
}

// WriteSyncResults renders one line per source run.
func WriteSyncResults(w io.Writer, results []pipeline.Result, format OutputFormat) error {
	if format == FormatJSON {
		out := make([]syncResultJSON, 0, len(results))
		for _, r := range results {
			j := syncResultJSON{RunID: r.RunID, Source: r.Source, Status: r.Status, Created: r.Created}
			if r.Err != nil {
				j.Error = r.Err.Error()
			}
			out = append(out, j)
		}
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSTATUS\tCREATED\tERROR")
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Source, r.Status, r.Created, errText)
	}
	return tw.Flush()
}

// WriteEnrichSummary renders the outcome of one enrichment run.
func WriteEnrichSummary(w io.Writer, sum enrich.Summary, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, map[string]int{
			"candidates": sum.Candidates,
			"enriched":   sum.Enriched,
			"skipped":    sum.Skipped,
		})
	}
	_, err := fmt.Fprintf(w, "Enriched %d of %d candidates (%d skipped).\n",
		sum.Enriched, sum.Candidates, sum.Skipped)
	return err
}

type runJSON struct {
	ID              string  `json:"id"`
	ScraperName     string  `json:"scraper_name"`
	Status          string  `json:"status"`
	ItemsFetched    int     `json:"items_fetched"`
	DurationSeconds float64 `json:"duration_seconds"`
	ErrorMessage    string  `json:"error_message,omitempty"`
	RunAt           string  `json:"run_at"`
}

// WriteRuns renders run-log rows, newest first.
func WriteRuns(w io.Writer, runs []catalog.SyncRun, format OutputFormat) error {
	if format == FormatJSON {
		out := make([]runJSON, 0, len(runs))
		for _, r := range runs {
			out = append(out, runJSON{
				ID:              r.ID,
				ScraperName:     r.ScraperName,
				Status:          r.Status,
				ItemsFetched:    r.ItemsFetched,
				DurationSeconds: r.DurationSeconds,
				ErrorMessage:    r.ErrorMessage,
				RunAt:           r.RunAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN AT\tSOURCE\tSTATUS\tITEMS\tSECONDS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%s\n",
			r.RunAt.UTC().Format("2006-01-02 15:04"), r.ScraperName, r.Status,
			r.ItemsFetched, r.DurationSeconds, r.ErrorMessage)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
