package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/enrich"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
	"github.com/tkinsella/dublin-events/internal/logger"
	"github.com/tkinsella/dublin-events/internal/pipeline"
	"github.com/tkinsella/dublin-events/internal/source"
	"github.com/tkinsella/dublin-events/internal/venue"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
	flagSource  string
	flagLimit   int
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dublin-events",
		Short: "Ingest Dublin event listings into a local catalog",
		Long: `Pulls concert, film, and theatre listings from ticketing APIs and venue
websites into one deduplicated SQLite catalog, with a run log per source.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (defaults apply without one)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newSyncCmd(), newEnrichCmd(), newRunsCmd())
	return cmd
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the ingestion pipeline",
		RunE:  runSync,
	}
	cmd.Flags().StringVar(&flagSource, "source", "", "Run a single named source instead of all")
	return cmd
}

func newEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Backfill missing artwork and synopses from the metadata API",
		RunE:  runEnrich,
	}
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent pipeline runs",
		RunE:  runRuns,
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

// env is the wired-up application: everything a command needs, built once
// per invocation.
type env struct {
	cfg    *config.Config
	store  catalog.Store
	getter *fetch.Getter
	venues *venue.Canonicalizer
	format OutputFormat
}

func setup() (*env, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	} else {
		logger.SetDefault(logger.New(logger.LevelInfo, os.Stderr))
	}

	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	venues := venue.Defaults()
	if cfg.AliasFile != "" {
		loaded, err := venue.Load(cfg.AliasFile)
		if err != nil {
			return nil, err
		}
		venues = loaded
	}

	store, err := catalog.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	return &env{
		cfg:    cfg,
		store:  store,
		getter: fetch.NewGetter(nil, cfg.Pacing.PerSecond, cfg.Pacing.Retries),
		venues: venues,
		format: format,
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		logger.Error("closing catalog", nil, err)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	browser := fetch.NewChromeSession()
	var sources []source.Source
	if flagSource != "" {
		src, err := source.ByName(flagSource, e.cfg, e.getter, browser)
		if err != nil {
			return err
		}
		sources = []source.Source{src}
	} else {
		sources = source.All(e.cfg, e.getter, browser)
	}

	runner := pipeline.New(e.store, e.venues, extract.New(e.getter), e.cfg.RunTimeout)
	results := runner.RunAll(cmd.Context(), sources)

	if err := WriteSyncResults(os.Stdout, results, e.format); err != nil {
		return err
	}
	logger.Info("sync metrics", logger.Fields(logger.GetMetricsSnapshot()))

	failed := 0
	for _, r := range results {
		if r.Status == catalog.StatusError {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d sources failed", failed)
	}
	return nil
}

func runEnrich(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	client := enrich.NewClient(e.cfg.Media, e.getter)
	sum, err := enrich.NewJob(e.store, client).Run(cmd.Context())
	if err != nil {
		return err
	}
	return WriteEnrichSummary(os.Stdout, sum, e.format)
}

func runRuns(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	runs, err := e.store.RecentRuns(cmd.Context(), flagLimit)
	if err != nil {
		return err
	}
	return WriteRuns(os.Stdout, runs, e.format)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
