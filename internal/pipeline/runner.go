package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/dedup"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/logger"
	"github.com/tkinsella/dublin-events/internal/source"
	"github.com/tkinsella/dublin-events/internal/venue"
)

// Result summarizes one completed run.
type Result struct {
	RunID   string
	Source  string
	Status  string
	Created int
	Err     error
}

// Runner orchestrates adapter runs against the catalog.
type Runner struct {
	store     catalog.Store
	engine    *dedup.Engine
	extractor *extract.Extractor
	venues    *venue.Canonicalizer
	timeout   time.Duration
}

// New creates a Runner. timeout bounds one adapter run end-to-end; a run
// that exceeds it is abandoned and reported as an error, with no rollback
// of rows already upserted (they are individually idempotent).
func New(store catalog.Store, venues *venue.Canonicalizer, extractor *extract.Extractor, timeout time.Duration) *Runner {
	return &Runner{
		store:     store,
		engine:    dedup.New(store),
		extractor: extractor,
		venues:    venues,
		timeout:   timeout,
	}
}

// RunSource executes one adapter inside a logged run. It never returns a Go
// error for adapter failure: the outcome, success or error, lives in the
// SyncRun row and the returned Result.
func (r *Runner) RunSource(ctx context.Context, src source.Source) Result {
	res := Result{Source: src.Name()}

	runID, err := r.store.CreateRun(ctx, src.Name())
	if err != nil {
		// Can't even open a run record: persistence-level failure.
		logger.Error("run record creation failed", logger.Fields{"source": src.Name()}, err)
		res.Status = catalog.StatusError
		res.Err = err
		return res
	}
	res.RunID = runID
	started := time.Now()

	// Completion must outlive the run's own deadline: an abandoned run still
	// gets its terminal row written.
	doneCtx := context.WithoutCancel(ctx)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	created, runErr := r.ingest(ctx, src)
	res.Created = created

	elapsed := time.Since(started)
	logger.RecordTiming("run."+src.Name(), elapsed)

	if runErr != nil {
		res.Status = catalog.StatusError
		res.Err = runErr
		logger.Error("run failed", logger.Fields{"source": src.Name(), "items": created}, runErr)
		if err := r.store.CompleteRun(doneCtx, runID, catalog.StatusError, created, elapsed, runErr.Error()); err != nil {
			logger.Error("run record completion failed", logger.Fields{"run_id": runID}, err)
		}
		return res
	}

	res.Status = catalog.StatusSuccess
	logger.Info("run complete", logger.Fields{"source": src.Name(), "items": created, "seconds": elapsed.Seconds()})
	if err := r.store.CompleteRun(doneCtx, runID, catalog.StatusSuccess, created, elapsed, ""); err != nil {
		logger.Error("run record completion failed", logger.Fields{"run_id": runID}, err)
	}
	return res
}

// ingest does the actual work and contains any panic from adapter or
// extraction code, so one misbehaving source can't take down a multi-source
// invocation.
func (r *Runner) ingest(ctx context.Context, src source.Source) (created int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	cands, err := src.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching candidates: %w", err)
	}
	rules := src.Rules()

	for _, cand := range cands {
		// A timed-out run is abandoned, not ground through.
		if ctx.Err() != nil {
			return created, fmt.Errorf("run abandoned: %w", ctx.Err())
		}

		events := cand.Events
		if len(events) == 0 {
			events, err = r.extractor.Details(ctx, rules, cand.Seed())
			if err != nil {
				if ctx.Err() != nil {
					return created, fmt.Errorf("run abandoned: %w", ctx.Err())
				}
				// One broken detail page is that page's problem only.
				logger.Warn("candidate skipped", logger.Fields{"source": src.Name(), "url": cand.URL, "error": err.Error()})
				logger.IncrCounter("items.skipped")
				continue
			}
		}

		for i := range events {
			n, perr := r.persist(ctx, src, rules, &events[i])
			if perr != nil {
				return created, perr // store failures are run-fatal
			}
			created += n
		}
	}

	return created, nil
}

// persist normalizes and writes one extracted event, applying both dedup
// checks. Returns 1 when a new catalog row was created.
func (r *Runner) persist(ctx context.Context, src source.Source, rules extract.Rules, e *event.Event) (int, error) {
	if !e.HasDate() {
		logger.IncrCounter("items.no_date")
		return 0, nil
	}
	e.Venue = r.venues.Canonical(e.Venue)
	if e.ID == "" {
		e.ID = event.HashID(e.Source, e.Title, e.StartDate)
	}

	exists, err := r.engine.Exists(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}
	if !exists && src.Aggregator() {
		suppressed, err := r.engine.Suppressed(ctx, e)
		if err != nil {
			return 0, fmt.Errorf("suppression check: %w", err)
		}
		if suppressed {
			logger.Debug("candidate suppressed by authoritative source", logger.Fields{"source": e.Source, "title": e.Title, "day": e.Day()})
			logger.IncrCounter("items.suppressed")
			return 0, nil
		}
	}

	createdRow, err := r.store.UpsertEvent(ctx, e, rules.Overwrite)
	if err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	if createdRow {
		return 1, nil
	}
	return 0, nil
}

// RunAll executes every adapter, isolating failures per source. Adapters
// share nothing but the store, so they run concurrently.
func (r *Runner) RunAll(ctx context.Context, sources []source.Source) []Result {
	results := make([]Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = r.RunSource(gctx, src)
			return nil // a failed source must not cancel its siblings
		})
	}
	g.Wait()
	return results
}
