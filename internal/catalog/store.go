package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tkinsella/dublin-events/internal/event"
)

// Store defines the persistence operations the pipeline and enrichment job
// depend on. All writes are safe to retry: a crash between a Find and an
// Upsert may at worst leave a duplicate row, which is an accepted risk.
type Store interface {
	UpsertEvent(ctx context.Context, e *event.Event, overwrite []string) (created bool, err error)
	FindByNaturalKey(ctx context.Context, title, venue string, start time.Time, source string) (*event.Event, error)
	EventsOnDay(ctx context.Context, day string) ([]event.Event, error)
	MissingMedia(ctx context.Context) ([]event.Event, error)
	UpdateMedia(ctx context.Context, id, imageURL, description string) error
	CreateRun(ctx context.Context, scraperName string) (string, error)
	CompleteRun(ctx context.Context, runID, status string, items int, duration time.Duration, errMsg string) error
	RecentRuns(ctx context.Context, limit int) ([]SyncRun, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertEvent *sql.Stmt
	findByKey   *sql.Stmt
	eventsOnDay *sql.Stmt
}

// Open opens (creating if needed) and migrates the catalog database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and migrated
// database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertEvent, err = s.db.Prepare(`
		INSERT INTO events (id, title, start_date, venue, category, description, image_url, external_url, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.findByKey, err = s.db.Prepare(`
		SELECT id, title, start_date, venue, category, description, image_url, external_url, source
		FROM events WHERE title = ? AND venue = ? AND start_date = ? AND source = ?
	`)
	if err != nil {
		return err
	}

	s.eventsOnDay, err = s.db.Prepare(`
		SELECT id, title, start_date, venue, category, description, image_url, external_url, source
		FROM events WHERE substr(start_date, 1, 10) = ?
	`)
	if err != nil {
		return err
	}

	return nil
}

// startKey is the canonical stored form of a start timestamp.
func startKey(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z07:00")
}

// UpsertEvent inserts the event, or merges it into the existing row with
// the same natural key. Merging fills null fields only, except the columns
// named in overwrite which the caller is explicitly authorized to replace.
// Returns whether a new row was created.
func (s *SQLiteStore) UpsertEvent(ctx context.Context, e *event.Event, overwrite []string) (bool, error) {
	existing, err := s.FindByNaturalKey(ctx, e.Title, e.Venue, e.StartDate, e.Source)
	if err != nil {
		return false, err
	}

	if existing == nil {
		if e.ID == "" {
			e.ID = event.HashID(e.Source, e.Title, e.StartDate)
		}
		_, err := s.insertEvent.ExecContext(ctx,
			e.ID, e.Title, startKey(e.StartDate), e.Venue, string(e.Category),
			nullable(e.Description), nullable(e.ImageURL), nullable(e.ExternalURL), e.Source,
		)
		if err != nil {
			return false, fmt.Errorf("insert event: %w", err)
		}
		return true, nil
	}

	if err := s.merge(ctx, existing, e, overwrite); err != nil {
		return false, err
	}
	e.ID = existing.ID
	return false, nil
}

// merge writes only the fields the incoming event is allowed to change:
// null columns, plus explicitly authorized overwrites.
func (s *SQLiteStore) merge(ctx context.Context, existing, incoming *event.Event, overwrite []string) error {
	allowed := make(map[string]bool, len(overwrite))
	for _, col := range overwrite {
		allowed[col] = true
	}

	set := map[string]string{}
	if incoming.Description != "" && (existing.Description == "" || allowed["description"]) {
		set["description"] = incoming.Description
	}
	if incoming.ImageURL != "" && (existing.ImageURL == "" || allowed["image_url"]) {
		set["image_url"] = incoming.ImageURL
	}
	if incoming.ExternalURL != "" && (existing.ExternalURL == "" || allowed["external_url"]) {
		set["external_url"] = incoming.ExternalURL
	}
	if len(set) == 0 {
		return nil
	}

	query := "UPDATE events SET updated_at = CURRENT_TIMESTAMP"
	args := make([]interface{}, 0, len(set)+1)
	for col, val := range set {
		query += ", " + col + " = ?"
		args = append(args, val)
	}
	query += " WHERE id = ?"
	args = append(args, existing.ID)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("merge event %s: %w", existing.ID, err)
	}
	return nil
}

// FindByNaturalKey returns the row matching (title, venue, start, source),
// or nil when none exists.
func (s *SQLiteStore) FindByNaturalKey(ctx context.Context, title, venue string, start time.Time, source string) (*event.Event, error) {
	row := s.findByKey.QueryRowContext(ctx, title, venue, startKey(start), source)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

// EventsOnDay returns every event on the given calendar day (YYYY-MM-DD),
// regardless of source. Used by cross-source suppression.
func (s *SQLiteStore) EventsOnDay(ctx context.Context, day string) ([]event.Event, error) {
	rows, err := s.eventsOnDay.QueryContext(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("query day %s: %w", day, err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// MissingMedia returns events lacking an image or a description, for the
// enrichment job.
func (s *SQLiteStore) MissingMedia(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, start_date, venue, category, description, image_url, external_url, source
		FROM events
		WHERE image_url IS NULL OR image_url = '' OR description IS NULL OR description = ''
		ORDER BY start_date
	`)
	if err != nil {
		return nil, fmt.Errorf("query missing media: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// UpdateMedia fills the media columns of one row. Only null/empty columns
// are written; store-managed columns are never part of the payload.
func (s *SQLiteStore) UpdateMedia(ctx context.Context, id, imageURL, description string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE events SET
			image_url   = CASE WHEN image_url IS NULL OR image_url = '' THEN ? ELSE image_url END,
			description = CASE WHEN description IS NULL OR description = '' THEN ? ELSE description END,
			updated_at  = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullable(imageURL), nullable(description), id)
	if err != nil {
		return fmt.Errorf("update media for %s: %w", id, err)
	}
	return nil
}

// CreateRun appends a run-log row with status running and returns its ID.
func (s *SQLiteStore) CreateRun(ctx context.Context, scraperName string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, scraper_name, status, run_at)
		VALUES (?, ?, ?, ?)
	`, id, scraperName, StatusRunning, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// CompleteRun finalizes a run exactly once with its terminal status.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID, status string, items int, duration time.Duration, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_runs
		SET status = ?, items_fetched = ?, duration_seconds = ?, error_message = ?
		WHERE id = ? AND status = ?
	`, status, items, duration.Seconds(), nullable(errMsg), runID, StatusRunning)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", runID, err)
	}
	return nil
}

// RecentRuns returns run-log rows ordered newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scraper_name, status, items_fetched, duration_seconds, error_message, run_at
		FROM sync_runs ORDER BY run_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		var errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.ScraperName, &r.Status, &r.ItemsFetched, &r.DurationSeconds, &errMsg, &r.RunAt); err != nil {
			return nil, err
		}
		r.ErrorMessage = errMsg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the prepared statements and the database handle.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertEvent, s.findByKey, s.eventsOnDay} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var e event.Event
	var start string
	var desc, image, external sql.NullString
	if err := row.Scan(&e.ID, &e.Title, &start, &e.Venue, (*string)(&e.Category), &desc, &image, &external, &e.Source); err != nil {
		return nil, err
	}
	t, err := time.Parse("2006-01-02T15:04:05Z07:00", start)
	if err != nil {
		return nil, fmt.Errorf("stored start_date %q: %w", start, err)
	}
	e.StartDate = t.UTC()
	e.Description = desc.String
	e.ImageURL = image.String
	e.ExternalURL = external.String
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]event.Event, error) {
	var events []event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
