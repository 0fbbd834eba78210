package catalog

import "database/sql"

// migrateV001 creates the catalog and run-log tables.
//
// events has no uniqueness constraint on (title, venue, start_date, source):
// idempotence is enforced by the check-then-upsert path, and the benign race
// between concurrent same-source runs is an accepted design trade-off rather
// than something the schema quietly papers over.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE events (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			start_date   TEXT NOT NULL,
			venue        TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL DEFAULT 'other',
			description  TEXT,
			image_url    TEXT,
			external_url TEXT,
			source       TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX idx_events_start_date ON events(start_date)`,
		`CREATE INDEX idx_events_natural_key ON events(title, venue, start_date, source)`,
		`CREATE TABLE sync_runs (
			id               TEXT PRIMARY KEY,
			scraper_name     TEXT NOT NULL,
			status           TEXT NOT NULL,
			items_fetched    INTEGER NOT NULL DEFAULT 0,
			duration_seconds REAL NOT NULL DEFAULT 0,
			error_message    TEXT,
			run_at           DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_sync_runs_run_at ON sync_runs(run_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
