package catalog

import "time"

// Run statuses. A run is created as running and completed exactly once.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// SyncRun records one orchestrator invocation of one adapter.
type SyncRun struct {
	ID              string
	ScraperName     string
	Status          string
	ItemsFetched    int
	DurationSeconds float64
	ErrorMessage    string
	RunAt           time.Time
}
