// Package pipeline drives one source adapter end-to-end inside a logged
// run: acquire candidates, extract details, normalize, dedup, persist. A
// source's total failure lands in its own SyncRun row and never reaches the
// other sources.
package pipeline
