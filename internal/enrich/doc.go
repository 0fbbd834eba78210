// Package enrich backfills missing artwork and synopses from a media
// metadata search API. It runs after ingestion, touches only the media
// columns, and makes at most one lookup per distinct title per run.
package enrich
