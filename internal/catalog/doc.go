// Package catalog is the persistence gateway: an idempotent upsert/query
// interface over the SQLite catalog store and the append-only run log.
package catalog
