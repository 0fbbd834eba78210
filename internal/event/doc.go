// Package event defines the canonical event record stored in the catalog
// and the date normalization used to turn free-text date fragments from
// scraped pages into timestamps.
package event
