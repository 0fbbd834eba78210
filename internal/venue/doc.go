// Package venue canonicalizes raw scraped venue strings using a static
// alias table, so the same room is never stored under two spellings.
package venue
