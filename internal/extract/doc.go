// Package extract turns one candidate listing into raw event fields using a
// layered fallback chain per field. Site-specific behavior lives in a Rules
// value, not in code, so every source shares the same extraction path.
package extract
