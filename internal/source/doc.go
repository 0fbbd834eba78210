// Package source holds one adapter per external listing site or API. Every
// adapter produces candidate listings through the same contract; how a
// candidate becomes a catalog row is the pipeline's business, not the
// adapter's.
package source
