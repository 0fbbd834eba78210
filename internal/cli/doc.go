// Package cli implements the command-line interface for dublin-events.
//
// The cli package provides the Cobra-based CLI with commands to run the
// ingestion pipeline (sync), backfill media metadata (enrich), and inspect
// the run log (runs). It wires the config, store, fetcher, and source
// adapters together; the packages underneath stay wiring-free.
package cli
