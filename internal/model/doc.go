// Package model defines the core data structures shared across the crawler,
// report writers, and database layers.
//
// The central type is the Ledger, the authoritative record of one crawl run:
// which URLs were visited, at what depth, and with what Outcome. The Ledger
// is created empty when a crawl starts, populated monotonically while the
// crawl runs, and read-only once the crawl finishes or is interrupted.
//
// Design decision: We keep data structures separate from the crawler logic
// (which lives in internal/crawler) so that report writers and the database
// layer can consume crawl results without importing crawler internals.
package model
