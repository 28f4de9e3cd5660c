// Package crawler implements the crawl engine: URL admission filtering,
// link discovery, fetching, and the depth-bounded traversal that populates
// the crawl ledger.
//
// The components are deliberately small and separately testable:
//   - Rules/Eligible: the pure admission predicate for discovered URLs
//   - Canonicalize: URL normalization that defines dedup identity
//   - ExtractLinks: lightweight href scanning (no full HTML parsing)
//   - Fetcher: typed fetch outcomes (success, HTTP error, transport failure)
//   - Spider: the traversal loop, sequential or worker-pool based
//
// The Spider owns nothing global: all crawl state lives in the
// model.CrawlReport it is given, so repeated crawls in one process are safe.
package crawler
