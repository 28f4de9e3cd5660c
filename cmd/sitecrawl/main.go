// Package main provides the entry point for the sitecrawl CLI.
//
// sitecrawl maps a single website: it walks same-domain links to a bounded
// depth, records the status of every page, and produces a Markdown or JSON
// report of the site's structure and broken pages.
//
// Usage:
//
//	sitecrawl crawl <url>
//	sitecrawl history
//
// See --help for all available options.
package main

// main is the entry point for sitecrawl.
func main() {
	Execute()
}
