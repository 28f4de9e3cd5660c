package crawler

import (
	"net/url"
	"strings"
)

// DefaultExcludedExtensions lists path suffixes that identify non-content
// resources. Matching is case-insensitive against the full path.
var DefaultExcludedExtensions = []string{
	".pdf", ".zip", ".exe", ".dmg", ".pkg",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico",
	".css", ".js", ".xml",
}

// DefaultExcludedPaths lists path substrings that identify non-content
// areas of a site. Matching is case-insensitive.
var DefaultExcludedPaths = []string{
	"/api/", "/admin/", "/wp-admin/", "/cgi-bin/", "/mail/",
}

// Rules holds the admission criteria for discovered URLs.
//
// Design decision: Rules is a plain value rather than an interface because
// the admission filter is a pure predicate; tests and the spider both build
// it from configuration and call Eligible directly.
type Rules struct {
	// Domain is the host the crawl is restricted to, stored lowercased.
	// Matching is case-insensitive but exact: no subdomain wildcarding,
	// "www.example.com" != "example.com".
	Domain string

	// ExcludedExtensions are path suffixes to reject (case-insensitive).
	ExcludedExtensions []string

	// ExcludedPaths are path substrings to reject (case-insensitive).
	ExcludedPaths []string
}

// NewRules builds admission rules for a domain with the default exclusion
// sets plus any extra exclusions from configuration.
func NewRules(domain string, extraExtensions, extraPaths []string) Rules {
	extensions := make([]string, 0, len(DefaultExcludedExtensions)+len(extraExtensions))
	extensions = append(extensions, DefaultExcludedExtensions...)
	for _, ext := range extraExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}

	paths := make([]string, 0, len(DefaultExcludedPaths)+len(extraPaths))
	paths = append(paths, DefaultExcludedPaths...)
	for _, p := range extraPaths {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			paths = append(paths, p)
		}
	}

	return Rules{
		Domain:             strings.ToLower(domain),
		ExcludedExtensions: extensions,
		ExcludedPaths:      paths,
	}
}

// Eligible reports whether a candidate URL may be crawled. It is a pure
// predicate: same input, same answer, no side effects. Unparseable input is
// ineligible rather than an error.
//
// All rules must pass:
//  1. the host equals the crawl domain exactly (case-insensitive)
//  2. the scheme is http or https
//  3. the path does not end with an excluded extension
//  4. the path does not contain an excluded path substring
func Eligible(raw string, rules Rules) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if strings.ToLower(parsed.Host) != rules.Domain {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range rules.ExcludedExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	for _, excluded := range rules.ExcludedPaths {
		if strings.Contains(path, excluded) {
			return false
		}
	}

	return true
}
