package crawler

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// hrefPattern matches href attribute values in single or double quotes.
//
// Design decision: Link discovery is lightweight pattern matching, not full
// HTML parsing. This trades precision for simplicity: malformed or
// script-generated markup may be missed, which is acceptable for coverage
// reporting. The crawl never depends on a DOM.
var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*("([^"]*)"|'([^']*)')`)

// ExtractLinks scans a page body for hyperlink targets, resolves them
// against the page URL, canonicalizes them, and keeps only the ones the
// admission rules accept. The result is deduplicated and in document order;
// the spider imposes its own traversal order.
//
// Extraction is total: malformed bodies yield fewer (or zero) links, never
// an error.
func ExtractLinks(body []byte, pageURL string, rules Rules) []string {
	matches := hrefPattern.FindAllSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	links := make([]string, 0, len(matches))

	for _, m := range matches {
		var href string
		switch {
		case len(m[2]) > 0:
			href = string(m[2])
		case len(m[3]) > 0:
			href = string(m[3])
		}
		href = html.UnescapeString(strings.TrimSpace(href))
		if href == "" || href == "#" {
			continue
		}

		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") ||
			strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") {
			continue
		}

		canonical := Canonicalize(href, base)
		if canonical == "" {
			continue
		}
		if !Eligible(canonical, rules) {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		links = append(links, canonical)
	}

	return links
}
