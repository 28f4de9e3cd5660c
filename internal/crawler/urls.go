package crawler

import (
	"net/url"
	"strings"
)

// Canonicalize resolves a candidate link against the page it was found on
// and reduces it to the canonical form used as the dedup identity:
// scheme + host + path, with fragment and query stripped and scheme/host
// lowercased. It returns the empty string for unusable input.
//
// Relative paths, "./", "../", absolute paths, and absolute URLs all
// resolve per standard URL-resolution rules.
func Canonicalize(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	candidate, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !candidate.IsAbs() && base != nil {
		candidate = base.ResolveReference(candidate)
	}
	if candidate.Host == "" {
		return ""
	}

	canonical := url.URL{
		Scheme: strings.ToLower(candidate.Scheme),
		Host:   strings.ToLower(candidate.Host),
		Path:   candidate.Path,
	}
	return canonical.String()
}

// NormalizeBaseURL prepares a user-supplied starting URL: a bare host
// without scheme is upgraded to https, and the host is lowercased so the
// derived crawl domain matches the canonical form of discovered links.
// It returns the parsed URL so the caller can derive the crawl domain from
// its host.
func NormalizeBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, err
	}
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed, nil
}
