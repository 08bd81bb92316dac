package storage

import (
	"net/url"
	"strings"
)

// HostInDomain reports whether host is domain itself or one of its subdomains.
// Both sides are compared case-insensitively and any port on host is ignored.
func HostInDomain(host, domain string) bool {
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// URLInDomain reports whether rawURL belongs to domain (see HostInDomain)
func URLInDomain(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return HostInDomain(u.Hostname(), domain)
}

// FilterDomain returns the results whose URL belongs to domain, in order
func FilterDomain(results []PageResult, domain string) []PageResult {
	out := make([]PageResult, 0)
	for _, r := range results {
		if URLInDomain(r.URL, domain) {
			out = append(out, r)
		}
	}
	return out
}

// ExcludeDomain returns the results whose URL does not belong to domain, in order
func ExcludeDomain(results []PageResult, domain string) []PageResult {
	out := make([]PageResult, 0, len(results))
	for _, r := range results {
		if !URLInDomain(r.URL, domain) {
			out = append(out, r)
		}
	}
	return out
}

// Merge combines the results of every other domain with the full in-memory
// result set of the site being crawled. The site's records win on URL clashes.
func Merge(existingExcludingDomain, siteResults []PageResult) []PageResult {
	return DedupeByURL(existingExcludingDomain, siteResults)
}

// DedupeByURL concatenates collections and keeps one record per URL.
// A later record replaces an earlier one at the position where the URL
// first appeared, so the output order is stable across repeated merges.
func DedupeByURL(collections ...[]PageResult) []PageResult {
	total := 0
	for _, c := range collections {
		total += len(c)
	}

	out := make([]PageResult, 0, total)
	index := make(map[string]int, total)
	for _, c := range collections {
		for _, r := range c {
			if i, ok := index[r.URL]; ok {
				out[i] = r
				continue
			}
			index[r.URL] = len(out)
			out = append(out, r)
		}
	}
	return out
}
