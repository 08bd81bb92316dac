package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/sirupsen/logrus"
)

// Href prefixes that never point at a crawlable page
var skippedSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// ExtractDomain extracts the lower-cased hostname from an absolute http(s) URL
func ExtractDomain(urlStr string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %s", parsed.Scheme, urlStr)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("missing host in %s", urlStr)
	}

	return strings.ToLower(hostname), nil
}

// ExtractLinks returns the distinct absolute URLs linked from body that fall
// inside targetDomain or its subdomains. Hrefs are resolved against pageURL
// and fragments are dropped. Order is not significant.
func ExtractLinks(pageURL, body, targetDomain string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return []string{}
	}

	doc, err := parseDocument(body)
	if err != nil {
		logrus.Debugf("Failed to parse links of %s: %v", pageURL, err)
		return []string{}
	}

	return linksFromDocument(doc, base, targetDomain)
}

func linksFromDocument(doc *goquery.Document, base *url.URL, targetDomain string) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := resolveLink(base, href, targetDomain)
		if !ok || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links
}

// resolveLink makes href absolute and reports whether it is a crawlable
// same-domain URL
func resolveLink(base *url.URL, href, targetDomain string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, prefix := range skippedSchemes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if !storage.HostInDomain(abs.Hostname(), targetDomain) {
		return "", false
	}

	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String(), true
}
