package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alvmarrod/web-sieve/internal/config"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/alvmarrod/web-sieve/internal/version"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// TitlePlaceholder is used when a page has no usable title element
const TitlePlaceholder = "No Title"

// Analyzer turns a fetched body into a PageResult. It returns nil only when
// the body is empty or cannot be parsed at all; missing elements degrade to
// placeholder values instead.
type Analyzer interface {
	Analyze(pageURL, body string) *storage.PageResult
}

// NewAnalyzer returns the strategy named by the configuration
func NewAnalyzer(name string, descriptionFallback bool) (Analyzer, error) {
	switch name {
	case config.AnalyzerRich, "":
		return &RichAnalyzer{DescriptionFallback: descriptionFallback}, nil
	case config.AnalyzerTags:
		return &TagAnalyzer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidAnalyzer, name)
	}
}

// RichAnalyzer extracts text signals and entities from the visible text
type RichAnalyzer struct {
	// DescriptionFallback uses the first paragraph when no meta description exists
	DescriptionFallback bool
}

// Analyze implements Analyzer
func (a *RichAnalyzer) Analyze(pageURL, body string) *storage.PageResult {
	if body == "" {
		return nil
	}
	start := time.Now()

	doc, err := parseDocument(body)
	if err != nil {
		logrus.Debugf("Failed to parse %s: %v", pageURL, err)
		return nil
	}

	result := newPageResult(pageURL)
	result.Content.Title = pageTitle(doc)
	result.Content.Description = pageDescription(doc, a.DescriptionFallback)

	text := visibleText(doc)
	result.Signals = WordStats(text)
	result.Entities = ExtractEntities(text)

	result.Crawl.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

func parseDocument(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// newPageResult fills the identity fields of a record for pageURL
func newPageResult(pageURL string) *storage.PageResult {
	result := &storage.PageResult{
		SchemaVersion:  version.SchemaVersion,
		ScraperVersion: version.Version,
		URL:            pageURL,
		Path:           "/",
		Entities: storage.Entities{
			CapitalizedTerms: []string{},
			Years:            []int{},
			Numbers:          []string{},
		},
	}
	if u, err := url.Parse(pageURL); err == nil {
		result.Domain = u.Host
		if u.Path != "" {
			result.Path = u.Path
		}
	}
	return result
}

func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return TitlePlaceholder
	}
	return title
}

// pageDescription returns the meta description, or the first non-empty
// paragraph when fallback is set, truncated to maxDescriptionRunes
func pageDescription(doc *goquery.Document, fallback bool) string {
	if content, ok := doc.Find("meta[name='description']").First().Attr("content"); ok && content != "" {
		return truncateRunes(content, maxDescriptionRunes)
	}
	if !fallback {
		return ""
	}

	var paragraph string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		paragraph = collapseSpaces(s.Text())
		return paragraph == ""
	})
	return truncateRunes(paragraph, maxDescriptionRunes)
}

// Elements whose text never renders
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// visibleText joins the trimmed text nodes of the document with single spaces
func visibleText(doc *goquery.Document) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hiddenElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
