package crawler

import (
	"time"
	"unicode/utf8"

	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	topWordWindow = 1000
	tagCandidates = 10
	tagCount      = 2
	minTagRunes   = 5
	noneValue     = "none"
)

// TagAnalyzer produces the compact schema: title, description, the most
// common word of the page and two tags drawn from the description.
// Signals and entities are left empty.
type TagAnalyzer struct{}

// Analyze implements Analyzer
func (a *TagAnalyzer) Analyze(pageURL, body string) *storage.PageResult {
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
	result.Content.Description = pageDescription(doc, true)
	result.Content.TopWord = TopWord(visibleText(doc))
	result.Content.Tags = DescriptionTags(result.Content.Description)

	result.Crawl.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// TopWord returns the most frequent token among the first 1000 tokens of
// text, or "none" for text without words
func TopWord(text string) string {
	words := Tokenize(text)
	if len(words) > topWordWindow {
		words = words[:topWordWindow]
	}
	top := mostCommon(words, 1)
	if len(top) == 0 {
		return noneValue
	}
	return top[0]
}

// DescriptionTags picks up to two of the ten most common description tokens
// that are at least five characters long, padding with "none"
func DescriptionTags(description string) []string {
	tags := make([]string, 0, tagCount)
	for _, w := range mostCommon(Tokenize(description), tagCandidates) {
		if utf8.RuneCountInString(w) >= minTagRunes {
			tags = append(tags, w)
		}
		if len(tags) == tagCount {
			break
		}
	}
	for len(tags) < tagCount {
		tags = append(tags, noneValue)
	}
	return tags
}
