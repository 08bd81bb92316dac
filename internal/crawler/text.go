package crawler

import (
	"regexp"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/alvmarrod/web-sieve/internal/storage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxCapitalizedTerms = 20
	maxNumbers          = 20
	maxDescriptionRunes = 300
)

var (
	// Unicode-aware word token, the equivalent of \w+
	wordRegex   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	yearRegex   = regexp.MustCompile(`\b(?:18|19|20)\d{2}\b`)
	numberRegex = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// Tokenize returns the lower-cased word tokens of text
func Tokenize(text string) []string {
	return wordRegex.FindAllString(cases.Lower(language.Und).String(text), -1)
}

// WordStats counts all tokens and distinct tokens in text
func WordStats(text string) storage.Signals {
	words := Tokenize(text)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return storage.Signals{
		WordCount:   len(words),
		UniqueWords: len(unique),
		TextLength:  utf8.RuneCountInString(text),
	}
}

// ExtractEntities pulls capitalized terms, years and numeric literals out of
// text. It must be given the original-case text since capitalization is the signal.
func ExtractEntities(text string) storage.Entities {
	capitalized := make(map[string]struct{})
	for _, w := range wordRegex.FindAllString(text, -1) {
		first, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(first) && utf8.RuneCountInString(w) > 2 {
			capitalized[w] = struct{}{}
		}
	}

	yearSet := make(map[int]struct{})
	for _, y := range yearRegex.FindAllString(text, -1) {
		if n, err := strconv.Atoi(y); err == nil {
			yearSet[n] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	numberSet := make(map[string]struct{})
	for _, n := range numberRegex.FindAllString(text, -1) {
		numberSet[n] = struct{}{}
	}

	return storage.Entities{
		CapitalizedTerms: sortedHead(capitalized, maxCapitalizedTerms),
		Years:            years,
		Numbers:          sortedHead(numberSet, maxNumbers),
	}
}

// sortedHead returns the first n members of set in lexicographic order
func sortedHead(set map[string]struct{}, n int) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// truncateRunes cuts s to at most n characters without splitting a rune
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// mostCommon returns up to n tokens ordered by descending frequency.
// Ties keep first-occurrence order.
func mostCommon(words []string, n int) []string {
	counts := make(map[string]int, len(words))
	order := make([]string, 0)
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
