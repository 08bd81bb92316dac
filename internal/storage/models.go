package storage

import "time"

// PageResult is one analyzed page. URL is the identity of the record across
// the whole checkpoint, not just within a site.
type PageResult struct {
	SchemaVersion  int    `json:"_schema_version"`
	ScraperVersion string `json:"_scraper_version"`

	URL    string `json:"url"`
	Domain string `json:"domain"`
	Path   string `json:"path"`

	Crawl    CrawlInfo  `json:"crawl"`
	Content  Content    `json:"content"`
	Signals  Signals    `json:"signals"`
	Entities Entities   `json:"entities"`
	Links    LinkCounts `json:"links"`
}

// CrawlInfo holds how and when a page was reached
type CrawlInfo struct {
	// DiscoveredFrom is nil for seeds and for pages re-seeded from a checkpoint
	DiscoveredFrom   *string `json:"discovered_from"`
	Depth            int     `json:"depth"`
	FetchTimeMs      int64   `json:"fetch_time_ms"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Status           int     `json:"status"`
}

// Content holds the descriptive fields of a page
type Content struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// Only filled by the tag analyzer
	TopWord string   `json:"top_word,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Signals holds word statistics over the visible text
type Signals struct {
	WordCount   int `json:"word_count"`
	UniqueWords int `json:"unique_words"`
	TextLength  int `json:"text_length"`
}

// Entities holds structured values pulled out of the visible text
type Entities struct {
	CapitalizedTerms []string `json:"capitalized_terms"`
	Years            []int    `json:"years"`
	Numbers          []string `json:"numbers"`
}

// LinkCounts holds same-site link counts for a page
type LinkCounts struct {
	Incoming int `json:"incoming"`
	Outgoing int `json:"outgoing"`
}

// FrontierEntry represents an item in a site's BFS crawl queue.
// It only lives for the duration of a run.
type FrontierEntry struct {
	URL      string
	Depth    int
	Referrer *string
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	SitesCrawled       int       `json:"sites_crawled"`
	PagesScraped       int       `json:"pages_scraped"`
	PagesFailed        int       `json:"pages_failed"`
	LinksDiscovered    int       `json:"links_discovered"`
	CheckpointsSaved   int       `json:"checkpoints_saved"`
	CheckpointFailures int       `json:"checkpoint_failures"`
	TotalFetchTimeMs   int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs     int64     `json:"avg_fetch_time_ms"`
	TerminationReason  string    `json:"termination_reason"`
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}
