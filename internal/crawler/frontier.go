package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alvmarrod/web-sieve/internal/config"
	"github.com/alvmarrod/web-sieve/internal/memory"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/sirupsen/logrus"
)

// Frontier crawls one site: a seed URL and every page of its domain that is
// reachable from it or from the site's pages in the loaded checkpoint.
// All crawl state is owned by the goroutine calling Run; only fetching and
// analysis fan out.
type Frontier struct {
	siteID  int
	seedURL string
	domain  string

	cfg      *config.Config
	fetcher  PageFetcher
	analyzer Analyzer
	store    *storage.CheckpointStore
	onEvent  EventHandler

	queue   *Queue
	limiter *SubdomainLimiter
	graph   *memory.LinkGraph
	log     *logrus.Entry

	results   []storage.PageResult
	index     map[string]int
	completed int
	saveErr   error
}

// pageOutcome is what one fetch+analyze task hands back to the loop
type pageOutcome struct {
	entry  storage.FrontierEntry
	result *storage.PageResult
	links  []string
}

// NewFrontier creates the crawl state for one seed URL
func NewFrontier(siteID int, seedURL string, cfg *config.Config, fetcher PageFetcher, analyzer Analyzer, store *storage.CheckpointStore, onEvent EventHandler) (*Frontier, error) {
	seedURL = strings.TrimSpace(seedURL)
	domain, err := ExtractDomain(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if onEvent == nil {
		onEvent = func(Event) {}
	}

	return &Frontier{
		siteID:   siteID,
		seedURL:  seedURL,
		domain:   domain,
		cfg:      cfg,
		fetcher:  fetcher,
		analyzer: analyzer,
		store:    store,
		onEvent:  onEvent,
		queue:    NewQueue(),
		limiter:  NewSubdomainLimiter(cfg.MaxHostsPerSite),
		graph:    memory.NewLinkGraph(),
		log:      logrus.WithFields(logrus.Fields{"site": siteID, "domain": domain}),
		results:  make([]storage.PageResult, 0),
		index:    make(map[string]int),
	}, nil
}

// Domain returns the target domain derived from the seed URL
func (f *Frontier) Domain() string {
	return f.domain
}

// Graph returns the links discovered so far
func (f *Frontier) Graph() *memory.LinkGraph {
	return f.graph
}

// Results returns a copy of the site's current result set
func (f *Frontier) Results() []storage.PageResult {
	out := make([]storage.PageResult, len(f.results))
	copy(out, f.results)
	return out
}

// Pending returns the entries still waiting in the queue
func (f *Frontier) Pending() []storage.FrontierEntry {
	return f.queue.GetAllEntries()
}

// Seed loads the site's pages from existing and queues them for
// re-validation at their recorded depth, then queues the seed URL if it was
// not among them. The site's partition is registered with the store.
func (f *Frontier) Seed(existing []storage.PageResult) {
	for _, r := range storage.FilterDomain(existing, f.domain) {
		f.upsert(r)
		if f.queue.Push(storage.FrontierEntry{URL: r.URL, Depth: r.Crawl.Depth}) {
			f.registerHost(r.URL)
		}
	}

	if f.queue.Push(storage.FrontierEntry{URL: f.seedURL, Depth: 0}) {
		f.registerHost(f.seedURL)
	}

	f.store.Update(f.siteID, f.domain, f.results)
	f.log.Infof("Seeded frontier with %d queued URLs (%d from checkpoint)", f.queue.Size(), len(f.results))
}

// Run drains the queue in batches until it is empty, the page cap is reached
// or ctx is cancelled. The cap is only checked between batches, so a batch in
// progress always completes. Returns an error if any checkpoint save failed.
func (f *Frontier) Run(ctx context.Context) error {
	batchSize := f.cfg.MaxConcurrentRequests

	for !f.queue.IsEmpty() && len(f.results) < f.cfg.MaxPagesPerSite {
		if ctx.Err() != nil {
			f.log.Warnf("Crawl interrupted with %d URLs still queued", f.queue.Size())
			break
		}

		batch := f.queue.PopBatch(batchSize)
		if len(batch) == 0 {
			continue
		}
		f.log.Debugf("Fetching batch of %d URLs", len(batch))

		outcomes := make(chan pageOutcome, len(batch))
		for _, entry := range batch {
			go func() {
				outcomes <- f.process(ctx, entry)
			}()
		}

		// Applied in completion order; link discovery for a page follows its analysis
		for range batch {
			f.apply(ctx, <-outcomes)
		}
	}

	if f.cfg.TallyIncoming() {
		f.graph.ApplyIncoming(f.results)
	}
	f.save()

	f.log.Infof("Site finished: %d pages, %d scraped this run", len(f.results), f.completed)
	f.onEvent(Event{Type: EventSiteFinished, Domain: f.domain, URL: f.seedURL, Pages: len(f.results)})

	if f.saveErr != nil {
		return fmt.Errorf("checkpoint persistence failed for %s: %w", f.domain, f.saveErr)
	}
	return nil
}

// process fetches, analyzes and extracts links for one entry. It never
// touches frontier state so it can run on any goroutine.
func (f *Frontier) process(ctx context.Context, entry storage.FrontierEntry) pageOutcome {
	outcome := pageOutcome{entry: entry}

	fetched := f.fetcher.Fetch(ctx, entry.URL)
	if fetched == nil {
		return outcome
	}

	result := f.analyzer.Analyze(entry.URL, fetched.Body)
	if result == nil {
		return outcome
	}

	result.Crawl.DiscoveredFrom = entry.Referrer
	result.Crawl.Depth = entry.Depth
	result.Crawl.FetchTimeMs = fetched.Duration.Milliseconds()
	result.Crawl.Status = fetched.StatusCode

	outcome.links = ExtractLinks(entry.URL, fetched.Body, f.domain)
	result.Links.Outgoing = len(outcome.links)
	outcome.result = result

	return outcome
}

// apply records one outcome, queues its admissible links and saves the
// checkpoint every SaveInterval completed pages
func (f *Frontier) apply(ctx context.Context, o pageOutcome) {
	f.queue.Resolve(o.entry.URL)

	if o.result == nil {
		if ctx.Err() != nil {
			f.log.Debugf("Skipped %s during shutdown", o.entry.URL)
			return
		}
		f.log.Warnf("Failed: %s", o.entry.URL)
		f.onEvent(Event{Type: EventPageFailed, Domain: f.domain, URL: o.entry.URL})
		return
	}

	f.upsert(*o.result)
	f.graph.ReplaceOutgoing(o.entry.URL, o.links)

	queued := 0
	if f.cfg.MaxDepth == 0 || o.entry.Depth < f.cfg.MaxDepth {
		referrer := storage.StringPtr(o.entry.URL)
		for _, link := range o.links {
			if !f.admit(link) {
				continue
			}
			if f.queue.Push(storage.FrontierEntry{URL: link, Depth: o.entry.Depth + 1, Referrer: referrer}) {
				f.registerHost(link)
				queued++
			}
		}
	}

	f.log.Infof("Scraped: %s (depth=%d, links=%d, queued=%d)", o.entry.URL, o.entry.Depth, len(o.links), queued)
	f.onEvent(Event{
		Type:    EventPageScraped,
		Domain:  f.domain,
		URL:     o.entry.URL,
		Pages:   len(f.results),
		Links:   queued,
		FetchMs: o.result.Crawl.FetchTimeMs,
	})

	f.completed++
	if f.completed%f.cfg.SaveInterval == 0 {
		f.save()
	}
}

// admit decides whether a discovered link may join the queue. Admission
// runs on the loop goroutine only, so results+queue never exceeds the cap.
func (f *Frontier) admit(link string) bool {
	if f.queue.Seen(link) {
		return false
	}
	if len(f.results)+f.queue.Size() >= f.cfg.MaxPagesPerSite {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return f.limiter.CanAdd(u.Hostname())
}

func (f *Frontier) registerHost(rawURL string) {
	if u, err := url.Parse(rawURL); err == nil {
		f.limiter.Add(u.Hostname())
	}
}

// upsert replaces the record for r.URL in place or appends it
func (f *Frontier) upsert(r storage.PageResult) {
	if i, ok := f.index[r.URL]; ok {
		f.results[i] = r
		return
	}
	f.index[r.URL] = len(f.results)
	f.results = append(f.results, r)
}

// save persists the site's partition. A failure is reported loudly but the
// crawl carries on in memory.
func (f *Frontier) save() {
	total, err := f.store.SaveSite(f.siteID, f.domain, f.results)
	if err != nil {
		f.log.Errorf("CHECKPOINT SAVE FAILED (%d pages held in memory only): %v", len(f.results), err)
		if f.saveErr == nil {
			f.saveErr = err
		}
		f.onEvent(Event{Type: EventCheckpointFailed, Domain: f.domain, Pages: len(f.results), Err: err})
		return
	}

	f.log.Infof("Saved %d pages for %s (%d in checkpoint)", len(f.results), f.domain, total)
	f.onEvent(Event{Type: EventCheckpointSaved, Domain: f.domain, Pages: len(f.results)})
}
