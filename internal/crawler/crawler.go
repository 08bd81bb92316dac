package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alvmarrod/web-sieve/internal/config"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EventType identifies a crawl progress event
type EventType int

const (
	EventPageScraped EventType = iota
	EventPageFailed
	EventCheckpointSaved
	EventCheckpointFailed
	EventSiteFinished
)

// Event reports crawl progress to an observer such as the metrics tracker
type Event struct {
	Type    EventType
	Domain  string
	URL     string
	Pages   int   // site result count after the event
	Links   int   // links queued by a scraped page
	FetchMs int64 // fetch duration of a scraped page
	Err     error
}

// EventHandler receives events. It may be called from several site
// goroutines at once in concurrent mode.
type EventHandler func(Event)

// Crawler runs one crawl over every configured seed and owns the final save
type Crawler struct {
	cfg      *config.Config
	store    *storage.CheckpointStore
	fetcher  PageFetcher
	analyzer Analyzer
	index    *storage.Storage
	onEvent  EventHandler
	sites    []*Frontier
}

// Option customizes a Crawler
type Option func(*Crawler)

// WithFetcher replaces the default colly fetcher
func WithFetcher(f PageFetcher) Option {
	return func(c *Crawler) { c.fetcher = f }
}

// WithAnalyzer replaces the analyzer selected by the config
func WithAnalyzer(a Analyzer) Option {
	return func(c *Crawler) { c.analyzer = a }
}

// WithIndex mirrors the final result set and link graph into a SQLite index
func WithIndex(s *storage.Storage) Option {
	return func(c *Crawler) { c.index = s }
}

// WithEventHandler registers an observer for crawl events
func WithEventHandler(h EventHandler) Option {
	return func(c *Crawler) { c.onEvent = h }
}

// NewCrawler creates a crawler for cfg. The config is validated here so a
// bad seed or limit fails before any network activity.
func NewCrawler(cfg *config.Config, store *storage.CheckpointStore, opts ...Option) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Crawler{cfg: cfg, store: store}
	for _, opt := range opts {
		opt(c)
	}

	if c.analyzer == nil {
		a, err := NewAnalyzer(cfg.Analyzer, cfg.DescriptionFallback)
		if err != nil {
			return nil, err
		}
		c.analyzer = a
	}
	if c.fetcher == nil {
		c.fetcher = NewFetcher(cfg.MaxConcurrentRequests, cfg.RequestTimeout(), cfg.UserAgent)
	}
	if c.onEvent == nil {
		c.onEvent = func(Event) {}
	}

	for i, seed := range cfg.SeedURLs {
		f, err := NewFrontier(i, seed, cfg, c.fetcher, c.analyzer, store, c.onEvent)
		if err != nil {
			return nil, err
		}
		c.sites = append(c.sites, f)
	}

	return c, nil
}

// Sites returns the per-seed frontiers in seed order
func (c *Crawler) Sites() []*Frontier {
	return c.sites
}

// Run loads the checkpoint, crawls every site and writes the final snapshot.
// The final save runs even when ctx is cancelled. The returned results are
// what was written; the error joins every persistence failure of the run.
func (c *Crawler) Run(ctx context.Context) ([]storage.PageResult, error) {
	start := time.Now()

	prior, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	logrus.Infof("Loaded %d existing results from %s", len(prior), c.store.Path())

	var siteErr error
	switch c.cfg.Mode {
	case config.ModeSequential:
		siteErr = c.runSequential(ctx)
	default:
		siteErr = c.runConcurrent(ctx, prior)
	}

	final := c.store.Snapshot()
	if err := c.store.Save(final); err != nil {
		logrus.Errorf("FINAL CHECKPOINT SAVE FAILED (%d results not persisted): %v", len(final), err)
		siteErr = errors.Join(siteErr, fmt.Errorf("failed to save final checkpoint: %w", err))
	} else {
		logrus.Infof("Saved %d results to %s", len(final), c.store.Path())
	}

	if c.index != nil {
		if err := c.writeIndex(final); err != nil {
			siteErr = errors.Join(siteErr, err)
		}
	}

	logrus.Infof("Done! Scraped %d pages across %d sites in %v", len(final), len(c.sites), time.Since(start).Round(time.Millisecond))
	return final, siteErr
}

// runSequential crawls sites one after another. Each site starts from the
// accumulated result set so earlier sites' pages are never lost.
func (c *Crawler) runSequential(ctx context.Context) error {
	var errs []error
	for _, f := range c.sites {
		if ctx.Err() != nil {
			break
		}
		f.Seed(c.store.Snapshot())
		if err := f.Run(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runConcurrent crawls all sites at once, each seeded from the loaded
// checkpoint. A failing site does not cancel the others.
func (c *Crawler) runConcurrent(ctx context.Context, prior []storage.PageResult) error {
	// Seed on this goroutine so partitions register in seed order
	for _, f := range c.sites {
		f.Seed(prior)
	}

	errs := make([]error, len(c.sites))
	var g errgroup.Group
	for i, f := range c.sites {
		g.Go(func() error {
			errs[i] = f.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (c *Crawler) writeIndex(final []storage.PageResult) error {
	if err := c.index.WritePages(final); err != nil {
		logrus.Errorf("Failed to write page index: %v", err)
		return fmt.Errorf("failed to write page index: %w", err)
	}

	var errs []error
	for _, f := range c.sites {
		if err := f.Graph().Flush(c.index); err != nil {
			errs = append(errs, err)
		}
	}
	logrus.Infof("Index updated with %d pages", len(final))
	return errors.Join(errs...)
}
