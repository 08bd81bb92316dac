package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/web-sieve/internal/crawler"
	"github.com/alvmarrod/web-sieve/internal/metrics"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/alvmarrod/web-sieve/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Termination reasons written to the metrics file
const (
	reasonCompleted = "completed"
	reasonSignal    = "signal"
	reasonError     = "persistence_error"
)

func main() {
	Execute()
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.Infof("Web Sieve v%s starting...", version.Version)

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logrus.Infof("Configuration loaded: seeds=%d, mode=%s, analyzer=%s, max_pages=%d, concurrency=%d",
		len(cfg.SeedURLs), cfg.Mode, cfg.Analyzer, cfg.MaxPagesPerSite, cfg.MaxConcurrentRequests)

	tracker := metrics.NewTracker()
	opts := []crawler.Option{crawler.WithEventHandler(trackEvents(tracker))}

	if cfg.IndexDBPath != "" {
		index, err := storage.NewStorage(cfg.IndexDBPath)
		if err != nil {
			return err
		}
		defer index.Close()
		logrus.Infof("Index database initialized: %s", cfg.IndexDBPath)
		opts = append(opts, crawler.WithIndex(index))
	}

	c, err := crawler.NewCrawler(cfg, storage.NewCheckpointStore(cfg.CheckpointPath), opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start progress logger
	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-progressDone:
				return
			}
		}
	}()

	_, runErr := c.Run(ctx)
	close(progressDone)

	reason := reasonCompleted
	switch {
	case runErr != nil:
		reason = reasonError
	case ctx.Err() != nil:
		reason = reasonSignal
		logrus.Warn("Crawl interrupted by signal, partial results saved")
	}

	logrus.Info("Final stats: " + tracker.LogProgress())
	if err := tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	return runErr
}

// trackEvents feeds crawl events into the metrics tracker
func trackEvents(tracker *metrics.Tracker) crawler.EventHandler {
	return func(ev crawler.Event) {
		switch ev.Type {
		case crawler.EventPageScraped:
			tracker.IncrementPagesScraped()
			tracker.AddLinksDiscovered(ev.Links)
			tracker.RecordFetchTime(time.Duration(ev.FetchMs) * time.Millisecond)
		case crawler.EventPageFailed:
			tracker.IncrementPagesFailed()
		case crawler.EventCheckpointSaved:
			tracker.IncrementCheckpointsSaved()
		case crawler.EventCheckpointFailed:
			tracker.IncrementCheckpointFailures()
		case crawler.EventSiteFinished:
			tracker.IncrementSitesCrawled()
		}
	}
}
