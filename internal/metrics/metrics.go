package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/web-sieve/internal/storage"
)

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementSitesCrawled increments the finished sites counter
func (t *Tracker) IncrementSitesCrawled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.SitesCrawled++
}

// IncrementPagesScraped increments the analyzed pages counter
func (t *Tracker) IncrementPagesScraped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesScraped++
}

// IncrementPagesFailed increments the failed fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// AddLinksDiscovered adds to the enqueued links counter
func (t *Tracker) AddLinksDiscovered(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksDiscovered += n
}

// IncrementCheckpointsSaved increments the successful save counter
func (t *Tracker) IncrementCheckpointsSaved() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.CheckpointsSaved++
}

// IncrementCheckpointFailures increments the failed save counter
func (t *Tracker) IncrementCheckpointFailures() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.CheckpointFailures++
}

// RecordFetchTime records a page fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs
	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.data.TotalFetchTimeMs = t.totalFetchTimeMs
	if t.fetchCount > 0 {
		t.data.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for periodic console updates
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Sites: %d done | Pages: %d scraped, %d failed | Links: %d queued | Checkpoints: %d saved, %d failed",
		t.data.SitesCrawled,
		t.data.PagesScraped,
		t.data.PagesFailed,
		t.data.LinksDiscovered,
		t.data.CheckpointsSaved,
		t.data.CheckpointFailures,
	)
}
