package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CheckpointStore persists the cross-site result set as a single JSON snapshot.
// The snapshot is rewritten in full on every save, never appended to.
type CheckpointStore struct {
	path string

	mu    sync.Mutex
	prior []PageResult
	sites map[int]sitePartition
	order []int
}

// sitePartition is the latest in-memory result set reported by one site crawl
type sitePartition struct {
	domain  string
	results []PageResult
}

// NewCheckpointStore creates a store backed by the file at path
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{
		path:  path,
		sites: make(map[int]sitePartition),
	}
}

// Path returns the snapshot file location
func (s *CheckpointStore) Path() string {
	return s.path
}

// Load reads the snapshot from disk and keeps it as the prior result set.
// A missing file yields an empty set; an unreadable or corrupt file is an error.
func (s *CheckpointStore) Load() ([]PageResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.setPrior(nil)
			return []PageResult{}, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var results []PageResult
	if len(data) > 0 {
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse checkpoint %s: %w", s.path, err)
		}
	}
	if results == nil {
		results = []PageResult{}
	}

	// Older snapshots may hold the same URL twice
	results = DedupeByURL(results)
	s.setPrior(results)

	return cloneResults(results), nil
}

func (s *CheckpointStore) setPrior(results []PageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prior = cloneResults(results)
}

// Prior returns a copy of the result set read by Load
func (s *CheckpointStore) Prior() []PageResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneResults(s.prior)
}

// Update replaces the partition owned by siteID without writing to disk
func (s *CheckpointStore) Update(siteID int, domain string, results []PageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(siteID, domain, results)
}

func (s *CheckpointStore) updateLocked(siteID int, domain string, results []PageResult) {
	if _, ok := s.sites[siteID]; !ok {
		s.order = append(s.order, siteID)
	}
	s.sites[siteID] = sitePartition{domain: domain, results: cloneResults(results)}
}

// Snapshot returns the merged view that a save would write: prior results
// of domains no registered site owns, then every site's latest results in
// registration order, deduplicated by URL.
func (s *CheckpointStore) Snapshot() []PageResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CheckpointStore) snapshotLocked() []PageResult {
	others := s.prior
	for _, id := range s.order {
		others = ExcludeDomain(others, s.sites[id].domain)
	}

	collections := make([][]PageResult, 0, len(s.order)+1)
	collections = append(collections, others)
	for _, id := range s.order {
		collections = append(collections, s.sites[id].results)
	}
	return DedupeByURL(collections...)
}

// SaveSite replaces the partition owned by siteID and writes the snapshot.
// Writers are serialized, so concurrent sites never interleave a file.
func (s *CheckpointStore) SaveSite(siteID int, domain string, results []PageResult) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateLocked(siteID, domain, results)
	snapshot := s.snapshotLocked()
	if err := s.writeLocked(snapshot); err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

// Save writes results as the whole snapshot
func (s *CheckpointStore) Save(results []PageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(results)
}

// writeLocked writes to a temp file in the target directory, syncs it and
// renames it over the snapshot so readers never observe a partial file.
func (s *CheckpointStore) writeLocked(results []PageResult) error {
	if results == nil {
		results = []PageResult{}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		committed = true
		return fmt.Errorf("failed to rename checkpoint: %w", err)
	}
	committed = true

	return nil
}

func cloneResults(results []PageResult) []PageResult {
	out := make([]PageResult, len(results))
	copy(out, results)
	return out
}
