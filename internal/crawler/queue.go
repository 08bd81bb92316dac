package crawler

import (
	"sync"

	"github.com/alvmarrod/web-sieve/internal/storage"
)

// urlState tracks a URL through one run: unseen -> queued -> in-flight -> resolved.
// A URL never moves back from resolved.
type urlState int

const (
	stateUnseen urlState = iota
	stateQueued
	stateInFlight
	stateResolved
)

// Queue implements a thread-safe FIFO frontier with per-URL deduplication
type Queue struct {
	mu    sync.Mutex
	items []storage.FrontierEntry
	state map[string]urlState
}

// NewQueue creates a new BFS queue
func NewQueue() *Queue {
	return &Queue{
		items: make([]storage.FrontierEntry, 0),
		state: make(map[string]urlState),
	}
}

// Push adds an entry if its URL has never been seen this run.
// Returns true if added, false if duplicate.
func (q *Queue) Push(entry storage.FrontierEntry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state[entry.URL] != stateUnseen {
		return false
	}

	q.state[entry.URL] = stateQueued
	q.items = append(q.items, entry)
	return true
}

// PopBatch removes up to n entries from the head of the queue and marks them
// in flight. Entries whose URL already left the queued state are dropped
// without counting toward n.
func (q *Queue) PopBatch(n int) []storage.FrontierEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := make([]storage.FrontierEntry, 0, min(n, len(q.items)))
	for len(q.items) > 0 && len(batch) < n {
		entry := q.items[0]
		q.items = q.items[1:]

		if q.state[entry.URL] != stateQueued {
			continue
		}
		q.state[entry.URL] = stateInFlight
		batch = append(batch, entry)
	}
	return batch
}

// Resolve marks a URL as finished, whether or not it produced a result
func (q *Queue) Resolve(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state[url] = stateResolved
}

// Visited reports whether url has been dequeued this run
func (q *Queue) Visited(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.state[url]
	return s == stateInFlight || s == stateResolved
}

// Seen reports whether url was ever queued this run
func (q *Queue) Seen(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state[url] != stateUnseen
}

// IsEmpty returns true if the queue has no items
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Size returns the current number of items in the queue
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// GetAllEntries returns a snapshot of all pending queue entries
func (q *Queue) GetAllEntries() []storage.FrontierEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]storage.FrontierEntry, len(q.items))
	copy(entries, q.items)
	return entries
}
