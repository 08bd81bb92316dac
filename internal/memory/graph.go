package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/sirupsen/logrus"
)

// LinkGraph holds the same-site links discovered during one site crawl.
// Edges are keyed by (from, to) so a page linking twice counts once.
type LinkGraph struct {
	edges    map[string]map[string]int // from -> to -> weight
	incoming map[string]int            // to -> distinct referrers
	mu       sync.RWMutex
}

// NewLinkGraph creates an empty graph
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		edges:    make(map[string]map[string]int),
		incoming: make(map[string]int),
	}
}

// AddEdge records a link from one page to another
func (g *LinkGraph) AddEdge(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	targets, ok := g.edges[from]
	if !ok {
		targets = make(map[string]int)
		g.edges[from] = targets
	}
	if targets[to] == 0 {
		g.incoming[to]++
	}
	targets[to]++
}

// ReplaceOutgoing drops every edge leaving from and records links instead.
// Used when a page is fetched again in the same run.
func (g *LinkGraph) ReplaceOutgoing(from string, links []string) {
	g.mu.Lock()
	for to := range g.edges[from] {
		g.incoming[to]--
		if g.incoming[to] <= 0 {
			delete(g.incoming, to)
		}
	}
	delete(g.edges, from)
	g.mu.Unlock()

	for _, to := range links {
		g.AddEdge(from, to)
	}
}

// Incoming returns how many distinct pages link to url
func (g *LinkGraph) Incoming(url string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.incoming[url]
}

// GetStats returns current graph statistics
func (g *LinkGraph) GetStats() (nodeCount, edgeCount int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make(map[string]struct{})
	for from, targets := range g.edges {
		nodes[from] = struct{}{}
		for to := range targets {
			nodes[to] = struct{}{}
			edgeCount++
		}
	}
	return len(nodes), edgeCount
}

// ApplyIncoming writes the incoming tally into every result in place.
// Pages nobody linked to during this run get 0.
func (g *LinkGraph) ApplyIncoming(results []storage.PageResult) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for i := range results {
		results[i].Links.Incoming = g.incoming[results[i].URL]
	}
}

// Flush writes every edge to the SQLite index
func (g *LinkGraph) Flush(store *storage.Storage) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	startTime := time.Now()

	sources := make([]string, 0, len(g.edges))
	for from := range g.edges {
		sources = append(sources, from)
	}
	sort.Strings(sources)

	edgesWritten := 0
	var firstErr error
	for _, from := range sources {
		for to, weight := range g.edges[from] {
			if err := store.UpsertLink(from, to, weight); err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to flush link %s -> %s: %w", from, to, err)
				}
				logrus.Warnf("Failed to flush link %s -> %s: %v", from, to, err)
				continue
			}
			edgesWritten++
		}
	}

	logrus.Debugf("Link flush complete: %d edges written in %v", edgesWritten, time.Since(startTime))
	return firstErr
}
