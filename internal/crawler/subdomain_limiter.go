package crawler

import (
	"strings"
	"sync"
)

// SubdomainLimiter caps how many distinct hosts one site crawl may expand
// into. A limit of 0 disables the check.
type SubdomainLimiter struct {
	maxHosts int
	mu       sync.RWMutex
	hosts    map[string]bool
}

// NewSubdomainLimiter creates a new subdomain limiter
func NewSubdomainLimiter(maxHosts int) *SubdomainLimiter {
	return &SubdomainLimiter{
		maxHosts: maxHosts,
		hosts:    make(map[string]bool),
	}
}

// CanAdd checks if a host can be added without exceeding the limit.
// Does NOT modify state - use Add() to register the host.
func (sl *SubdomainLimiter) CanAdd(host string) bool {
	if sl.maxHosts <= 0 {
		return true
	}
	host = strings.ToLower(host)

	sl.mu.RLock()
	defer sl.mu.RUnlock()

	if sl.hosts[host] {
		return true
	}
	return len(sl.hosts) < sl.maxHosts
}

// Add registers a host with the limiter.
// Returns true if added successfully, false if limit exceeded.
func (sl *SubdomainLimiter) Add(host string) bool {
	host = strings.ToLower(host)

	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.hosts[host] {
		return true
	}
	if sl.maxHosts > 0 && len(sl.hosts) >= sl.maxHosts {
		return false
	}

	sl.hosts[host] = true
	return true
}

// Count returns the number of hosts registered
func (sl *SubdomainLimiter) Count() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return len(sl.hosts)
}
