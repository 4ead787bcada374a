package application

import (
	"sync"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// issueCache stores recently computed detection results so repeated identical
// queries do not rerun the detector while the snapshot is unchanged. Writes
// to appointments, rooms, courses or rule settings invalidate it wholesale.
type issueCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]issueCacheEntry
}

type issueCacheEntry struct {
	issues    []timetable.Issue
	expiresAt time.Time
}

func newIssueCache(ttl time.Duration, maxEntries int, now func() time.Time) *issueCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &issueCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]issueCacheEntry),
	}
}

func (c *issueCache) Get(key string) ([]timetable.Issue, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneIssues(entry.issues), true
}

func (c *issueCache) Store(key string, issues []timetable.Issue) {
	if c == nil {
		return
	}
	cloned := cloneIssues(issues)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = issueCacheEntry{issues: cloned, expiresAt: expiry}
}

// Invalidate drops every cached result.
func (c *issueCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]issueCacheEntry)
	c.mu.Unlock()
}

// evictOneLocked removes the entry closest to expiry. Caller holds the lock.
func (c *issueCache) evictOneLocked() {
	var victim string
	var earliest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.expiresAt.Before(earliest) {
			victim = key
			earliest = entry.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}

func cloneIssues(issues []timetable.Issue) []timetable.Issue {
	if issues == nil {
		return nil
	}
	out := make([]timetable.Issue, len(issues))
	copy(out, issues)
	return out
}
