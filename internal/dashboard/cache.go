package dashboard

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	snapshot    *Snapshot
	lastUpdated time.Time
}

// snapshotCache keeps one snapshot per (viewer, filter) key with a TTL
// and an explicit listener list, so cross-component invalidation is a
// registered callback instead of ambient global state. Concurrent loads
// of the same key are collapsed into a single in-flight fetch.
type snapshotCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]cacheEntry
	listeners []func(key string)
	group     singleflight.Group
	gen       uint64
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached snapshot unless it is older than the TTL.
func (c *snapshotCache) get(key string) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Since(entry.lastUpdated) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	return entry.snapshot, true
}

// load runs fn for the key, de-duplicating concurrent callers, and caches
// the result. A fetch that was in flight when an invalidation ran is
// returned to its callers but not written back: its snapshot predates the
// invalidation.
func (c *snapshotCache) load(key string, fn func() (*Snapshot, error)) (*Snapshot, error) {
	value, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		snapshot, err := fn()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = cacheEntry{snapshot: snapshot, lastUpdated: time.Now()}
		}
		c.mu.Unlock()

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*Snapshot), nil
}

// invalidateAll drops every entry and notifies the listeners per dropped
// key. A mutation anywhere may change what any viewer is allowed to see,
// so invalidation is global.
func (c *snapshotCache) invalidateAll() {
	c.mu.Lock()
	c.gen++
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.entries = make(map[string]cacheEntry)
	listeners := make([]func(string), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		for _, key := range keys {
			fn(key)
		}
	}
}

// subscribe registers a callback invoked with each invalidated key.
func (c *snapshotCache) subscribe(fn func(key string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}
