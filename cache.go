package ioc

import (
	"sync"
)

// cacheEntry is one cached service. An entry moves from under construction
// to present when done is closed; instance and err are immutable afterwards.
type cacheEntry struct {
	done     chan struct{}
	ready    bool
	instance any
	err      error
}

// wait blocks until the entry is complete and returns its result.
func (e *cacheEntry) wait() (any, error) {
	<-e.done
	return e.instance, e.err
}

// instanceCache provides thread-safe caching for service instances.
//
// An absent identifier has no entry. The first request installs an entry
// under construction and becomes its owner; later requests wait on it. A
// failed construction removes the entry.
type instanceCache struct {
	mu      sync.Mutex
	entries map[*identity]*cacheEntry
}

// newInstanceCache creates a new instance cache
func newInstanceCache() *instanceCache {
	return &instanceCache{
		entries: make(map[*identity]*cacheEntry),
	}
}

// acquire returns the entry for key. When owner is true the caller installed
// the entry and must finish it with complete.
func (c *instanceCache) acquire(key *identity) (entry *cacheEntry, owner bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return entry, false
	}

	entry = &cacheEntry{done: make(chan struct{})}
	c.entries[key] = entry
	return entry, true
}

// complete publishes the result of an owned entry and wakes its waiters.
// The entry stays cached only if construction succeeded and the cache was
// not cleared in the meantime.
func (c *instanceCache) complete(key *identity, entry *cacheEntry, instance any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.instance = instance
	entry.err = err

	current, cached := c.entries[key]
	switch {
	case !cached || current != entry:
	case err != nil:
		delete(c.entries, key)
	default:
		entry.ready = true
	}

	close(entry.done)
}

// get returns a present instance.
func (c *instanceCache) get(key *identity) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || !entry.ready {
		return nil, false
	}
	return entry.instance, true
}

// snapshot returns a new cache holding the present entries. Entries still
// under construction are not copied.
func (c *instanceCache) snapshot() *instanceCache {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := newInstanceCache()
	for key, entry := range c.entries {
		if entry.ready {
			copied.entries[key] = entry
		}
	}
	return copied
}

// clear removes all entries. Constructions in flight finish for their
// callers but are not stored.
func (c *instanceCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[*identity]*cacheEntry)
}

// len returns the number of present entries.
func (c *instanceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, entry := range c.entries {
		if entry.ready {
			n++
		}
	}
	return n
}
