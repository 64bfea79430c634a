package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loog-project/docdiff/internal/store"
	"github.com/loog-project/docdiff/pkg/diffmap"
)

// cacheLimits controls how long documents stay in a stateCache.
type cacheLimits struct {
	sweepEvery time.Duration // janitor wake-up
	ttl        time.Duration // cold entry expires after this
	hitBonus   time.Duration // each read since the last sweep adds this much TTL
	maxEntries int           // hard memory cap
}

var defaultCacheLimits = cacheLimits{
	sweepEvery: 10 * time.Second,
	ttl:        40 * time.Second,
	hitBonus:   4 * time.Second,
	maxEntries: 100_000,
}

// cachedState is the latest known document of an object.
// doc must not be modified once cached.
type cachedState struct {
	doc      diffmap.Document
	rev      store.RevisionID
	lastRead atomic.Int64 // unix-nsec
	hits     atomic.Uint32
}

func (s *cachedState) touch(now time.Time) {
	s.hits.Add(1)
	s.lastRead.Store(now.UnixNano())
}

// stateCache keeps the latest document of recently committed objects so a
// commit does not have to replay the revision chain.
type stateCache struct {
	limits cacheLimits

	mu      sync.RWMutex
	entries map[string]*cachedState

	hits, misses atomic.Uint64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// newStateCache returns a cache with a janitor that evicts cold entries.
func newStateCache(limits cacheLimits) *stateCache {
	c := &stateCache{
		limits:  limits,
		entries: make(map[string]*cachedState, 1024),
		stopCh:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

// lookup returns the cached document of objID if it is at revision rev.
func (c *stateCache) lookup(objID string, rev store.RevisionID) (diffmap.Document, bool) {
	c.mu.RLock()
	entry := c.entries[objID]
	c.mu.RUnlock()

	if entry == nil || entry.rev != rev {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	entry.touch(time.Now())
	return entry.doc, true
}

// put records doc as the state of objID at rev. New objects are dropped
// once the cache is full; known objects are always updated.
func (c *stateCache) put(objID string, rev store.RevisionID, doc diffmap.Document) {
	entry := &cachedState{doc: doc, rev: rev}
	entry.lastRead.Store(time.Now().UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		return // closed
	}
	if _, known := c.entries[objID]; known || len(c.entries) < c.limits.maxEntries {
		c.entries[objID] = entry
	}
}

func (c *stateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictCold drops every entry that was not read within its TTL as of now and
// halves the hit counters of the survivors. It returns the number of
// evicted entries.
func (c *stateCache) evictCold(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for objID, entry := range c.entries {
		hits := entry.hits.Load()
		ttl := c.limits.ttl + time.Duration(hits)*c.limits.hitBonus
		if now.Sub(time.Unix(0, entry.lastRead.Load())) > ttl {
			delete(c.entries, objID)
			evicted++
			continue
		}
		// old popularity fades
		entry.hits.Store(hits / 2)
	}
	return evicted
}

func (c *stateCache) janitor() {
	ticker := time.NewTicker(c.limits.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := c.evictCold(now); n > 0 {
				log.Debug().Int("evicted", n).Int("remaining", c.size()).Msg("state cache sweep")
			}
		case <-c.stopCh:
			return
		}
	}
}

// close stops the janitor and drops all entries. It is safe to call twice.
func (c *stateCache) close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		c.entries = nil
		c.mu.Unlock()
		log.Debug().
			Uint64("hits", c.hits.Load()).
			Uint64("misses", c.misses.Load()).
			Msg("state cache closed")
	})
}
