package cache

import (
	"sync"
	"time"

	"github.com/shelfd/shelf/internal/domain"
)

// entry holds the accumulated pages for one query identity.
type entry struct {
	identity  domain.QueryIdentity
	pages     []domain.Page
	stale     bool
	updatedAt time.Time
}

// Cache is the normalized client-side store of entity pages. It is the single
// shared mutable resource: the pager, the mutation coordinator and the
// schedulers all serialize through its exported contract. Cached pages are
// never handed out by reference; reads return deep copies and writes are
// copy-on-write per affected page.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	subs    map[string][]chan struct{}
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		subs:    make(map[string][]chan struct{}),
		now:     time.Now,
	}
}

// Get returns a deep copy of the pages cached for q. Stale entries are still
// returned (stale-while-revalidate); use Stale to inspect freshness.
func (c *Cache) Get(q domain.QueryIdentity) ([]domain.Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[q.Key()]
	if !ok {
		return nil, false
	}
	return domain.ClonePages(e.pages), true
}

// Flatten returns the deduplicated item sequence for q in fetch order.
func (c *Cache) Flatten(q domain.QueryIdentity) []domain.Entity {
	pages, ok := c.Get(q)
	if !ok {
		return nil
	}
	return domain.FlattenPages(pages)
}

// Stale reports whether the entry for q has been invalidated.
func (c *Cache) Stale(q domain.QueryIdentity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[q.Key()]
	return ok && e.stale
}

// Set stores a deep copy of pages under q, clears staleness and notifies
// subscribers.
func (c *Cache) Set(q domain.QueryIdentity, pages []domain.Page) {
	c.mu.Lock()
	c.entries[q.Key()] = &entry{
		identity:  q,
		pages:     domain.ClonePages(pages),
		updatedAt: c.now(),
	}
	c.mu.Unlock()

	c.notify(q.Key())
}

// Delete discards the entry for q entirely.
func (c *Cache) Delete(q domain.QueryIdentity) {
	c.mu.Lock()
	_, ok := c.entries[q.Key()]
	delete(c.entries, q.Key())
	c.mu.Unlock()

	if ok {
		c.notify(q.Key())
	}
}

// Invalidate marks the given identities stale. Stale entries keep serving
// reads until the revalidator refreshes them.
func (c *Cache) Invalidate(qs ...domain.QueryIdentity) {
	keys := make([]string, 0, len(qs))

	c.mu.Lock()
	for _, q := range qs {
		if e, ok := c.entries[q.Key()]; ok && !e.stale {
			e.stale = true
			keys = append(keys, q.Key())
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.notify(k)
	}
}

// InvalidateKind marks every cached view of the given kinds stale.
func (c *Cache) InvalidateKind(kinds ...domain.Kind) {
	var keys []string

	c.mu.Lock()
	for k, e := range c.entries {
		for _, kind := range kinds {
			if e.identity.Kind == kind && !e.stale {
				e.stale = true
				keys = append(keys, k)
				break
			}
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.notify(k)
	}
}

// Patch applies a pure update to every occurrence of the entity across all
// cached views. Returns the number of occurrences patched. The same bookmark
// may live in the global list, a per-collection list and a search-filtered
// list simultaneously; Patch keeps them consistent.
func (c *Cache) Patch(entityID string, update func(domain.Entity) domain.Entity) int {
	var touched []string
	patched := 0

	c.mu.Lock()
	for key, e := range c.entries {
		hit := false
		for pi := range e.pages {
			for ii, item := range e.pages[pi].Items {
				if item.EntityID() != entityID {
					continue
				}
				if !hit {
					// Copy-on-write: never mutate pages a snapshot may share.
					e.pages = domain.ClonePages(e.pages)
					hit = true
				}
				e.pages[pi].Items[ii] = update(e.pages[pi].Items[ii].Clone())
				patched++
			}
		}
		if hit {
			e.updatedAt = c.now()
			touched = append(touched, key)
		}
	}
	c.mu.Unlock()

	for _, k := range touched {
		c.notify(k)
	}
	return patched
}

// ReplaceEntity swaps every occurrence of oldID for the given entity. Used to
// resolve a provisional id into the server-assigned one.
func (c *Cache) ReplaceEntity(oldID string, e domain.Entity) int {
	return c.Patch(oldID, func(domain.Entity) domain.Entity {
		return e.Clone()
	})
}

// RemoveEntity deletes every occurrence of the entity from all cached views.
func (c *Cache) RemoveEntity(entityID string) int {
	var touched []string
	removed := 0

	c.mu.Lock()
	for key, e := range c.entries {
		if !containsID(e.pages, entityID) {
			continue
		}
		e.pages = domain.ClonePages(e.pages)
		for pi := range e.pages {
			kept := make([]domain.Entity, 0, len(e.pages[pi].Items))
			for _, item := range e.pages[pi].Items {
				if item.EntityID() == entityID {
					removed++
					continue
				}
				kept = append(kept, item)
			}
			e.pages[pi].Items = kept
		}
		e.updatedAt = c.now()
		touched = append(touched, key)
	}
	c.mu.Unlock()

	for _, k := range touched {
		c.notify(k)
	}
	return removed
}

// PrependEntity inserts e at the head of the first page of every cached view
// the predicate selects, skipping views that already hold it.
func (c *Cache) PrependEntity(pred func(domain.QueryIdentity) bool, e domain.Entity) int {
	var touched []string
	inserted := 0

	c.mu.Lock()
	for key, en := range c.entries {
		if !pred(en.identity) || len(en.pages) == 0 {
			continue
		}
		if containsID(en.pages, e.EntityID()) {
			continue
		}
		en.pages = domain.ClonePages(en.pages)
		first := &en.pages[0]
		first.Items = append([]domain.Entity{e.Clone()}, first.Items...)
		en.updatedAt = c.now()
		touched = append(touched, key)
		inserted++
	}
	c.mu.Unlock()

	for _, k := range touched {
		c.notify(k)
	}
	return inserted
}

// Lookup finds any cached occurrence of the entity.
func (c *Cache) Lookup(entityID string) (domain.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.entries {
		for _, p := range e.pages {
			for _, item := range p.Items {
				if item.EntityID() == entityID {
					return item.Clone(), true
				}
			}
		}
	}
	return nil, false
}

// Contains reports whether the entity occurs in any cached view.
func (c *Cache) Contains(entityID string) bool {
	_, ok := c.Lookup(entityID)
	return ok
}

// Identities returns the identities of all cached views.
func (c *Cache) Identities() []domain.QueryIdentity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.QueryIdentity, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.identity)
	}
	return out
}

// StaleIdentities returns the identities whose entries need revalidation.
func (c *Cache) StaleIdentities() []domain.QueryIdentity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.QueryIdentity
	for _, e := range c.entries {
		if e.stale {
			out = append(out, e.identity)
		}
	}
	return out
}

// EvictOlderThan drops entries not written for at least age. Staleness-based
// eviction; the revalidator refreshes entries that are still subscribed.
func (c *Cache) EvictOlderThan(age time.Duration) int {
	cutoff := c.now().Add(-age)
	var keys []string

	c.mu.Lock()
	for k, e := range c.entries {
		if e.updatedAt.Before(cutoff) {
			delete(c.entries, k)
			keys = append(keys, k)
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.notify(k)
	}
	return len(keys)
}

func containsID(pages []domain.Page, id string) bool {
	for _, p := range pages {
		for _, item := range p.Items {
			if item.EntityID() == id {
				return true
			}
		}
	}
	return false
}
