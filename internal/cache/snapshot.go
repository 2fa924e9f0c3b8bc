package cache

import (
	"time"

	"github.com/shelfd/shelf/internal/domain"
)

// Snapshot is a deep copy of the entries selected by a predicate, taken as a
// rollback point before an optimistic mutation.
type Snapshot struct {
	pred    func(domain.QueryIdentity) bool
	entries map[string]snapEntry
}

type snapEntry struct {
	identity  domain.QueryIdentity
	pages     []domain.Page
	stale     bool
	updatedAt time.Time
}

// Snapshot deep-copies every entry whose identity matches pred.
func (c *Cache) Snapshot(pred func(domain.QueryIdentity) bool) Snapshot {
	s := Snapshot{
		pred:    pred,
		entries: make(map[string]snapEntry),
	}

	c.mu.RLock()
	for k, e := range c.entries {
		if !pred(e.identity) {
			continue
		}
		s.entries[k] = snapEntry{
			identity:  e.identity,
			pages:     domain.ClonePages(e.pages),
			stale:     e.stale,
			updatedAt: e.updatedAt,
		}
	}
	c.mu.RUnlock()

	return s
}

// Restore puts the snapshotted entries back exactly as captured. Entries
// matching the snapshot's predicate that appeared after the snapshot are
// dropped, so a failed optimistic create leaves no trace.
func (c *Cache) Restore(s Snapshot) {
	var touched []string

	c.mu.Lock()
	for k, e := range c.entries {
		if s.pred(e.identity) {
			if _, kept := s.entries[k]; !kept {
				delete(c.entries, k)
				touched = append(touched, k)
			}
		}
	}
	for k, se := range s.entries {
		c.entries[k] = &entry{
			identity:  se.identity,
			pages:     domain.ClonePages(se.pages),
			stale:     se.stale,
			updatedAt: se.updatedAt,
		}
		touched = append(touched, k)
	}
	c.mu.Unlock()

	for _, k := range touched {
		c.notify(k)
	}
}
