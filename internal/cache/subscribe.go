package cache

import "github.com/shelfd/shelf/internal/domain"

// Subscribe returns a channel that receives a signal whenever the view for q
// changes (write, invalidation, eviction). The channel has a buffer of one
// and signals coalesce, so a slow consumer sees at least one notification
// per burst. The returned cancel func must be called to release the
// subscription.
func (c *Cache) Subscribe(q domain.QueryIdentity) (<-chan struct{}, func()) {
	key := q.Key()
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	c.subs[key] = append(c.subs[key], ch)
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		subs := c.subs[key]
		for i, s := range subs {
			if s == ch {
				c.subs[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(c.subs[key]) == 0 {
			delete(c.subs, key)
		}
	}
	return ch, cancel
}

// notify signals all subscribers of a key without blocking.
func (c *Cache) notify(key string) {
	c.mu.RLock()
	subs := c.subs[key]
	c.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
