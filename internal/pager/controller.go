package pager

import (
	"context"
	"fmt"
	"sync"

	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

// Phase is the pagination state of one query identity.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseLoadingMore
	PhaseExhausted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseExhausted:
		return "exhausted"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Fetcher retrieves one page of a view from the API.
type Fetcher interface {
	FetchPage(ctx context.Context, q domain.QueryIdentity, req domain.PageRequest) (domain.Page, error)
}

// state tracks pagination progress for one query identity.
type state struct {
	identity    domain.QueryIdentity
	phase       Phase
	inflight    bool
	nextOffset  int // raw server offset for the next fetch
	fetched     int // unique items accumulated
	lastPageLen int // raw length of the most recent page
	total       int
	lastErr     error
}

// Controller drives incremental loading per query identity and keeps the
// flattened sequence in the cache free of duplicate ids. At most one page
// fetch is in flight per identity; concurrent LoadMore calls are no-ops.
type Controller struct {
	mu       sync.Mutex
	states   map[string]*state
	cache    *cache.Cache
	fetcher  Fetcher
	pageSize int
	logger   logger.Logger
}

// New creates a pagination controller over the given cache and fetcher.
func New(c *cache.Cache, f Fetcher, pageSize int, log logger.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Controller{
		states:   make(map[string]*state),
		cache:    c,
		fetcher:  f,
		pageSize: pageSize,
		logger:   log,
	}
}

// Load fetches the first page for q. A view that already holds data is left
// alone; use Refresh to revalidate. Returns the fetch error, if any.
func (c *Controller) Load(ctx context.Context, q domain.QueryIdentity) error {
	c.mu.Lock()
	st := c.ensure(q)
	if st.inflight {
		c.mu.Unlock()
		return nil
	}
	if st.phase == PhaseReady || st.phase == PhaseExhausted {
		c.mu.Unlock()
		return nil
	}
	st.inflight = true
	st.phase = PhaseLoading
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, q, domain.PageRequest{Limit: c.pageSize, Offset: 0})

	c.mu.Lock()
	defer c.mu.Unlock()
	st.inflight = false

	if err != nil {
		st.phase = PhaseFailed
		st.lastErr = err
		return fmt.Errorf("load %s: %w", q.Key(), err)
	}

	raw := len(page.Items)
	page.Items = dedupeWithin(page.Items)
	c.cache.Set(q, []domain.Page{page})

	st.lastErr = nil
	st.nextOffset = raw // raw server offset, pre-dedupe
	st.fetched = len(page.Items)
	st.lastPageLen = raw
	st.total = page.Total
	st.phase = c.settlePhase(st)
	return nil
}

// LoadMore appends the next page for q. It is a no-op when a fetch is
// already in flight, when the view is exhausted, or when Load has not
// succeeded yet.
func (c *Controller) LoadMore(ctx context.Context, q domain.QueryIdentity) error {
	c.mu.Lock()
	st := c.ensure(q)
	if st.inflight || st.phase != PhaseReady {
		c.mu.Unlock()
		return nil
	}
	st.inflight = true
	st.phase = PhaseLoadingMore
	offset := st.nextOffset
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, q, domain.PageRequest{Limit: c.pageSize, Offset: offset})

	c.mu.Lock()
	defer c.mu.Unlock()
	st.inflight = false

	if err != nil {
		st.phase = PhaseFailed
		st.lastErr = err
		return fmt.Errorf("load more %s: %w", q.Key(), err)
	}

	raw := len(page.Items)
	existing, _ := c.cache.Get(q)
	appended := c.appendDeduped(existing, page)
	c.cache.Set(q, appended)

	st.lastErr = nil
	st.nextOffset = offset + raw
	st.fetched = countItems(appended)
	st.lastPageLen = raw
	st.total = page.Total
	st.phase = c.settlePhase(st)
	return nil
}

// HasMore reports whether another page is worth requesting: the most recent
// page was full (heuristic continuation signal) or the server-reported total
// says more remain. False once exhausted.
func (c *Controller) HasMore(q domain.QueryIdentity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[q.Key()]
	if !ok || st.phase != PhaseReady {
		return false
	}
	if st.total != domain.TotalUnknown && st.fetched >= st.total {
		return false
	}
	return st.lastPageLen == c.pageSize || (st.total != domain.TotalUnknown && st.fetched < st.total)
}

// Phase returns the pagination phase for q.
func (c *Controller) Phase(q domain.QueryIdentity) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[q.Key()]; ok {
		return st.phase
	}
	return PhaseIdle
}

// Err returns the last fetch error for q, nil unless the phase is failed.
func (c *Controller) Err(q domain.QueryIdentity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[q.Key()]; ok {
		return st.lastErr
	}
	return nil
}

// Reset discards accumulated pages and pagination state for q. A view whose
// filters changed is a different identity; callers Reset the old identity
// and Load the new one, so the new view starts from an empty list.
func (c *Controller) Reset(q domain.QueryIdentity) {
	c.mu.Lock()
	delete(c.states, q.Key())
	c.mu.Unlock()

	c.cache.Delete(q)
}

// Refresh refetches every loaded page for q and replaces the cached view in
// one step, completing a stale-while-revalidate cycle. The stale data keeps
// serving reads until the refetch lands.
func (c *Controller) Refresh(ctx context.Context, q domain.QueryIdentity) error {
	c.mu.Lock()
	st := c.ensure(q)
	if st.inflight {
		c.mu.Unlock()
		return nil
	}
	if st.phase != PhaseReady && st.phase != PhaseExhausted {
		c.mu.Unlock()
		return c.Load(ctx, q)
	}
	st.inflight = true
	target := st.fetched
	c.mu.Unlock()

	var pages []domain.Page
	offset := 0
	for {
		page, err := c.fetcher.FetchPage(ctx, q, domain.PageRequest{Limit: c.pageSize, Offset: offset})
		if err != nil {
			c.mu.Lock()
			st.inflight = false
			st.lastErr = err
			c.mu.Unlock()
			return fmt.Errorf("refresh %s: %w", q.Key(), err)
		}
		raw := len(page.Items)
		pages = c.appendDeduped(pages, page)
		offset += raw

		if raw < c.pageSize || countItems(pages) >= target {
			c.mu.Lock()
			st.inflight = false
			st.lastErr = nil
			st.nextOffset = offset
			st.fetched = countItems(pages)
			st.lastPageLen = raw
			st.total = page.Total
			st.phase = c.settlePhase(st)
			c.mu.Unlock()
			break
		}
	}

	c.cache.Set(q, pages)
	c.logger.Debug("view revalidated",
		logger.String("identity", q.Key()),
		logger.Int("items", countItems(pages)))
	return nil
}

// ensure returns the state for q, creating it in idle. Caller holds mu.
func (c *Controller) ensure(q domain.QueryIdentity) *state {
	key := q.Key()
	st, ok := c.states[key]
	if !ok {
		st = &state{identity: q, phase: PhaseIdle, total: domain.TotalUnknown}
		c.states[key] = st
	}
	return st
}

// settlePhase derives the post-fetch phase. A short page is the terminal
// exhaustion signal; a known total that has been reached is too.
func (c *Controller) settlePhase(st *state) Phase {
	if st.lastPageLen < c.pageSize {
		return PhaseExhausted
	}
	if st.total != domain.TotalUnknown && st.fetched >= st.total {
		return PhaseExhausted
	}
	return PhaseReady
}

// appendDeduped appends a page, dropping items already present in earlier
// pages. The earlier occurrence is refreshed with the later fields
// (last-write-wins) so display order stays stable.
func (c *Controller) appendDeduped(existing []domain.Page, page domain.Page) []domain.Page {
	seen := make(map[string]bool)
	for _, p := range existing {
		for _, item := range p.Items {
			seen[item.EntityID()] = true
		}
	}

	kept := make([]domain.Entity, 0, len(page.Items))
	for _, item := range page.Items {
		if seen[item.EntityID()] {
			// The earlier occurrence may sit in a prior page or earlier in
			// this same page; refresh it wherever it is.
			c.cache.ReplaceEntity(item.EntityID(), item)
			existing = replaceInPages(existing, item)
			replaceInItems(kept, item)
			continue
		}
		seen[item.EntityID()] = true
		kept = append(kept, item)
	}
	page.Items = kept
	return append(existing, page)
}

func replaceInPages(pages []domain.Page, item domain.Entity) []domain.Page {
	for pi := range pages {
		replaceInItems(pages[pi].Items, item)
	}
	return pages
}

func replaceInItems(items []domain.Entity, item domain.Entity) {
	for i, prev := range items {
		if prev.EntityID() == item.EntityID() {
			items[i] = item.Clone()
		}
	}
}

func dedupeWithin(items []domain.Entity) []domain.Entity {
	seen := make(map[string]int, len(items))
	out := make([]domain.Entity, 0, len(items))
	for _, item := range items {
		if at, dup := seen[item.EntityID()]; dup {
			out[at] = item // last write wins, position stays
			continue
		}
		seen[item.EntityID()] = len(out)
		out = append(out, item)
	}
	return out
}

func countItems(pages []domain.Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Items)
	}
	return n
}
