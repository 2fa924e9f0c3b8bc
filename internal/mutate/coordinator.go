package mutate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

// DefaultSettleDelay is how long a confirmed mutation waits before the
// affected views are marked stale for background revalidation. The delay
// keeps the already-reconciled view on screen instead of refetching the
// instant the server confirms.
const DefaultSettleDelay = 2 * time.Second

// Backend is the slice of the HTTP API a mutation needs.
type Backend interface {
	CreateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, id string) error
	CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)
	AddBookmarkTag(ctx context.Context, id, tag string) error
	RemoveBookmarkTag(ctx context.Context, id, tag string) error
}

// Error reports a failed mutation whose optimistic write has already been
// rolled back. The cached state is byte-for-byte what it was before the
// attempt; retrying is the caller's decision.
type Error struct {
	Op       string
	EntityID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mutation %s on %s failed (rolled back): %v", e.Op, e.EntityID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Coordinator applies mutations optimistically: the cache is patched first,
// the API call follows, and a failure restores the exact pre-mutation state.
// Mutations are serialized: a snapshot taken for rollback must not capture a
// window during which another mutation settles, or restoring it would erase
// that mutation's confirmed entity.
type Coordinator struct {
	ops     sync.Mutex // held from snapshot through settle or restore
	mu      sync.Mutex // guards timers and stopped
	cache   *cache.Cache
	backend Backend
	logger  logger.Logger

	settleDelay time.Duration
	timers      map[*time.Timer]struct{}
	stopped     bool
}

func New(c *cache.Cache, b Backend, settleDelay time.Duration, log logger.Logger) *Coordinator {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Coordinator{
		cache:       c,
		backend:     b,
		logger:      log,
		settleDelay: settleDelay,
		timers:      make(map[*time.Timer]struct{}),
	}
}

// Stop cancels every pending delayed invalidation. In-flight API calls are
// not interrupted; cancel their context for that.
func (m *Coordinator) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	for t := range m.timers {
		t.Stop()
	}
	m.timers = make(map[*time.Timer]struct{})
}

// CreateBookmark inserts b into every accepting view under a provisional id,
// persists it, then swaps the server-assigned record in everywhere the
// provisional one appeared.
func (m *Coordinator) CreateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	m.ops.Lock()
	defer m.ops.Unlock()

	snap := m.cache.Snapshot(kindPred(domain.KindBookmark))

	provisional := domain.WithID(b, domain.NewProvisionalID()).(domain.Bookmark)
	m.cache.PrependEntity(func(q domain.QueryIdentity) bool {
		return q.Accepts(provisional)
	}, provisional)

	created, err := m.backend.CreateBookmark(ctx, b)
	if err != nil {
		m.cache.Restore(snap)
		m.logger.Warn("create bookmark rolled back", logger.String("url", b.URL), logger.Error(err))
		return domain.Bookmark{}, &Error{Op: "create_bookmark", EntityID: provisional.ID, Err: err}
	}

	m.cache.ReplaceEntity(provisional.ID, created)
	m.scheduleInvalidate(domain.KindBookmark)
	return created, nil
}

// UpdateBookmark patches every cached occurrence of b, persists it, then
// reconciles with the server's copy.
func (m *Coordinator) UpdateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	if domain.IsProvisionalID(b.ID) {
		return domain.Bookmark{}, &Error{Op: "update_bookmark", EntityID: b.ID, Err: errProvisionalTarget}
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	snap := m.cache.Snapshot(kindPred(domain.KindBookmark))
	m.cache.Patch(b.ID, func(domain.Entity) domain.Entity { return b.Clone() })

	updated, err := m.backend.UpdateBookmark(ctx, b)
	if err != nil {
		m.cache.Restore(snap)
		m.logger.Warn("update bookmark rolled back", logger.String("id", b.ID), logger.Error(err))
		return domain.Bookmark{}, &Error{Op: "update_bookmark", EntityID: b.ID, Err: err}
	}

	m.cache.ReplaceEntity(b.ID, updated)
	m.scheduleInvalidate(domain.KindBookmark)
	return updated, nil
}

// DeleteBookmark removes id from every view, persists the deletion, and
// restores the views verbatim if the server refuses.
func (m *Coordinator) DeleteBookmark(ctx context.Context, id string) error {
	if domain.IsProvisionalID(id) {
		return &Error{Op: "delete_bookmark", EntityID: id, Err: errProvisionalTarget}
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	snap := m.cache.Snapshot(kindPred(domain.KindBookmark))
	m.cache.RemoveEntity(id)

	if err := m.backend.DeleteBookmark(ctx, id); err != nil {
		m.cache.Restore(snap)
		m.logger.Warn("delete bookmark rolled back", logger.String("id", id), logger.Error(err))
		return &Error{Op: "delete_bookmark", EntityID: id, Err: err}
	}

	m.scheduleInvalidate(domain.KindBookmark)
	return nil
}

// RecordActivity appends a to the activity feed optimistically and persists
// it, following the same provisional-id flow as bookmark creation.
func (m *Coordinator) RecordActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	if !domain.ValidActivityType(a.Type) {
		return domain.Activity{}, &Error{Op: "record_activity", EntityID: a.ID, Err: fmt.Errorf("unknown activity type %q", a.Type)}
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	snap := m.cache.Snapshot(kindPred(domain.KindActivity))

	provisional := domain.WithID(a, domain.NewProvisionalID()).(domain.Activity)
	m.cache.PrependEntity(func(q domain.QueryIdentity) bool {
		return q.Accepts(provisional)
	}, provisional)

	created, err := m.backend.CreateActivity(ctx, a)
	if err != nil {
		m.cache.Restore(snap)
		m.logger.Warn("record activity rolled back", logger.String("type", string(a.Type)), logger.Error(err))
		return domain.Activity{}, &Error{Op: "record_activity", EntityID: provisional.ID, Err: err}
	}

	m.cache.ReplaceEntity(provisional.ID, created)
	m.scheduleInvalidate(domain.KindActivity)
	return created, nil
}

var errProvisionalTarget = fmt.Errorf("entity has not been persisted yet")

func kindPred(k domain.Kind) func(domain.QueryIdentity) bool {
	return func(q domain.QueryIdentity) bool { return q.Kind == k }
}

func (m *Coordinator) scheduleInvalidate(kinds ...domain.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(m.settleDelay, func() {
		m.cache.InvalidateKind(kinds...)
		m.mu.Lock()
		delete(m.timers, t)
		m.mu.Unlock()
	})
	m.timers[t] = struct{}{}
}
