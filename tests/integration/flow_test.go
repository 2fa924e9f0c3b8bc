package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfd/shelf/internal/api"
	"github.com/shelfd/shelf/internal/bridge"
	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/mutate"
	"github.com/shelfd/shelf/internal/pager"
)

// fakeAPI is an in-memory bookmarking backend behind httptest.
type fakeAPI struct {
	mu        sync.Mutex
	bookmarks []map[string]interface{}
	nextID    int
	failNext  bool
}

func (f *fakeAPI) failOnce() {
	f.mu.Lock()
	f.failNext = true
	f.mu.Unlock()
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			lo, hi := offset, offset+limit
			if lo > len(f.bookmarks) {
				lo = len(f.bookmarks)
			}
			if hi > len(f.bookmarks) {
				hi = len(f.bookmarks)
			}
			w.Header().Set("X-Total-Count", strconv.Itoa(len(f.bookmarks)))
			w.Header().Set("Content-Type", "application/json")
			_ = jsoniter.NewEncoder(w).Encode(f.bookmarks[lo:hi])

		case http.MethodPost:
			if f.failNext {
				f.failNext = false
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"code":"unavailable","message":"maintenance"}`))
				return
			}
			var b map[string]interface{}
			_ = jsoniter.NewDecoder(r.Body).Decode(&b)
			f.nextID++
			b["id"] = fmt.Sprintf("srv-%d", f.nextID)
			f.bookmarks = append([]map[string]interface{}{b}, f.bookmarks...)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = jsoniter.NewEncoder(w).Encode(b)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/activities", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var a map[string]interface{}
		_ = jsoniter.NewDecoder(r.Body).Decode(&a)
		a["id"] = "act-1"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = jsoniter.NewEncoder(w).Encode(a)
	})
	return mux
}

func seedBookmarks(n int) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]interface{}{
			"id":    fmt.Sprintf("b%03d", i),
			"url":   fmt.Sprintf("https://example.com/%d", i),
			"title": fmt.Sprintf("Bookmark %d", i),
		})
	}
	return out
}

func newStack(t *testing.T, backend *fakeAPI) (*cache.Cache, *pager.Controller, *mutate.Coordinator, *bridge.Dispatcher) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(api.Options{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	}, logger.NewNop())

	c := cache.New()
	p := pager.New(c, client, 50, logger.NewNop())
	m := mutate.New(c, client, 20*time.Millisecond, logger.NewNop())
	t.Cleanup(m.Stop)
	d := bridge.NewDispatcher(m, c, logger.NewNop())
	return c, p, m, d
}

func TestPaginateThenSaveThroughBridge(t *testing.T) {
	backend := &fakeAPI{bookmarks: seedBookmarks(80)}
	c, p, _, d := newStack(t, backend)
	ctx := context.Background()
	view := domain.QueryIdentity{Kind: domain.KindBookmark}

	// Page through the whole collection.
	require.NoError(t, p.Load(ctx, view))
	assert.True(t, p.HasMore(view))
	require.NoError(t, p.LoadMore(ctx, view))
	assert.False(t, p.HasMore(view))
	assert.Len(t, c.Flatten(view), 80)

	// Extension saves a page; the view updates optimistically and settles
	// with the server id.
	resp := d.Dispatch(ctx, bridge.Message{
		Action: bridge.ActionSaveBookmark,
		URL:    "HTTP://WWW.Example.com/fresh/",
		Title:  "Fresh",
	})
	require.True(t, resp.Success, resp.Error)

	items := c.Flatten(view)
	require.Len(t, items, 81)
	assert.Equal(t, "srv-1", items[0].EntityID())
	assert.Equal(t, "https://example.com/fresh", items[0].(domain.Bookmark).URL)
	for _, e := range items {
		assert.False(t, domain.IsProvisionalID(e.EntityID()))
	}

	// The settle delay elapses and marks the view for revalidation.
	assert.Eventually(t, func() bool { return c.Stale(view) }, time.Second, 5*time.Millisecond)

	// Refresh converges on server truth, still duplicate-free.
	require.NoError(t, p.Refresh(ctx, view))
	items = c.Flatten(view)
	seen := map[string]bool{}
	for _, e := range items {
		require.False(t, seen[e.EntityID()], "duplicate id %s", e.EntityID())
		seen[e.EntityID()] = true
	}
	assert.False(t, c.Stale(view))
}

func TestFailedSaveRollsBackCompletely(t *testing.T) {
	backend := &fakeAPI{bookmarks: seedBookmarks(10)}
	c, p, m, _ := newStack(t, backend)
	ctx := context.Background()
	view := domain.QueryIdentity{Kind: domain.KindBookmark}

	require.NoError(t, p.Load(ctx, view))
	before, ok := c.Get(view)
	require.True(t, ok)

	backend.failOnce()

	_, err := m.CreateBookmark(ctx, domain.Bookmark{URL: "https://example.com/doomed"})
	require.Error(t, err)
	var merr *mutate.Error
	require.ErrorAs(t, err, &merr)

	after, ok := c.Get(view)
	require.True(t, ok)
	assert.Equal(t, before, after, "rollback must restore the exact pre-mutation pages")
}
