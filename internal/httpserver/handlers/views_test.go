package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfd/shelf/internal/cache"
	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/pager"
)

// pageFetcher serves fixed-size windows over a scripted item list.
type pageFetcher struct {
	items []domain.Entity
	err   error
}

func (f *pageFetcher) FetchPage(_ context.Context, _ domain.QueryIdentity, req domain.PageRequest) (domain.Page, error) {
	if f.err != nil {
		return domain.Page{}, f.err
	}
	lo, hi := req.Offset, req.Offset+req.Limit
	if lo > len(f.items) {
		lo = len(f.items)
	}
	if hi > len(f.items) {
		hi = len(f.items)
	}
	return domain.Page{Items: f.items[lo:hi], Offset: req.Offset, Limit: req.Limit, Total: domain.TotalUnknown}, nil
}

func viewDeps(f pager.Fetcher, pageSize int) deps.Deps {
	c := cache.New()
	return deps.Deps{
		Logger: logger.NewNop(),
		Cache:  c,
		Pager:  pager.New(c, f, pageSize, logger.NewNop()),
	}
}

type decodedView struct {
	Items   []map[string]interface{} `json:"items"`
	HasMore bool                     `json:"has_more"`
	Stale   bool                     `json:"stale"`
	Phase   string                   `json:"phase"`
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) decodedView {
	t.Helper()
	var v decodedView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seedItems(n int) []domain.Entity {
	out := make([]domain.Entity, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("b%03d", i)
		out = append(out, domain.Bookmark{ID: id, URL: "https://example.com/" + id})
	}
	return out
}

func TestViewLoadsFirstPageOnDemand(t *testing.T) {
	d := viewDeps(&pageFetcher{items: seedItems(8)}, 3)

	rec := httptest.NewRecorder()
	View(d)(rec, httptest.NewRequest(http.MethodGet, "/views?kind=bookmark", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Len(t, v.Items, 3)
	assert.True(t, v.HasMore)
	assert.Equal(t, "ready", v.Phase)
}

func TestViewMorePagesThroughToExhaustion(t *testing.T) {
	d := viewDeps(&pageFetcher{items: seedItems(8)}, 3)

	rec := httptest.NewRecorder()
	View(d)(rec, httptest.NewRequest(http.MethodGet, "/views", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, want := range []int{6, 8} {
		rec = httptest.NewRecorder()
		ViewMore(d)(rec, httptest.NewRequest(http.MethodPost, "/views/more", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeView(t, rec).Items, want)
	}

	v := decodeView(t, rec)
	assert.False(t, v.HasMore)
	assert.Equal(t, "exhausted", v.Phase)
}

func TestViewMoreLoadsUnseenIdentity(t *testing.T) {
	d := viewDeps(&pageFetcher{items: seedItems(5)}, 3)

	rec := httptest.NewRecorder()
	ViewMore(d)(rec, httptest.NewRequest(http.MethodPost, "/views/more?tags=go,reading", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeView(t, rec).Items, 3)
}

func TestViewRejectsBadParams(t *testing.T) {
	d := viewDeps(&pageFetcher{items: seedItems(5)}, 3)

	for _, target := range []string{
		"/views?kind=widget",
		"/views?since=yesterday",
		"/views?until=not-a-time",
	} {
		rec := httptest.NewRecorder()
		View(d)(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestViewReportsUpstreamFailure(t *testing.T) {
	d := viewDeps(&pageFetcher{err: errors.New("upstream down")}, 3)

	rec := httptest.NewRecorder()
	View(d)(rec, httptest.NewRequest(http.MethodGet, "/views", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
