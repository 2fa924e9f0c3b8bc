package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

func jsonDecode(r *http.Request, v interface{}) error {
	return jsoniter.NewDecoder(r.Body).Decode(v)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Options{BaseURL: ts.URL, UserAgent: "shelfd-test"}, logger.NewNop())
}

func TestListBookmarksSendsFilterParams(t *testing.T) {
	var gotQuery map[string]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("X-Total-Count", "120")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"b1","url":"https://example.com/a","title":"A","user_tags":["go"],"system_tags":["reading","go"]}]`))
	}))

	q := domain.QueryIdentity{
		Kind:         domain.KindBookmark,
		Search:       "golang",
		Sort:         "date_saved",
		Tags:         []string{"go", "reading"},
		CollectionID: "c1",
	}
	page, err := c.ListBookmarks(context.Background(), q, domain.PageRequest{Limit: 50, Offset: 100})
	require.NoError(t, err)

	assert.Equal(t, "50", gotQuery["limit"])
	assert.Equal(t, "100", gotQuery["offset"])
	assert.Equal(t, "golang", gotQuery["q"])
	assert.Equal(t, "date_saved", gotQuery["sort"])
	assert.Equal(t, "go,reading", gotQuery["tags"])
	assert.Equal(t, "c1", gotQuery["collection_id"])

	assert.Equal(t, 120, page.Total)
	assert.Equal(t, 100, page.Offset)
	require.Len(t, page.Items, 1)

	bm := page.Items[0].(domain.Bookmark)
	assert.Equal(t, []string{"go", "reading"}, bm.Tags, "user and system tags merge without duplicates")
}

func TestListBookmarksMissingTotalHeader(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	page, err := c.ListBookmarks(context.Background(), domain.QueryIdentity{Kind: domain.KindBookmark}, domain.PageRequest{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.TotalUnknown, page.Total)
}

func TestGetBookmarkNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"no such bookmark"}`))
	}))

	_, err := c.GetBookmark(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	apiErr := err.(*APIError)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, "no such bookmark", apiErr.Message)
}

func TestCreateBookmarkRejectsEmptyURL(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server on validation failure")
	}))

	_, err := c.CreateBookmark(context.Background(), domain.Bookmark{Title: "no url"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "url", vErr.Field)
}

func TestCreateBookmarkStripsProvisionalID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, jsonDecode(r, &body))
		assert.NotContains(t, body, "id", "provisional ids must never leave the client")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc","url":"https://example.com/a","title":"A"}`))
	}))

	got, err := c.CreateBookmark(context.Background(), domain.Bookmark{
		ID:  domain.NewProvisionalID(),
		URL: "https://example.com/a",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
}

func TestUnknownErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	err := c.DeleteBookmark(context.Background(), "b1")
	require.Error(t, err)
	assert.True(t, IsServerError(err))

	apiErr := err.(*APIError)
	assert.Equal(t, "unknown_error", apiErr.Code)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}
