package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

type fakeMutator struct {
	createErr   error
	activityErr error

	created    []domain.Bookmark
	updated    []domain.Bookmark
	activities []domain.Activity
}

func (f *fakeMutator) CreateBookmark(_ context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	if f.createErr != nil {
		return domain.Bookmark{}, f.createErr
	}
	b.ID = "srv-1"
	f.created = append(f.created, b)
	return b, nil
}

func (f *fakeMutator) UpdateBookmark(_ context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	f.updated = append(f.updated, b)
	return b, nil
}

func (f *fakeMutator) RecordActivity(_ context.Context, a domain.Activity) (domain.Activity, error) {
	if f.activityErr != nil {
		return domain.Activity{}, f.activityErr
	}
	a.ID = "act-1"
	f.activities = append(f.activities, a)
	return a, nil
}

type fakeLookup map[string]domain.Entity

func (f fakeLookup) Lookup(id string) (domain.Entity, bool) {
	e, ok := f[id]
	return e, ok
}

func TestSaveBookmarkNormalizesURL(t *testing.T) {
	m := &fakeMutator{}
	d := NewDispatcher(m, fakeLookup{}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{
		Action: ActionSaveBookmark,
		URL:    "HTTP://WWW.Example.com/path/",
	})

	require.True(t, resp.Success, resp.Error)
	require.Len(t, m.created, 1)
	assert.Equal(t, "https://example.com/path", m.created[0].URL)
	assert.Equal(t, "example.com", m.created[0].Title, "missing title falls back to the root domain")

	require.Len(t, m.activities, 1)
	assert.Equal(t, domain.ActivityBookmarkAdded, m.activities[0].Type)
	assert.Equal(t, "srv-1", m.activities[0].BookmarkID)
}

func TestSaveBookmarkFailureIsEnvelopedNotThrown(t *testing.T) {
	m := &fakeMutator{createErr: errors.New("502 bad gateway")}
	d := NewDispatcher(m, fakeLookup{}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{Action: ActionSaveBookmark, URL: "https://example.com"})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "502")
	assert.Nil(t, resp.Result)
}

func TestSaveBookmarkSucceedsWhenFeedEntryFails(t *testing.T) {
	m := &fakeMutator{activityErr: errors.New("feed down")}
	d := NewDispatcher(m, fakeLookup{}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{Action: ActionSaveBookmark, URL: "https://example.com"})

	assert.True(t, resp.Success, "the bookmark is saved; the feed entry is best effort")
	assert.Len(t, m.created, 1)
}

func TestHighlightTextRecordsActivity(t *testing.T) {
	m := &fakeMutator{}
	d := NewDispatcher(m, fakeLookup{
		"b1": domain.Bookmark{ID: "b1", Title: "An Article"},
	}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{
		Action:     ActionHighlightText,
		BookmarkID: "b1",
		Text:       "the interesting sentence",
	})

	require.True(t, resp.Success, resp.Error)
	require.Len(t, m.activities, 1)
	a := m.activities[0]
	assert.Equal(t, domain.ActivityHighlightAdded, a.Type)
	assert.Equal(t, "the interesting sentence", a.Content)
	assert.Equal(t, "An Article", a.BookmarkTitle)
}

func TestHighlightTextRequiresFields(t *testing.T) {
	d := NewDispatcher(&fakeMutator{}, fakeLookup{}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{Action: ActionHighlightText, BookmarkID: "b1"})
	assert.False(t, resp.Success)
}

func TestCaptureScreenshotAppendsMedia(t *testing.T) {
	m := &fakeMutator{}
	d := NewDispatcher(m, fakeLookup{
		"b1": domain.Bookmark{ID: "b1", MediaURLs: []string{"https://cdn.example.com/old.png"}},
	}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{
		Action:     ActionCaptureScreenshot,
		BookmarkID: "b1",
		ImageURL:   "https://cdn.example.com/new.png",
	})

	require.True(t, resp.Success, resp.Error)
	require.Len(t, m.updated, 1)
	assert.Equal(t, []string{"https://cdn.example.com/old.png", "https://cdn.example.com/new.png"},
		m.updated[0].MediaURLs)
}

func TestCaptureScreenshotUnknownBookmark(t *testing.T) {
	d := NewDispatcher(&fakeMutator{}, fakeLookup{}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{
		Action: ActionCaptureScreenshot, BookmarkID: "nope", ImageURL: "https://x.test/a.png",
	})
	assert.False(t, resp.Success)
}

func TestGetSelectionAndUnknownActions(t *testing.T) {
	d := NewDispatcher(&fakeMutator{}, fakeLookup{}, logger.NewNop())

	resp := d.Dispatch(context.Background(), Message{Action: ActionGetSelection})
	assert.False(t, resp.Success)

	resp = d.Dispatch(context.Background(), Message{Action: "explodeBookmark"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "explodeBookmark")
}
