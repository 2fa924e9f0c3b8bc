package bridge

import (
	"context"
	"fmt"

	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

// Mutator is the slice of the mutation coordinator the bridge drives.
type Mutator interface {
	CreateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	RecordActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)
}

// EntityLookup finds a cached entity by id.
type EntityLookup interface {
	Lookup(id string) (domain.Entity, bool)
}

// Dispatcher routes extension messages to the mutation layer and wraps
// every outcome in the uniform response envelope. A failed action never
// surfaces as an error to the transport; it is a success=false response.
type Dispatcher struct {
	mutator Mutator
	lookup  EntityLookup
	logger  logger.Logger
}

func NewDispatcher(m Mutator, lookup EntityLookup, log logger.Logger) *Dispatcher {
	return &Dispatcher{mutator: m, lookup: lookup, logger: log}
}

// Dispatch handles one message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) Response {
	switch msg.Action {
	case ActionSaveBookmark:
		return d.saveBookmark(ctx, msg)
	case ActionHighlightText:
		return d.highlightText(ctx, msg)
	case ActionCaptureScreenshot:
		return d.captureScreenshot(ctx, msg)
	case ActionGetSelection:
		// Selection lives in the page; the content script answers this one
		// itself and must not forward it here.
		return fail("getSelection is handled in the page context")
	default:
		d.logger.Warn("unknown extension action", logger.String("action", msg.Action))
		return fail(fmt.Sprintf("unknown action %q", msg.Action))
	}
}

func (d *Dispatcher) saveBookmark(ctx context.Context, msg Message) Response {
	if msg.URL == "" {
		return fail("saveBookmark requires a url")
	}

	normalized, err := domain.NormalizeURL(msg.URL)
	if err != nil {
		return fail(fmt.Sprintf("invalid url: %v", err))
	}

	title := msg.Title
	if title == "" {
		title = domain.ExtractRootDomain(normalized)
	}

	created, err := d.mutator.CreateBookmark(ctx, domain.Bookmark{
		URL:   normalized,
		Title: title,
		Tags:  msg.Tags,
	})
	if err != nil {
		d.logger.Warn("saveBookmark failed", logger.String("url", normalized), logger.Error(err))
		return fail(err.Error())
	}

	// Feed entry is best effort; the bookmark is already saved.
	if _, err := d.mutator.RecordActivity(ctx, domain.Activity{
		Type:          domain.ActivityBookmarkAdded,
		BookmarkID:    created.ID,
		BookmarkTitle: created.Title,
	}); err != nil {
		d.logger.Warn("bookmark saved but feed entry failed",
			logger.String("id", created.ID), logger.Error(err))
	}

	return ok(created)
}

func (d *Dispatcher) highlightText(ctx context.Context, msg Message) Response {
	if msg.BookmarkID == "" || msg.Text == "" {
		return fail("highlightText requires bookmark_id and text")
	}

	var title string
	if e, found := d.lookup.Lookup(msg.BookmarkID); found {
		if b, isBookmark := e.(domain.Bookmark); isBookmark {
			title = b.Title
		}
	}

	created, err := d.mutator.RecordActivity(ctx, domain.Activity{
		Type:          domain.ActivityHighlightAdded,
		Content:       msg.Text,
		BookmarkID:    msg.BookmarkID,
		BookmarkTitle: title,
	})
	if err != nil {
		d.logger.Warn("highlightText failed",
			logger.String("bookmark", msg.BookmarkID), logger.Error(err))
		return fail(err.Error())
	}

	return ok(created)
}

func (d *Dispatcher) captureScreenshot(ctx context.Context, msg Message) Response {
	if msg.BookmarkID == "" || msg.ImageURL == "" {
		return fail("captureScreenshot requires bookmark_id and image_url")
	}

	e, found := d.lookup.Lookup(msg.BookmarkID)
	if !found {
		return fail(fmt.Sprintf("bookmark %s is not loaded", msg.BookmarkID))
	}
	b, isBookmark := e.(domain.Bookmark)
	if !isBookmark {
		return fail(fmt.Sprintf("%s is not a bookmark", msg.BookmarkID))
	}

	b.MediaURLs = append(b.MediaURLs, msg.ImageURL)
	updated, err := d.mutator.UpdateBookmark(ctx, b)
	if err != nil {
		d.logger.Warn("captureScreenshot failed",
			logger.String("bookmark", msg.BookmarkID), logger.Error(err))
		return fail(err.Error())
	}

	return ok(updated)
}
