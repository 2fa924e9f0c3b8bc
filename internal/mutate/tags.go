package mutate

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

// TagFailure is one tag operation that the server rejected. The optimistic
// write for that tag alone has been reverted.
type TagFailure struct {
	Tag string
	Op  string // "add" or "remove"
	Err error
}

// PartialError reports a tag sync where some operations failed and the rest
// succeeded. The succeeded ones stay applied.
type PartialError struct {
	BookmarkID string
	Failures   []TagFailure
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s %q: %v", f.Op, f.Tag, f.Err))
	}
	return fmt.Sprintf("tag sync on %s: %d operations failed: %s",
		e.BookmarkID, len(e.Failures), strings.Join(parts, "; "))
}

// SyncTags adds and removes tags on a bookmark, one API call per tag.
// Each tag is isolated: a rejected tag is reverted in the cache on its own,
// the others proceed. A PartialError lists what failed.
func (m *Coordinator) SyncTags(ctx context.Context, bookmarkID string, add, remove []string) error {
	if domain.IsProvisionalID(bookmarkID) {
		return &Error{Op: "sync_tags", EntityID: bookmarkID, Err: errProvisionalTarget}
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	var failures []TagFailure

	for _, tag := range add {
		m.patchTags(bookmarkID, tag, true)
		if err := m.backend.AddBookmarkTag(ctx, bookmarkID, tag); err != nil {
			m.patchTags(bookmarkID, tag, false)
			m.logger.Warn("add tag reverted",
				logger.String("bookmark", bookmarkID), logger.String("tag", tag), logger.Error(err))
			failures = append(failures, TagFailure{Tag: tag, Op: "add", Err: err})
		}
	}

	for _, tag := range remove {
		m.patchTags(bookmarkID, tag, false)
		if err := m.backend.RemoveBookmarkTag(ctx, bookmarkID, tag); err != nil {
			m.patchTags(bookmarkID, tag, true)
			m.logger.Warn("remove tag reverted",
				logger.String("bookmark", bookmarkID), logger.String("tag", tag), logger.Error(err))
			failures = append(failures, TagFailure{Tag: tag, Op: "remove", Err: err})
		}
	}

	if len(failures) > 0 {
		return &PartialError{BookmarkID: bookmarkID, Failures: failures}
	}

	m.scheduleInvalidate(domain.KindBookmark, domain.KindTag)
	return nil
}

// patchTags adds or removes a single tag on every cached copy of the bookmark.
func (m *Coordinator) patchTags(bookmarkID, tag string, present bool) {
	m.cache.Patch(bookmarkID, func(e domain.Entity) domain.Entity {
		b, ok := e.(domain.Bookmark)
		if !ok {
			return e
		}
		b = b.Clone().(domain.Bookmark)
		if present {
			if !b.HasTag(tag) {
				b.Tags = append(b.Tags, tag)
			}
			return b
		}
		kept := b.Tags[:0]
		for _, t := range b.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		b.Tags = kept
		return b
	})
}
