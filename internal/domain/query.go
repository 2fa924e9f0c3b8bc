package domain

import (
	"sort"
	"strings"
	"time"
)

// QueryIdentity is the composite key distinguishing one filtered/sorted view
// of an entity collection from another. Two fetches with the same identity
// are served from and merged into the same cache slot.
type QueryIdentity struct {
	Kind         Kind
	Search       string
	Sort         string
	Tags         []string // selection; order-insensitive
	Since        time.Time
	Until        time.Time
	CollectionID string
	UserID       string
}

// Key returns the canonical cache key for the identity. Tag selection is
// sorted so that identities differing only in tag order collapse to one slot.
func (q QueryIdentity) Key() string {
	tags := cloneStrings(q.Tags)
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString(string(q.Kind))
	b.WriteByte('|')
	b.WriteString(q.Search)
	b.WriteByte('|')
	b.WriteString(q.Sort)
	b.WriteByte('|')
	b.WriteString(strings.Join(tags, ","))
	b.WriteByte('|')
	b.WriteString(formatTime(q.Since))
	b.WriteByte('|')
	b.WriteString(formatTime(q.Until))
	b.WriteByte('|')
	b.WriteString(q.CollectionID)
	b.WriteByte('|')
	b.WriteString(q.UserID)
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// Accepts reports whether an entity plausibly belongs in this view. Used to
// decide which cached views receive an optimistic insert. Search-filtered
// views are excluded; they converge through invalidation instead of guessing
// server-side match semantics.
func (q QueryIdentity) Accepts(e Entity) bool {
	if e == nil || q.Kind != e.EntityKind() {
		return false
	}
	if q.Search != "" {
		return false
	}

	b, ok := e.(Bookmark)
	if !ok {
		return true
	}
	if q.CollectionID != "" && q.CollectionID != b.CollectionID {
		return false
	}
	for _, tag := range q.Tags {
		if !b.HasTag(tag) {
			return false
		}
	}
	if !q.Since.IsZero() && b.DateSaved.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && b.DateSaved.After(q.Until) {
		return false
	}
	return true
}

// PageRequest describes one page fetch.
type PageRequest struct {
	Limit  int
	Offset int
}

// TotalUnknown marks a page whose total count the server did not report.
const TotalUnknown = -1

// Page is one fetched slice of a view.
type Page struct {
	Items []Entity

	// Offset is the position this page was fetched at.
	Offset int

	// Limit is the page size that was requested; a page shorter than Limit
	// signals exhaustion.
	Limit int

	// Total is the server-reported total for the view, TotalUnknown when
	// the X-Total-Count header was absent.
	Total int
}

// Clone deep-copies the page.
func (p Page) Clone() Page {
	c := p
	if p.Items != nil {
		c.Items = make([]Entity, len(p.Items))
		for i, e := range p.Items {
			c.Items[i] = e.Clone()
		}
	}
	return c
}

// ClonePages deep-copies a page sequence.
func ClonePages(pages []Page) []Page {
	if pages == nil {
		return nil
	}
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = p.Clone()
	}
	return out
}

// FlattenPages concatenates page items in fetch order.
func FlattenPages(pages []Page) []Entity {
	var n int
	for _, p := range pages {
		n += len(p.Items)
	}
	out := make([]Entity, 0, n)
	for _, p := range pages {
		out = append(out, p.Items...)
	}
	return out
}
