package domain

import "time"

// Bookmark represents a saved page.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier assigned by the server.
	// Provisional bookmarks carry a temp- prefixed ID until reconciled.
	ID string

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// URL is the normalized address of the saved page.
	URL string

	// Title is the page title captured at save time.
	Title string

	// Tags is the merged tag list. Order is irrelevant for matching but
	// preserved for display.
	Tags []string

	// MediaURLs lists screenshots and other captured media.
	MediaURLs []string

	// ─────────────────────────────
	// Organization
	// ─────────────────────────────

	// CollectionID is the owning collection, empty when uncollected.
	CollectionID string

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// DateSaved is when the page was first captured.
	DateSaved time.Time

	// UpdatedAt is updated on any mutation.
	UpdatedAt time.Time
}

func (b Bookmark) EntityID() string { return b.ID }

func (b Bookmark) EntityKind() Kind { return KindBookmark }

func (b Bookmark) Clone() Entity {
	c := b
	c.Tags = cloneStrings(b.Tags)
	c.MediaURLs = cloneStrings(b.MediaURLs)
	return c
}

// HasTag reports whether the bookmark carries the given tag.
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Collection groups bookmarks under a user-chosen name.
type Collection struct {
	ID            string
	Name          string
	Description   string
	BookmarkCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c Collection) EntityID() string { return c.ID }

func (c Collection) EntityKind() Kind { return KindCollection }

func (c Collection) Clone() Entity { return c }

// Tag is a label with its usage count.
type Tag struct {
	ID    string
	Name  string
	Count int
}

func (t Tag) EntityID() string { return t.ID }

func (t Tag) EntityKind() Kind { return KindTag }

func (t Tag) Clone() Entity { return t }
