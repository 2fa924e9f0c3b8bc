package domain

import "time"

// ActivityType enumerates the events the activity feed can carry.
type ActivityType string

const (
	ActivityBookmarkAdded    ActivityType = "bookmark_added"
	ActivityNoteAdded        ActivityType = "note_added"
	ActivityHighlightAdded   ActivityType = "highlight_added"
	ActivityInsightGenerated ActivityType = "insight_generated"
)

// ValidActivityType reports whether t is one of the known feed event types.
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityBookmarkAdded, ActivityNoteAdded, ActivityHighlightAdded, ActivityInsightGenerated:
		return true
	}
	return false
}

// Activity is one entry in the user's activity feed.
type Activity struct {
	ID        string
	Type      ActivityType
	Timestamp time.Time

	// Content is the note text, highlight text, or generated insight.
	Content string

	Tags []string

	// BookmarkID and BookmarkTitle point at the bookmark the activity
	// refers to, when there is one.
	BookmarkID    string
	BookmarkTitle string
}

func (a Activity) EntityID() string { return a.ID }

func (a Activity) EntityKind() Kind { return KindActivity }

func (a Activity) Clone() Entity {
	c := a
	c.Tags = cloneStrings(a.Tags)
	return c
}
