package api

import "time"

// Wire shapes for the bookmarking REST API. The mapper converts these to
// domain entities; nothing outside this package sees them.

type bookmarkPayload struct {
	ID           string    `json:"id,omitempty"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Tags         []string  `json:"tags,omitempty"`
	UserTags     []string  `json:"user_tags,omitempty"`
	SystemTags   []string  `json:"system_tags,omitempty"`
	MediaURLs    []string  `json:"media_urls,omitempty"`
	CollectionID string    `json:"collection_id,omitempty"`
	DateSaved    time.Time `json:"date_saved"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type activityPayload struct {
	ID            string    `json:"id,omitempty"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Content       string    `json:"content,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	BookmarkID    string    `json:"bookmark_id,omitempty"`
	BookmarkTitle string    `json:"bookmark_title,omitempty"`
}

type collectionPayload struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	BookmarkCount int       `json:"bookmark_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

type tagPayload struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type errorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
