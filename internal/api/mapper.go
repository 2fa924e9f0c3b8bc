package api

import (
	"github.com/shelfd/shelf/internal/domain"
)

// mapBookmark converts a wire bookmark to the domain entity. The API may send
// a merged `tags` list or split `user_tags`/`system_tags`; older responses
// send both. User tags come first, duplicates are suppressed, order is
// otherwise preserved for display.
func mapBookmark(p bookmarkPayload) domain.Bookmark {
	return domain.Bookmark{
		ID:           p.ID,
		URL:          p.URL,
		Title:        p.Title,
		Tags:         mergeTags(p.Tags, p.UserTags, p.SystemTags),
		MediaURLs:    append([]string(nil), p.MediaURLs...),
		CollectionID: p.CollectionID,
		DateSaved:    p.DateSaved,
		UpdatedAt:    p.UpdatedAt,
	}
}

func mergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, tag := range list {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

func mapActivity(p activityPayload) domain.Activity {
	return domain.Activity{
		ID:            p.ID,
		Type:          domain.ActivityType(p.Type),
		Timestamp:     p.Timestamp,
		Content:       p.Content,
		Tags:          append([]string(nil), p.Tags...),
		BookmarkID:    p.BookmarkID,
		BookmarkTitle: p.BookmarkTitle,
	}
}

func mapCollection(p collectionPayload) domain.Collection {
	return domain.Collection{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		BookmarkCount: p.BookmarkCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func mapTag(p tagPayload) domain.Tag {
	id := p.ID
	if id == "" {
		id = p.Name
	}
	return domain.Tag{ID: id, Name: p.Name, Count: p.Count}
}

// toBookmarkPayload builds the request body for create/update calls.
// Provisional ids never leave the client.
func toBookmarkPayload(b domain.Bookmark) bookmarkPayload {
	p := bookmarkPayload{
		URL:          b.URL,
		Title:        b.Title,
		Tags:         append([]string(nil), b.Tags...),
		MediaURLs:    append([]string(nil), b.MediaURLs...),
		CollectionID: b.CollectionID,
		DateSaved:    b.DateSaved,
	}
	if !domain.IsProvisionalID(b.ID) {
		p.ID = b.ID
	}
	return p
}

func toActivityPayload(a domain.Activity) activityPayload {
	p := activityPayload{
		Type:          string(a.Type),
		Timestamp:     a.Timestamp,
		Content:       a.Content,
		Tags:          append([]string(nil), a.Tags...),
		BookmarkID:    a.BookmarkID,
		BookmarkTitle: a.BookmarkTitle,
	}
	if !domain.IsProvisionalID(a.ID) {
		p.ID = a.ID
	}
	return p
}
