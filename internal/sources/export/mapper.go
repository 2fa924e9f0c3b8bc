package export

import (
	"fmt"
	"time"

	"github.com/shelfd/shelf/internal/domain"
)

// Mapper converts export records to domain.Bookmark entities
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks converts an export file to bookmarks. Records with missing
// or unparseable URLs are skipped, and URLs are normalized so that the
// same page exported twice collapses to one bookmark.
func (m *Mapper) MapBookmarks(f File) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	seen := make(map[string]bool, len(f.Bookmarks))
	now := time.Now()

	for _, rec := range f.Bookmarks {
		if rec.URL == "" {
			continue
		}

		normalized, err := domain.NormalizeURL(rec.URL)
		if err != nil {
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		id := rec.ID
		if id == "" || domain.IsProvisionalID(id) {
			id = normalized
		}

		b := domain.Bookmark{
			ID:           id,
			URL:          normalized,
			Title:        rec.Title,
			Tags:         append([]string(nil), rec.Tags...),
			CollectionID: rec.Collection,
			DateSaved:    parseSavedAt(rec.SavedAt, now),
			UpdatedAt:    now,
		}
		if b.Title == "" {
			b.Title = domain.ExtractRootDomain(normalized)
		}

		bookmarks = append(bookmarks, b)
	}

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in export file")
	}

	return bookmarks, nil
}

func parseSavedAt(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}
