package domain

// Kind identifies which entity family an object belongs to.
type Kind string

const (
	KindBookmark   Kind = "bookmark"
	KindActivity   Kind = "activity"
	KindCollection Kind = "collection"
	KindTag        Kind = "tag"
)

// Entity is any cacheable domain object. An entity with a given ID appears
// at most once in any materialized list view.
type Entity interface {
	// EntityID is the unique identifier within the entity's kind.
	EntityID() string

	// EntityKind reports which family the entity belongs to.
	EntityKind() Kind

	// Clone returns a deep copy. Cached pages are copy-on-write, so every
	// write path goes through Clone before touching an entity.
	Clone() Entity
}

// cloneStrings copies a string slice, preserving nil.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
