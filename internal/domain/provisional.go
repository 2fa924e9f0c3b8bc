package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ProvisionalPrefix marks locally-synthesized IDs awaiting server identity.
const ProvisionalPrefix = "temp-"

// NewProvisionalID returns a fresh temporary ID for an optimistic create.
func NewProvisionalID() string {
	return ProvisionalPrefix + uuid.NewString()
}

// IsProvisionalID reports whether id was synthesized locally.
func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}

// WithID returns a copy of e carrying the given ID.
func WithID(e Entity, id string) Entity {
	switch v := e.(type) {
	case Bookmark:
		c := v.Clone().(Bookmark)
		c.ID = id
		return c
	case Activity:
		c := v.Clone().(Activity)
		c.ID = id
		return c
	case Collection:
		c := v
		c.ID = id
		return c
	case Tag:
		c := v
		c.ID = id
		return c
	}
	return e
}
