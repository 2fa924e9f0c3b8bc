package redis

import "fmt"

const (
	// KeyLayout is the fixed key holding the UI layout preference blob
	KeyLayout = "shelf:prefs:layout"
	// KeyPrefixDetail is the prefix for bookmark detail keys
	KeyPrefixDetail = "shelf:detail:"
	// KeyAllDetails is the key for the set of all cached detail IDs
	KeyAllDetails = "shelf:details:all"
)

// DetailKey returns the Redis key for a bookmark detail by ID
func DetailKey(id string) string {
	return KeyPrefixDetail + id
}

// AllDetailsKey returns the key for the set of all cached detail IDs
func AllDetailsKey() string {
	return KeyAllDetails
}

// ExtractDetailID extracts the bookmark ID from a Redis detail key
func ExtractDetailID(key string) (string, error) {
	if len(key) <= len(KeyPrefixDetail) {
		return "", fmt.Errorf("invalid detail key: %s", key)
	}
	return key[len(KeyPrefixDetail):], nil
}
